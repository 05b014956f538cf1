package postgres

import (
	"errors"
	"testing"

	"github.com/golang-migrate/migrate/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMigrate struct {
	upErr      error
	version    uint
	dirty      bool
	versionErr error
	closed     bool
}

func (f *fakeMigrate) Up() error { return f.upErr }

func (f *fakeMigrate) Version() (uint, bool, error) { return f.version, f.dirty, f.versionErr }

func (f *fakeMigrate) Close() (error, error) {
	f.closed = true
	return nil, nil
}

func TestMigrator_UpIgnoresNoChange(t *testing.T) {
	m := &Migrator{m: &fakeMigrate{upErr: migrate.ErrNoChange}}
	assert.NoError(t, m.Up())
}

func TestMigrator_UpPropagatesFailure(t *testing.T) {
	m := &Migrator{m: &fakeMigrate{upErr: errors.New("syntax error")}}
	err := m.Up()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "syntax error")
}

func TestMigrator_VersionNilIsZero(t *testing.T) {
	m := &Migrator{m: &fakeMigrate{versionErr: migrate.ErrNilVersion}}
	v, dirty, err := m.Version()
	require.NoError(t, err)
	assert.Zero(t, v)
	assert.False(t, dirty)
}

func TestMigrator_Version(t *testing.T) {
	m := &Migrator{m: &fakeMigrate{version: 2}}
	v, _, err := m.Version()
	require.NoError(t, err)
	assert.Equal(t, uint(2), v)
}

func TestMigrator_Close(t *testing.T) {
	fake := &fakeMigrate{}
	m := &Migrator{m: fake}
	require.NoError(t, m.Close())
	assert.True(t, fake.closed)
}

func TestMigrateURL(t *testing.T) {
	assert.Equal(t, "pgx5://u:p@host/db", migrateURL("postgres://u:p@host/db"))
	assert.Equal(t, "pgx5://u:p@host/db", migrateURL("postgresql://u:p@host/db"))
	assert.Equal(t, "pgx5://u:p@host/db", migrateURL("pgx5://u:p@host/db"))
}

func TestEmbeddedMigrations(t *testing.T) {
	entries, err := migrationsFS.ReadDir("migrations")
	require.NoError(t, err)
	assert.Len(t, entries, 4)
}
