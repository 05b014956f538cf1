package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET": "topSecret51",
	}))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, time.Hour, cfg.JWTTTL)
	assert.Equal(t, StoreDriverPostgres, cfg.StoreDriver)
	assert.True(t, cfg.Postgres.AutoMigrate)
	assert.Empty(t, cfg.Redis.Addr)
	assert.Equal(t, uint32(1), cfg.Argon2.Time)
	assert.Equal(t, uint32(65536), cfg.Argon2.MemoryKiB)
	assert.Equal(t, uint8(4), cfg.Argon2.Threads)
	assert.Equal(t, 5, cfg.Login.MaxFailures)
	assert.Equal(t, 15*time.Minute, cfg.Login.Lockout)
}

func TestLoadFrom_Overrides(t *testing.T) {
	cfg, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET":    "s",
		"PORT":          "3000",
		"ENV":           "production",
		"JWT_TTL":       "30m",
		"STORE_DRIVER":  "mongo",
		"MONGO_DB":      "tasks",
		"REDIS_ADDR":    "redis:6379",
		"LOGIN_LOCKOUT": "1m",
	}))
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.Port)
	assert.False(t, cfg.IsDevelopment())
	assert.Equal(t, 30*time.Minute, cfg.JWTTTL)
	assert.Equal(t, StoreDriverMongo, cfg.StoreDriver)
	assert.Equal(t, "tasks", cfg.Mongo.Database)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.Equal(t, time.Minute, cfg.Login.Lockout)
}

func TestLoadFrom_RequiresJWTSecret(t *testing.T) {
	_, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestLoadFrom_UnknownStoreDriver(t *testing.T) {
	_, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET":   "s",
		"STORE_DRIVER": "sqlite",
	}))
	assert.ErrorIs(t, err, ErrUnknownStoreDriver)
}

func TestLoadFrom_RejectsEmptyJWTSecret(t *testing.T) {
	_, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET": "",
	}))
	require.Error(t, err)
}
