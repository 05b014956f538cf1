package mongo

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/tasktrack/task-api/internal/core/domain"
)

func TestUserRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("create sets id", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB, zerolog.Nop())
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		user := &domain.User{Username: "alice", PasswordHash: "hash", Salt: "salt", CreatedAt: time.Now()}
		require.NoError(mt, repo.Create(context.Background(), user))
		_, err := primitive.ObjectIDFromHex(user.ID)
		assert.NoError(mt, err)
	})

	mt.Run("create duplicate", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB, zerolog.Nop())
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: users index: username_1",
		}))

		err := repo.Create(context.Background(), &domain.User{Username: "alice"})
		assert.ErrorIs(mt, err, domain.ErrUserExists)
	})

	mt.Run("create failure", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB, zerolog.Nop())
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    2,
			Message: "bad value",
		}))

		err := repo.Create(context.Background(), &domain.User{Username: "alice"})
		assert.ErrorIs(mt, err, domain.ErrInternal)
	})

	mt.Run("find by username", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB, zerolog.Nop())
		id := primitive.NewObjectID()
		created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.users", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: id},
			{Key: "username", Value: "alice"},
			{Key: "password_hash", Value: "hash"},
			{Key: "salt", Value: "salt"},
			{Key: "created_at", Value: created},
		}))

		user, err := repo.FindByUsername(context.Background(), "alice")
		require.NoError(mt, err)
		assert.Equal(mt, id.Hex(), user.ID)
		assert.Equal(mt, "hash", user.PasswordHash)
		assert.Equal(mt, "salt", user.Salt)
		assert.True(mt, created.Equal(user.CreatedAt))
	})

	mt.Run("find missing", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB, zerolog.Nop())
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.users", mtest.FirstBatch))

		_, err := repo.FindByUsername(context.Background(), "ghost")
		assert.ErrorIs(mt, err, domain.ErrUserNotFound)
	})
}
