package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tasktrack/task-api/internal/core/domain"
	"github.com/tasktrack/task-api/internal/core/ports"
)

type TaskRepository struct {
	col    *mongo.Collection
	logger zerolog.Logger
}

var _ ports.TaskRepository = (*TaskRepository)(nil)

func NewTaskRepository(db *mongo.Database, logger zerolog.Logger) *TaskRepository {
	return &TaskRepository{col: db.Collection(collectionTasks), logger: logger}
}

type taskDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Title       string             `bson:"title"`
	Description string             `bson:"description"`
	Status      string             `bson:"status"`
	OwnerID     string             `bson:"owner_id"`
	CreatedAt   time.Time          `bson:"created_at"`
}

func (d taskDocument) toDomain() *domain.Task {
	return &domain.Task{
		ID:          d.ID.Hex(),
		Title:       d.Title,
		Description: d.Description,
		Status:      domain.TaskStatus(d.Status),
		OwnerID:     d.OwnerID,
		CreatedAt:   d.CreatedAt,
	}
}

// listFilter scopes to the owner and applies the optional status and
// substring search. The search term is quoted so it never acts as a pattern.
func listFilter(ownerID string, filter ports.TaskFilter) bson.M {
	query := bson.M{"owner_id": ownerID}
	if filter.Status != "" {
		query["status"] = string(filter.Status)
	}
	if filter.Search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(filter.Search)}
		query["$or"] = bson.A{
			bson.M{"title": pattern},
			bson.M{"description": pattern},
		}
	}
	return query
}

// List returns the owner's tasks matching filter, oldest first.
func (r *TaskRepository) List(ctx context.Context, ownerID string, filter ports.TaskFilter) ([]*domain.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := r.col.Find(ctx, listFilter(ownerID, filter), opts)
	if err != nil {
		return nil, r.listFailed(err, ownerID, filter)
	}
	defer cursor.Close(ctx)

	var docs []taskDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, r.listFailed(err, ownerID, filter)
	}

	tasks := make([]*domain.Task, 0, len(docs))
	for _, doc := range docs {
		tasks = append(tasks, doc.toDomain())
	}
	return tasks, nil
}

func (r *TaskRepository) listFailed(err error, ownerID string, filter ports.TaskFilter) error {
	r.logger.Error().Err(err).
		Str("owner_id", ownerID).
		Str("status", string(filter.Status)).
		Str("search", filter.Search).
		Msg("failed to get tasks")
	return fmt.Errorf("list tasks: %w: %w", domain.ErrInternal, err)
}

// Create inserts a new task document and sets task.ID. New tasks are always OPEN.
func (r *TaskRepository) Create(ctx context.Context, task *domain.Task) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := taskDocument{
		ID:          primitive.NewObjectID(),
		Title:       task.Title,
		Description: task.Description,
		Status:      string(domain.StatusOpen),
		OwnerID:     task.OwnerID,
		CreatedAt:   task.CreatedAt.UTC(),
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		r.logger.Error().Err(err).Str("owner_id", task.OwnerID).Str("title", task.Title).Msg("failed to create task")
		return fmt.Errorf("insert task: %w: %w", domain.ErrInternal, err)
	}

	task.ID = doc.ID.Hex()
	task.Status = domain.StatusOpen
	return nil
}

// FindOne returns the owner's task, or nil when it does not exist. An ID that
// is not a valid ObjectID cannot exist and is treated the same way.
func (r *TaskRepository) FindOne(ctx context.Context, ownerID, taskID string) (*domain.Task, error) {
	oid, err := primitive.ObjectIDFromHex(taskID)
	if err != nil {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc taskDocument
	err = r.col.FindOne(ctx, bson.M{"_id": oid, "owner_id": ownerID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		r.logger.Error().Err(err).Str("owner_id", ownerID).Str("task_id", taskID).Msg("failed to find task")
		return nil, fmt.Errorf("find task: %w: %w", domain.ErrInternal, err)
	}
	return doc.toDomain(), nil
}

func (r *TaskRepository) Delete(ctx context.Context, ownerID, taskID string) (int64, error) {
	oid, err := primitive.ObjectIDFromHex(taskID)
	if err != nil {
		return 0, nil
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid, "owner_id": ownerID})
	if err != nil {
		r.logger.Error().Err(err).Str("owner_id", ownerID).Str("task_id", taskID).Msg("failed to delete task")
		return 0, fmt.Errorf("delete task: %w: %w", domain.ErrInternal, err)
	}
	return res.DeletedCount, nil
}

func (r *TaskRepository) UpdateStatus(ctx context.Context, task *domain.Task, status domain.TaskStatus) (*domain.Task, error) {
	oid, err := primitive.ObjectIDFromHex(task.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: task with id %q", domain.ErrTaskNotFound, task.ID)
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": oid, "owner_id": task.OwnerID},
		bson.M{"$set": bson.M{"status": string(status)}})
	if err != nil {
		r.logger.Error().Err(err).Str("task_id", task.ID).Str("status", string(status)).Msg("failed to update task status")
		return nil, fmt.Errorf("update task status: %w: %w", domain.ErrInternal, err)
	}
	if res.MatchedCount == 0 {
		return nil, fmt.Errorf("%w: task with id %q", domain.ErrTaskNotFound, task.ID)
	}

	task.Status = status
	return task, nil
}
