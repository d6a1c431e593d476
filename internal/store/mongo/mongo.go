// Package mongo implements the store over a MongoDB database with
// tasks and users collections. Documents use string _id values so the
// same ids flow through every backend.
package mongo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	driver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/lrcr/todoplane/internal/models"
	"github.com/lrcr/todoplane/internal/store"
)

const (
	tasksCollection = "tasks"
	usersCollection = "users"
)

type Store struct {
	logger zerolog.Logger
	tasks  *driver.Collection
	users  *driver.Collection
}

func New(logger zerolog.Logger, db *driver.Database) *Store {
	return &Store{
		logger: logger,
		tasks:  db.Collection(tasksCollection),
		users:  db.Collection(usersCollection),
	}
}

// EnsureIndexes creates the unique email index on users. Safe to call
// on every startup.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.users.Indexes().CreateOne(ctx, driver.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func taskFilter(id, ownerID string) bson.M {
	filter := bson.M{"_id": id}
	if ownerID != "" {
		filter["user_id"] = ownerID
	}
	return filter
}

func (s *Store) InsertTask(ctx context.Context, task *models.Task) error {
	if task.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return err
		}
		task.ID = id.String()
	}

	_, err := s.tasks.InsertOne(ctx, task)
	if err != nil {
		if driver.IsDuplicateKeyError(err) {
			return store.ErrDuplicate
		}
		s.logger.Error().
			Err(err).
			Msg("failed to insert task")
		return err
	}
	s.logger.Debug().
		Str("task_id", task.ID).
		Msg("inserted task")
	return nil
}

func (s *Store) FindTask(ctx context.Context, id, ownerID string) (*models.Task, error) {
	task := new(models.Task)
	err := s.tasks.FindOne(ctx, taskFilter(id, ownerID)).Decode(task)
	if err != nil {
		if errors.Is(err, driver.ErrNoDocuments) {
			return nil, store.ErrNotFound
		}
		s.logger.Error().
			Err(err).
			Str("task_id", id).
			Msg("failed to find task")
		return nil, err
	}
	return task, nil
}

func (s *Store) findTasks(ctx context.Context, filter bson.M) ([]*models.Task, error) {
	opts := options.Find().SetSort(bson.D{{Key: "last_updated", Value: -1}})
	cursor, err := s.tasks.Find(ctx, filter, opts)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to find tasks")
		return nil, err
	}

	tasks := make([]*models.Task, 0)
	err = cursor.All(ctx, &tasks)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to decode tasks")
		return nil, err
	}
	return tasks, nil
}

func (s *Store) FindTasksByOwner(ctx context.Context, ownerID string) ([]*models.Task, error) {
	return s.findTasks(ctx, bson.M{"user_id": ownerID})
}

func (s *Store) AllTasks(ctx context.Context) ([]*models.Task, error) {
	return s.findTasks(ctx, bson.M{})
}

func (s *Store) UpdateTask(ctx context.Context, id, ownerID string, patch store.TaskPatch, lastUpdated time.Time) (*models.Task, error) {
	set := bson.M{"last_updated": lastUpdated}
	if patch.Text != nil {
		set["text"] = *patch.Text
	}
	if patch.Completed != nil {
		set["completed"] = *patch.Completed
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	task := new(models.Task)
	err := s.tasks.FindOneAndUpdate(
		ctx,
		taskFilter(id, ownerID),
		bson.M{"$set": set},
		opts,
	).Decode(task)
	if err != nil {
		if errors.Is(err, driver.ErrNoDocuments) {
			return nil, store.ErrNotFound
		}
		s.logger.Error().
			Err(err).
			Str("task_id", id).
			Msg("failed to update task")
		return nil, err
	}
	s.logger.Debug().
		Str("task_id", id).
		Msg("updated task")
	return task, nil
}

func (s *Store) DeleteTask(ctx context.Context, id, ownerID string) error {
	result, err := s.tasks.DeleteOne(ctx, taskFilter(id, ownerID))
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("task_id", id).
			Msg("failed to delete task")
		return err
	}
	if result.DeletedCount == 0 {
		return store.ErrNotFound
	}
	s.logger.Debug().
		Str("task_id", id).
		Msg("deleted task")
	return nil
}
