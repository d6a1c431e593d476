// Package store defines the persistence boundary shared by the memory,
// postgres and mongo backends. The service layer is the only mutator;
// every operation is a single atomic store access.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/lrcr/todoplane/internal/models"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("record already exists")
)

// TaskPatch carries the optional fields of a task update.
// Nil means "leave unchanged".
type TaskPatch struct {
	Text      *string
	Completed *bool
}

type TaskStore interface {
	// InsertTask persists a new task. The store assigns the ID.
	InsertTask(ctx context.Context, task *models.Task) error

	// FindTask returns the task with the given id, scoped to ownerID
	// unless ownerID is empty (admin access).
	FindTask(ctx context.Context, id, ownerID string) (*models.Task, error)

	FindTasksByOwner(ctx context.Context, ownerID string) ([]*models.Task, error)

	AllTasks(ctx context.Context) ([]*models.Task, error)

	// UpdateTask applies the patch and the new lastUpdated timestamp,
	// scoped to ownerID unless ownerID is empty. Returns the updated
	// task or ErrNotFound.
	UpdateTask(ctx context.Context, id, ownerID string, patch TaskPatch, lastUpdated time.Time) (*models.Task, error)

	// DeleteTask removes the task, scoped to ownerID unless empty.
	// Repeated deletes of the same id fail with ErrNotFound.
	DeleteTask(ctx context.Context, id, ownerID string) error
}

type UserStore interface {
	InsertUser(ctx context.Context, user *models.User) error
	FindUser(ctx context.Context, id string) (*models.User, error)
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	FindUserByGoogleID(ctx context.Context, googleID string) (*models.User, error)
	AllUsers(ctx context.Context) ([]*models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
	DeleteUser(ctx context.Context, id string) error
}

// Store is the full persistence surface consumed by the services.
type Store interface {
	TaskStore
	UserStore
}
