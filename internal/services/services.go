package services

import (
	"context"
	"errors"

	"github.com/lrcr/todoplane/internal/models"
)

var (
	ErrEmptyTaskText = errors.New("task text is required")
	ErrTaskNotFound  = errors.New("task not found")
	ErrForbidden     = errors.New("forbidden")

	ErrUserNotFound         = errors.New("user not found")
	ErrUserAlreadyExists    = errors.New("user already exists")
	ErrUserPasswordMismatch = errors.New("user password mismatch")
	ErrInvalidRole          = errors.New("invalid role")
)

// Identity is the verified principal attached to a request.
type Identity struct {
	ID          string
	Email       string
	DisplayName string
	Role        string
}

func (i Identity) IsAdmin() bool {
	return i.Role == models.RoleAdmin
}

// TaskPatch carries the optional fields of a task update.
type TaskPatch struct {
	Text      *string
	Completed *bool
}

type TaskService interface {
	// ListTasks returns the identity's own tasks, newest first.
	ListTasks(ctx context.Context, identity Identity) ([]*models.Task, error)

	// ListAllTasks returns every task annotated with its owner's
	// display name. Admin only; others get ErrForbidden.
	ListAllTasks(ctx context.Context, identity Identity) ([]*models.AdminTask, error)

	// GetTask returns a single task. Non-admin identities may only
	// see their own; ErrTaskNotFound otherwise.
	GetTask(ctx context.Context, identity Identity, taskID string) (*models.Task, error)

	// CreateTask validates the trimmed text, stamps lastUpdated with
	// the current time and persists a task owned by the identity.
	CreateTask(ctx context.Context, identity Identity, text string, completed bool) (*models.Task, error)

	// PatchTask applies only the provided fields and always refreshes
	// lastUpdated. Ownership is enforced unless the identity is admin.
	PatchTask(ctx context.Context, identity Identity, taskID string, patch TaskPatch) (*models.Task, error)

	// DeleteTask removes the task under the same ownership rule as
	// PatchTask. Repeated deletes fail with ErrTaskNotFound.
	DeleteTask(ctx context.Context, identity Identity, taskID string) error
}

// GoogleProfile is the subset of an OAuth userinfo response the
// service needs to provision a user.
type GoogleProfile struct {
	GoogleID    string
	DisplayName string
	Email       string
}

type UserService interface {
	// GetUser returns the user with the given id.
	GetUser(ctx context.Context, userID string) (*models.User, error)

	// EnsureGoogleUser finds the user for the profile or creates one
	// on first login. The configured admin email is promoted to the
	// admin role.
	EnsureGoogleUser(ctx context.Context, profile GoogleProfile) (*models.User, error)

	// Register creates a password-backed user.
	Register(ctx context.Context, displayName, email, password string) (*models.User, error)

	// Authenticate checks an email/password pair.
	Authenticate(ctx context.Context, email, password string) (*models.User, error)

	// ListUsers returns all users. Admin only.
	ListUsers(ctx context.Context, identity Identity) ([]*models.User, error)

	// UpdateRole changes a user's role. Admin only; takes effect on
	// the target's next identity check.
	UpdateRole(ctx context.Context, identity Identity, userID, role string) (*models.User, error)

	// DeleteUser removes a user. Admin only.
	DeleteUser(ctx context.Context, identity Identity, userID string) error
}
