package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/lrcr/todoplane/internal/models"
	"github.com/lrcr/todoplane/internal/store"
)

type taskServiceImpl struct {
	logger zerolog.Logger
	store  store.Store
	now    func() time.Time
}

func NewTaskService(logger zerolog.Logger, st store.Store) TaskService {
	return &taskServiceImpl{
		logger: logger,
		store:  st,
		now:    time.Now,
	}
}

// NewTaskServiceWithClock pins the clock used for lastUpdated stamps.
func NewTaskServiceWithClock(logger zerolog.Logger, st store.Store, now func() time.Time) TaskService {
	return &taskServiceImpl{
		logger: logger,
		store:  st,
		now:    now,
	}
}

// ownerScope is the store owner filter for the identity: admins see
// and mutate every task, so their scope is unrestricted.
func ownerScope(identity Identity) string {
	if identity.IsAdmin() {
		return ""
	}
	return identity.ID
}

func (s *taskServiceImpl) ListTasks(ctx context.Context, identity Identity) ([]*models.Task, error) {
	tasks, err := s.store.FindTasksByOwner(ctx, identity.ID)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("user_id", identity.ID).
			Msg("failed to list tasks")
		return nil, err
	}
	s.logger.Debug().
		Int("count", len(tasks)).
		Str("user_id", identity.ID).
		Msg("listed tasks")
	return tasks, nil
}

func (s *taskServiceImpl) ListAllTasks(ctx context.Context, identity Identity) ([]*models.AdminTask, error) {
	if !identity.IsAdmin() {
		return nil, ErrForbidden
	}

	tasks, err := s.store.AllTasks(ctx)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to list all tasks")
		return nil, err
	}

	users, err := s.store.AllUsers(ctx)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to list users")
		return nil, err
	}
	names := make(map[string]string, len(users))
	for _, user := range users {
		names[user.ID] = user.DisplayName
	}

	annotated := make([]*models.AdminTask, 0, len(tasks))
	for _, task := range tasks {
		name, ok := names[task.OwnerID]
		if !ok {
			name = "Unknown User"
		}
		annotated = append(annotated, &models.AdminTask{
			Task:     *task,
			UserName: name,
		})
	}
	s.logger.Debug().
		Int("count", len(annotated)).
		Msg("listed all tasks")
	return annotated, nil
}

func (s *taskServiceImpl) GetTask(ctx context.Context, identity Identity, taskID string) (*models.Task, error) {
	task, err := s.store.FindTask(ctx, taskID, ownerScope(identity))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrTaskNotFound
		}
		s.logger.Error().
			Err(err).
			Str("task_id", taskID).
			Msg("failed to find task")
		return nil, err
	}
	return task, nil
}

func (s *taskServiceImpl) CreateTask(ctx context.Context, identity Identity, text string, completed bool) (*models.Task, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyTaskText
	}

	task := &models.Task{
		OwnerID:     identity.ID,
		Text:        text,
		Completed:   completed,
		LastUpdated: s.now(),
	}
	err := s.store.InsertTask(ctx, task)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("user_id", identity.ID).
			Msg("failed to insert task")
		return nil, err
	}

	s.logger.Info().
		Str("task_id", task.ID).
		Str("user_id", identity.ID).
		Msg("created task")
	return task, nil
}

func (s *taskServiceImpl) PatchTask(ctx context.Context, identity Identity, taskID string, patch TaskPatch) (*models.Task, error) {
	if patch.Text != nil {
		trimmed := strings.TrimSpace(*patch.Text)
		if trimmed == "" {
			return nil, ErrEmptyTaskText
		}
		patch.Text = &trimmed
	}

	task, err := s.store.UpdateTask(
		ctx,
		taskID,
		ownerScope(identity),
		store.TaskPatch{Text: patch.Text, Completed: patch.Completed},
		s.now(),
	)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrTaskNotFound
		}
		s.logger.Error().
			Err(err).
			Str("task_id", taskID).
			Msg("failed to update task")
		return nil, err
	}

	s.logger.Info().
		Str("task_id", taskID).
		Str("user_id", identity.ID).
		Msg("patched task")
	return task, nil
}

func (s *taskServiceImpl) DeleteTask(ctx context.Context, identity Identity, taskID string) error {
	err := s.store.DeleteTask(ctx, taskID, ownerScope(identity))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrTaskNotFound
		}
		s.logger.Error().
			Err(err).
			Str("task_id", taskID).
			Msg("failed to delete task")
		return err
	}

	s.logger.Info().
		Str("task_id", taskID).
		Str("user_id", identity.ID).
		Msg("deleted task")
	return nil
}
