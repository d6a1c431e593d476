// Package postgres implements the store over a pgx connection pool.
// The schema lives in migrations/001_init.sql.
package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/lrcr/todoplane/internal/models"
	"github.com/lrcr/todoplane/internal/store"
)

type Store struct {
	logger zerolog.Logger
	pgPool *pgxpool.Pool
}

func New(logger zerolog.Logger, pgPool *pgxpool.Pool) *Store {
	return &Store{
		logger: logger,
		pgPool: pgPool,
	}
}

func (s *Store) InsertTask(ctx context.Context, task *models.Task) error {
	if task.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return err
		}
		task.ID = id.String()
	}

	const insertTaskQuery = `
INSERT INTO tasks (id,
                   user_id,
                   text,
                   completed,
                   last_updated)
VALUES ($1, $2, $3, $4, $5)
`
	_, err := s.pgPool.Exec(
		ctx,
		insertTaskQuery,
		task.ID,
		task.OwnerID,
		task.Text,
		task.Completed,
		task.LastUpdated,
	)
	if err != nil {
		if isUniqueViolation(err) {
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
	task := &models.Task{ID: id}

	const selectTaskQuery = `
SELECT user_id,
       text,
       completed,
       last_updated
FROM tasks
WHERE id = $1 AND ($2 = '' OR user_id = $2)
`
	err := s.pgPool.QueryRow(
		ctx,
		selectTaskQuery,
		id,
		ownerID,
	).Scan(
		&task.OwnerID,
		&task.Text,
		&task.Completed,
		&task.LastUpdated,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		s.logger.Error().
			Err(err).
			Str("task_id", id).
			Msg("failed to select task")
		return nil, err
	}
	return task, nil
}

func (s *Store) FindTasksByOwner(ctx context.Context, ownerID string) ([]*models.Task, error) {
	const selectTasksByOwnerQuery = `
SELECT id,
       text,
       completed,
       last_updated
FROM tasks
WHERE user_id = $1
ORDER BY last_updated DESC
`
	rows, err := s.pgPool.Query(ctx, selectTasksByOwnerQuery, ownerID)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to select tasks by owner")
		return nil, err
	}
	defer rows.Close()

	tasks := make([]*models.Task, 0)
	for rows.Next() {
		task := &models.Task{OwnerID: ownerID}
		err = rows.Scan(
			&task.ID,
			&task.Text,
			&task.Completed,
			&task.LastUpdated,
		)
		if err != nil {
			s.logger.Error().
				Err(err).
				Msg("failed to scan task")
			return nil, err
		}
		tasks = append(tasks, task)
	}

	err = rows.Err()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to iterate over rows")
		return nil, err
	}
	return tasks, nil
}

func (s *Store) AllTasks(ctx context.Context) ([]*models.Task, error) {
	const selectAllTasksQuery = `
SELECT id,
       user_id,
       text,
       completed,
       last_updated
FROM tasks
ORDER BY last_updated DESC
`
	rows, err := s.pgPool.Query(ctx, selectAllTasksQuery)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to select all tasks")
		return nil, err
	}
	defer rows.Close()

	tasks := make([]*models.Task, 0)
	for rows.Next() {
		task := new(models.Task)
		err = rows.Scan(
			&task.ID,
			&task.OwnerID,
			&task.Text,
			&task.Completed,
			&task.LastUpdated,
		)
		if err != nil {
			s.logger.Error().
				Err(err).
				Msg("failed to scan task")
			return nil, err
		}
		tasks = append(tasks, task)
	}

	err = rows.Err()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to iterate over rows")
		return nil, err
	}
	return tasks, nil
}

func (s *Store) UpdateTask(ctx context.Context, id, ownerID string, patch store.TaskPatch, lastUpdated time.Time) (*models.Task, error) {
	task := &models.Task{
		ID:          id,
		LastUpdated: lastUpdated,
	}

	const updateTaskQuery = `
UPDATE tasks
SET text = COALESCE($1, text),
    completed = COALESCE($2, completed),
    last_updated = $3
WHERE id = $4 AND ($5 = '' OR user_id = $5)
RETURNING user_id, text, completed
`
	err := s.pgPool.QueryRow(
		ctx,
		updateTaskQuery,
		patch.Text,
		patch.Completed,
		lastUpdated,
		id,
		ownerID,
	).Scan(
		&task.OwnerID,
		&task.Text,
		&task.Completed,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
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
	const deleteTaskQuery = `
DELETE FROM tasks
WHERE id = $1 AND ($2 = '' OR user_id = $2)
`
	tag, err := s.pgPool.Exec(ctx, deleteTaskQuery, id, ownerID)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("task_id", id).
			Msg("failed to delete task")
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	s.logger.Debug().
		Str("task_id", id).
		Msg("deleted task")
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
