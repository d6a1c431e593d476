package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/lrcr/todoplane/internal/models"
	"github.com/lrcr/todoplane/internal/store"
)

func (s *Store) InsertUser(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return err
		}
		user.ID = id.String()
	}

	const insertUserQuery = `
INSERT INTO users (id,
                   google_id,
                   display_name,
                   email,
                   password_hash,
                   role,
                   created_at,
                   updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
`
	_, err := s.pgPool.Exec(
		ctx,
		insertUserQuery,
		user.ID,
		user.GoogleID,
		user.DisplayName,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrDuplicate
		}
		s.logger.Error().
			Err(err).
			Msg("failed to insert user")
		return err
	}
	s.logger.Debug().
		Str("user_id", user.ID).
		Msg("inserted user")
	return nil
}

const selectUserColumns = `
SELECT id,
       google_id,
       display_name,
       email,
       password_hash,
       role,
       created_at,
       updated_at
FROM users
`

func (s *Store) scanUser(row pgx.Row) (*models.User, error) {
	user := new(models.User)
	err := row.Scan(
		&user.ID,
		&user.GoogleID,
		&user.DisplayName,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		s.logger.Error().
			Err(err).
			Msg("failed to scan user")
		return nil, err
	}
	return user, nil
}

func (s *Store) FindUser(ctx context.Context, id string) (*models.User, error) {
	const query = selectUserColumns + `WHERE id = $1`
	return s.scanUser(s.pgPool.QueryRow(ctx, query, id))
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const query = selectUserColumns + `WHERE email = $1`
	return s.scanUser(s.pgPool.QueryRow(ctx, query, email))
}

func (s *Store) FindUserByGoogleID(ctx context.Context, googleID string) (*models.User, error) {
	if googleID == "" {
		return nil, store.ErrNotFound
	}
	const query = selectUserColumns + `WHERE google_id = $1`
	return s.scanUser(s.pgPool.QueryRow(ctx, query, googleID))
}

func (s *Store) AllUsers(ctx context.Context) ([]*models.User, error) {
	const query = selectUserColumns + `ORDER BY created_at`
	rows, err := s.pgPool.Query(ctx, query)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to select users")
		return nil, err
	}
	defer rows.Close()

	users := make([]*models.User, 0)
	for rows.Next() {
		user, err := s.scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}

	err = rows.Err()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to iterate over rows")
		return nil, err
	}
	return users, nil
}

func (s *Store) UpdateUser(ctx context.Context, user *models.User) error {
	const updateUserQuery = `
UPDATE users
SET google_id = $1,
    display_name = $2,
    email = $3,
    password_hash = $4,
    role = $5,
    updated_at = $6
WHERE id = $7
`
	tag, err := s.pgPool.Exec(
		ctx,
		updateUserQuery,
		user.GoogleID,
		user.DisplayName,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.UpdatedAt,
		user.ID,
	)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("user_id", user.ID).
			Msg("failed to update user")
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteUser(ctx context.Context, id string) error {
	const deleteUserQuery = `
DELETE FROM users
WHERE id = $1
`
	tag, err := s.pgPool.Exec(ctx, deleteUserQuery, id)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("user_id", id).
			Msg("failed to delete user")
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	s.logger.Debug().
		Str("user_id", id).
		Msg("deleted user")
	return nil
}
