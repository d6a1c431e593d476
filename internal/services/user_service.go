package services

import (
	"context"
	"errors"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/rs/zerolog"

	"github.com/lrcr/todoplane/internal/models"
	"github.com/lrcr/todoplane/internal/store"
)

type userServiceImpl struct {
	logger     zerolog.Logger
	store      store.Store
	adminEmail string
	now        func() time.Time
}

// NewUserService builds the user service. adminEmail, when non-empty,
// names the Google account that is promoted to admin on login.
func NewUserService(logger zerolog.Logger, st store.Store, adminEmail string) UserService {
	return NewUserServiceWithClock(logger, st, adminEmail, time.Now)
}

// NewUserServiceWithClock pins the clock used for created/updated
// timestamps.
func NewUserServiceWithClock(logger zerolog.Logger, st store.Store, adminEmail string, now func() time.Time) UserService {
	return &userServiceImpl{
		logger:     logger,
		store:      st,
		adminEmail: adminEmail,
		now:        now,
	}
}

func (s *userServiceImpl) GetUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.store.FindUser(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error().
			Err(err).
			Str("user_id", userID).
			Msg("failed to find user")
		return nil, err
	}
	return user, nil
}

func (s *userServiceImpl) EnsureGoogleUser(ctx context.Context, profile GoogleProfile) (*models.User, error) {
	user, err := s.store.FindUserByGoogleID(ctx, profile.GoogleID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		s.logger.Error().
			Err(err).
			Msg("failed to find user by google id")
		return nil, err
	}

	now := s.now()
	if user == nil {
		role := models.RoleUser
		if s.adminEmail != "" && profile.Email == s.adminEmail {
			role = models.RoleAdmin
		}
		user = &models.User{
			GoogleID:    profile.GoogleID,
			DisplayName: profile.DisplayName,
			Email:       profile.Email,
			Role:        role,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		err = s.store.InsertUser(ctx, user)
		if err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				return nil, ErrUserAlreadyExists
			}
			s.logger.Error().
				Err(err).
				Msg("failed to insert user")
			return nil, err
		}
		s.logger.Info().
			Str("user_id", user.ID).
			Str("email", user.Email).
			Msg("provisioned google user")
		return user, nil
	}

	// Re-promote the configured admin account if it was demoted.
	if s.adminEmail != "" && user.Email == s.adminEmail && user.Role != models.RoleAdmin {
		user.Role = models.RoleAdmin
		user.UpdatedAt = now
		err = s.store.UpdateUser(ctx, user)
		if err != nil {
			s.logger.Error().
				Err(err).
				Str("user_id", user.ID).
				Msg("failed to promote admin user")
			return nil, err
		}
		s.logger.Info().
			Str("user_id", user.ID).
			Msg("promoted configured admin")
	}
	return user, nil
}

func (s *userServiceImpl) Register(ctx context.Context, displayName, email, password string) (*models.User, error) {
	passwordHash, err := argon2id.CreateHash(password, argon2id.DefaultParams)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to hash password")
		return nil, err
	}

	now := s.now()
	user := &models.User{
		DisplayName:  displayName,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         models.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	err = s.store.InsertUser(ctx, user)
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, ErrUserAlreadyExists
		}
		s.logger.Error().
			Err(err).
			Msg("failed to insert user")
		return nil, err
	}

	s.logger.Info().
		Str("user_id", user.ID).
		Str("email", user.Email).
		Msg("registered user")
	return user, nil
}

func (s *userServiceImpl) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.store.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error().
			Err(err).
			Msg("failed to find user by email")
		return nil, err
	}
	if user.PasswordHash == "" {
		// OAuth-provisioned account without a password.
		return nil, ErrUserPasswordMismatch
	}

	match, err := argon2id.ComparePasswordAndHash(password, user.PasswordHash)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to compare password")
		return nil, err
	}
	if !match {
		return nil, ErrUserPasswordMismatch
	}

	s.logger.Info().
		Str("user_id", user.ID).
		Msg("authenticated user")
	return user, nil
}

func (s *userServiceImpl) ListUsers(ctx context.Context, identity Identity) ([]*models.User, error) {
	if !identity.IsAdmin() {
		return nil, ErrForbidden
	}

	users, err := s.store.AllUsers(ctx)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to list users")
		return nil, err
	}
	return users, nil
}

func (s *userServiceImpl) UpdateRole(ctx context.Context, identity Identity, userID, role string) (*models.User, error) {
	if !identity.IsAdmin() {
		return nil, ErrForbidden
	}
	if !models.ValidRole(role) {
		return nil, ErrInvalidRole
	}

	user, err := s.store.FindUser(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error().
			Err(err).
			Str("user_id", userID).
			Msg("failed to find user")
		return nil, err
	}

	user.Role = role
	user.UpdatedAt = s.now()
	err = s.store.UpdateUser(ctx, user)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error().
			Err(err).
			Str("user_id", userID).
			Msg("failed to update user role")
		return nil, err
	}

	s.logger.Info().
		Str("user_id", userID).
		Str("role", role).
		Msg("updated user role")
	return user, nil
}

func (s *userServiceImpl) DeleteUser(ctx context.Context, identity Identity, userID string) error {
	if !identity.IsAdmin() {
		return ErrForbidden
	}

	err := s.store.DeleteUser(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		s.logger.Error().
			Err(err).
			Str("user_id", userID).
			Msg("failed to delete user")
		return err
	}

	s.logger.Info().
		Str("user_id", userID).
		Msg("deleted user")
	return nil
}
