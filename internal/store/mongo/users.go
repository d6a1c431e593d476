package mongo

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	driver "go.mongodb.org/mongo-driver/mongo"

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

	_, err := s.users.InsertOne(ctx, user)
	if err != nil {
		if driver.IsDuplicateKeyError(err) {
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

func (s *Store) findUser(ctx context.Context, filter bson.M) (*models.User, error) {
	user := new(models.User)
	err := s.users.FindOne(ctx, filter).Decode(user)
	if err != nil {
		if errors.Is(err, driver.ErrNoDocuments) {
			return nil, store.ErrNotFound
		}
		s.logger.Error().
			Err(err).
			Msg("failed to find user")
		return nil, err
	}
	return user, nil
}

func (s *Store) FindUser(ctx context.Context, id string) (*models.User, error) {
	return s.findUser(ctx, bson.M{"_id": id})
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findUser(ctx, bson.M{"email": email})
}

func (s *Store) FindUserByGoogleID(ctx context.Context, googleID string) (*models.User, error) {
	if googleID == "" {
		return nil, store.ErrNotFound
	}
	return s.findUser(ctx, bson.M{"google_id": googleID})
}

func (s *Store) AllUsers(ctx context.Context) ([]*models.User, error) {
	cursor, err := s.users.Find(ctx, bson.M{})
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to find users")
		return nil, err
	}

	users := make([]*models.User, 0)
	err = cursor.All(ctx, &users)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to decode users")
		return nil, err
	}
	return users, nil
}

func (s *Store) UpdateUser(ctx context.Context, user *models.User) error {
	result, err := s.users.ReplaceOne(ctx, bson.M{"_id": user.ID}, user)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("user_id", user.ID).
			Msg("failed to update user")
		return err
	}
	if result.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteUser(ctx context.Context, id string) error {
	result, err := s.users.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("user_id", id).
			Msg("failed to delete user")
		return err
	}
	if result.DeletedCount == 0 {
		return store.ErrNotFound
	}
	s.logger.Debug().
		Str("user_id", id).
		Msg("deleted user")
	return nil
}
