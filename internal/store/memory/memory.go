// Package memory implements the store over mutex-guarded maps.
// It backs the demo mode and the test suite.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lrcr/todoplane/internal/models"
	"github.com/lrcr/todoplane/internal/store"
)

type Store struct {
	mu    sync.RWMutex
	tasks map[string]*models.Task
	users map[string]*models.User
}

func New() *Store {
	return &Store{
		tasks: make(map[string]*models.Task),
		users: make(map[string]*models.User),
	}
}

func (s *Store) InsertTask(_ context.Context, task *models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if task.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return err
		}
		task.ID = id.String()
	}
	if _, ok := s.tasks[task.ID]; ok {
		return store.ErrDuplicate
	}

	clone := *task
	s.tasks[task.ID] = &clone
	return nil
}

func (s *Store) FindTask(_ context.Context, id, ownerID string) (*models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	task, ok := s.tasks[id]
	if !ok || (ownerID != "" && task.OwnerID != ownerID) {
		return nil, store.ErrNotFound
	}

	clone := *task
	return &clone, nil
}

func (s *Store) FindTasksByOwner(_ context.Context, ownerID string) ([]*models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tasks := make([]*models.Task, 0)
	for _, task := range s.tasks {
		if task.OwnerID == ownerID {
			clone := *task
			tasks = append(tasks, &clone)
		}
	}
	return tasks, nil
}

func (s *Store) AllTasks(_ context.Context) ([]*models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tasks := make([]*models.Task, 0, len(s.tasks))
	for _, task := range s.tasks {
		clone := *task
		tasks = append(tasks, &clone)
	}
	return tasks, nil
}

func (s *Store) UpdateTask(_ context.Context, id, ownerID string, patch store.TaskPatch, lastUpdated time.Time) (*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.tasks[id]
	if !ok || (ownerID != "" && task.OwnerID != ownerID) {
		return nil, store.ErrNotFound
	}

	if patch.Text != nil {
		task.Text = *patch.Text
	}
	if patch.Completed != nil {
		task.Completed = *patch.Completed
	}
	task.LastUpdated = lastUpdated

	clone := *task
	return &clone, nil
}

func (s *Store) DeleteTask(_ context.Context, id, ownerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.tasks[id]
	if !ok || (ownerID != "" && task.OwnerID != ownerID) {
		return store.ErrNotFound
	}

	delete(s.tasks, id)
	return nil
}

func (s *Store) InsertUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if user.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return err
		}
		user.ID = id.String()
	}
	if _, ok := s.users[user.ID]; ok {
		return store.ErrDuplicate
	}
	for _, u := range s.users {
		if u.Email == user.Email {
			return store.ErrDuplicate
		}
	}

	clone := *user
	s.users[user.ID] = &clone
	return nil
}

func (s *Store) FindUser(_ context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}

	clone := *user
	return &clone, nil
}

func (s *Store) FindUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, user := range s.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) FindUserByGoogleID(_ context.Context, googleID string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if googleID == "" {
		return nil, store.ErrNotFound
	}
	for _, user := range s.users {
		if user.GoogleID == googleID {
			clone := *user
			return &clone, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) AllUsers(_ context.Context) ([]*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]*models.User, 0, len(s.users))
	for _, user := range s.users {
		clone := *user
		users = append(users, &clone)
	}
	return users, nil
}

func (s *Store) UpdateUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[user.ID]; !ok {
		return store.ErrNotFound
	}

	clone := *user
	s.users[user.ID] = &clone
	return nil
}

func (s *Store) DeleteUser(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return store.ErrNotFound
	}

	delete(s.users, id)
	return nil
}
