package memory

import (
	"context"
	"time"

	"github.com/lrcr/todoplane/internal/models"
)

const (
	DemoUserID  = "demo-user"
	DemoAdminID = "demo-admin"

	DemoUserEmail  = "demo@example.com"
	DemoAdminEmail = "admin@example.com"
)

// SeedDemo loads the demo fixtures: two users and a welcome
// task list for the regular demo user.
func (s *Store) SeedDemo(ctx context.Context, now time.Time) error {
	users := []*models.User{
		{
			ID:          DemoUserID,
			DisplayName: "Demo User",
			Email:       DemoUserEmail,
			Role:        models.RoleUser,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		{
			ID:          DemoAdminID,
			DisplayName: "Demo Admin",
			Email:       DemoAdminEmail,
			Role:        models.RoleAdmin,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
	}
	for _, user := range users {
		err := s.InsertUser(ctx, user)
		if err != nil {
			return err
		}
	}

	tasks := []*models.Task{
		{OwnerID: DemoUserID, Text: "Welcome to your Todo List!"},
		{OwnerID: DemoUserID, Text: "Add your first task"},
		{OwnerID: DemoUserID, Text: "Mark tasks as complete", Completed: true},
	}
	for _, task := range tasks {
		task.LastUpdated = now
		err := s.InsertTask(ctx, task)
		if err != nil {
			return err
		}
	}
	return nil
}
