package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lrcr/todoplane/internal/models"
	"github.com/lrcr/todoplane/internal/store"
	"github.com/lrcr/todoplane/internal/store/memory"
)

func TestInsertTask_AssignsID(t *testing.T) {
	st := memory.New()
	ctx := context.Background()

	task := &models.Task{
		OwnerID:     "u1",
		Text:        "Buy milk",
		LastUpdated: time.Now(),
	}
	err := st.InsertTask(ctx, task)
	require.NoError(t, err)
	assert.NotEmpty(t, task.ID)

	found, err := st.FindTask(ctx, task.ID, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Buy milk", found.Text)
	assert.Equal(t, "u1", found.OwnerID)
}

func TestFindTask_OwnerScope(t *testing.T) {
	st := memory.New()
	ctx := context.Background()

	task := &models.Task{OwnerID: "u1", Text: "mine"}
	require.NoError(t, st.InsertTask(ctx, task))

	_, err := st.FindTask(ctx, task.ID, "u2")
	assert.ErrorIs(t, err, store.ErrNotFound)

	// Empty scope is admin access.
	found, err := st.FindTask(ctx, task.ID, "")
	require.NoError(t, err)
	assert.Equal(t, task.ID, found.ID)
}

func TestUpdateTask_PartialPatch(t *testing.T) {
	st := memory.New()
	ctx := context.Background()

	task := &models.Task{OwnerID: "u1", Text: "original", LastUpdated: time.Now()}
	require.NoError(t, st.InsertTask(ctx, task))

	completed := true
	stamp := time.Now().Add(time.Minute)
	updated, err := st.UpdateTask(ctx, task.ID, "u1", store.TaskPatch{Completed: &completed}, stamp)
	require.NoError(t, err)

	assert.Equal(t, "original", updated.Text)
	assert.True(t, updated.Completed)
	assert.True(t, updated.LastUpdated.Equal(stamp))
}

func TestUpdateTask_WrongOwner(t *testing.T) {
	st := memory.New()
	ctx := context.Background()

	task := &models.Task{OwnerID: "u1", Text: "x"}
	require.NoError(t, st.InsertTask(ctx, task))

	text := "hijacked"
	_, err := st.UpdateTask(ctx, task.ID, "u2", store.TaskPatch{Text: &text}, time.Now())
	assert.ErrorIs(t, err, store.ErrNotFound)

	found, err := st.FindTask(ctx, task.ID, "u1")
	require.NoError(t, err)
	assert.Equal(t, "x", found.Text)
}

func TestDeleteTask_RepeatedDeleteFails(t *testing.T) {
	st := memory.New()
	ctx := context.Background()

	task := &models.Task{OwnerID: "u1", Text: "x"}
	require.NoError(t, st.InsertTask(ctx, task))

	require.NoError(t, st.DeleteTask(ctx, task.ID, "u1"))
	assert.ErrorIs(t, st.DeleteTask(ctx, task.ID, "u1"), store.ErrNotFound)
}

func TestFindTasksByOwner(t *testing.T) {
	st := memory.New()
	ctx := context.Background()

	require.NoError(t, st.InsertTask(ctx, &models.Task{OwnerID: "u1", Text: "a"}))
	require.NoError(t, st.InsertTask(ctx, &models.Task{OwnerID: "u1", Text: "b"}))
	require.NoError(t, st.InsertTask(ctx, &models.Task{OwnerID: "u2", Text: "c"}))

	tasks, err := st.FindTasksByOwner(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, tasks, 2)

	all, err := st.AllTasks(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestInsertUser_DuplicateEmail(t *testing.T) {
	st := memory.New()
	ctx := context.Background()

	user := &models.User{Email: "a@example.com", Role: models.RoleUser}
	require.NoError(t, st.InsertUser(ctx, user))

	dup := &models.User{Email: "a@example.com", Role: models.RoleUser}
	assert.ErrorIs(t, st.InsertUser(ctx, dup), store.ErrDuplicate)
}

func TestSeedDemo(t *testing.T) {
	st := memory.New()
	ctx := context.Background()

	require.NoError(t, st.SeedDemo(ctx, time.Now()))

	user, err := st.FindUser(ctx, memory.DemoUserID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, user.Role)

	admin, err := st.FindUser(ctx, memory.DemoAdminID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, admin.Role)

	tasks, err := st.FindTasksByOwner(ctx, memory.DemoUserID)
	require.NoError(t, err)
	assert.Len(t, tasks, 3)
}
