package client_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lrcr/todoplane/pkg/client"
)

func at(hour, minute int) time.Time {
	return time.Date(2024, 3, 1, hour, minute, 0, 0, time.UTC)
}

func texts(tasks []client.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, task := range tasks {
		out = append(out, task.Text)
	}
	return out
}

func TestCache_OrderedByLastUpdatedDescending(t *testing.T) {
	cache := client.NewCache()

	cache.Upsert(client.Task{ID: "a", Text: "a", LastUpdated: at(10, 0)})
	cache.Upsert(client.Task{ID: "b", Text: "b", LastUpdated: at(10, 5)})
	cache.Upsert(client.Task{ID: "c", Text: "c", LastUpdated: at(9, 0)})

	assert.Equal(t, []string{"b", "a", "c"}, texts(cache.Tasks()))
}

func TestCache_UpsertMovesUpdatedEntry(t *testing.T) {
	cache := client.NewCache()

	cache.Upsert(client.Task{ID: "a", Text: "a", LastUpdated: at(10, 0)})
	cache.Upsert(client.Task{ID: "b", Text: "b", LastUpdated: at(10, 5)})

	cache.Upsert(client.Task{ID: "a", Text: "a2", LastUpdated: at(10, 10)})

	assert.Equal(t, []string{"a2", "b"}, texts(cache.Tasks()))
	assert.Equal(t, 2, cache.Len())
}

func TestCache_EqualTimestampsKeepArrivalOrder(t *testing.T) {
	cache := client.NewCache()
	stamp := at(10, 0)

	cache.Upsert(client.Task{ID: "a", Text: "a", LastUpdated: stamp})
	cache.Upsert(client.Task{ID: "b", Text: "b", LastUpdated: stamp})
	cache.Upsert(client.Task{ID: "c", Text: "c", LastUpdated: stamp})

	// Newcomers land after entries sharing their timestamp.
	assert.Equal(t, []string{"a", "b", "c"}, texts(cache.Tasks()))
}

func TestCache_SingleEditToken(t *testing.T) {
	cache := client.NewCache()
	cache.Upsert(client.Task{ID: "a", Text: "a", LastUpdated: at(10, 0)})
	cache.Upsert(client.Task{ID: "b", Text: "b", LastUpdated: at(10, 5)})

	require.NoError(t, cache.BeginEdit("a"))
	assert.Equal(t, "a", cache.Editing())
	assert.Equal(t, client.StateEditing, cache.Get("a").State)

	// Second edit attempt fails and leaves both entries untouched.
	assert.ErrorIs(t, cache.BeginEdit("b"), client.ErrEditInProgress)
	assert.Equal(t, client.StateViewing, cache.Get("b").State)
	assert.Equal(t, "a", cache.Editing())

	// Re-entering the same edit is a no-op.
	require.NoError(t, cache.BeginEdit("a"))

	cache.EndEdit("a")
	assert.Empty(t, cache.Editing())
	require.NoError(t, cache.BeginEdit("b"))
}

func TestCache_BeginEditUnknownTask(t *testing.T) {
	cache := client.NewCache()
	assert.ErrorIs(t, cache.BeginEdit("ghost"), client.ErrUnknownTask)
}

func TestCache_RemoveReleasesEditToken(t *testing.T) {
	cache := client.NewCache()
	cache.Upsert(client.Task{ID: "a", Text: "a", LastUpdated: at(10, 0)})

	require.NoError(t, cache.BeginEdit("a"))
	cache.Remove("a")

	assert.Empty(t, cache.Editing())
	assert.Zero(t, cache.Len())
}

func TestCache_PreEditText(t *testing.T) {
	cache := client.NewCache()
	cache.Upsert(client.Task{ID: "a", Text: "original", LastUpdated: at(10, 0)})

	require.NoError(t, cache.BeginEdit("a"))
	cache.Get("a").Task.Text = "draft"

	assert.Equal(t, "original", cache.PreEditText("a"))
}

func TestCache_FilterVisibilityOnly(t *testing.T) {
	cache := client.NewCache()
	cache.Upsert(client.Task{ID: "a", Text: "done", Completed: true, LastUpdated: at(10, 5)})
	cache.Upsert(client.Task{ID: "b", Text: "open", LastUpdated: at(10, 0)})

	cache.SetFilter(client.FilterCompleted)
	assert.Equal(t, []string{"done"}, texts(cache.VisibleTasks()))

	cache.SetFilter(client.FilterInProgress)
	assert.Equal(t, []string{"open"}, texts(cache.VisibleTasks()))

	// Filtering never drops entries.
	cache.SetFilter(client.FilterAll)
	assert.Equal(t, []string{"done", "open"}, texts(cache.VisibleTasks()))
	assert.Equal(t, 2, cache.Len())
}

func TestCache_Placeholder(t *testing.T) {
	cache := client.NewCache()
	assert.Equal(t, "No tasks yet", cache.Placeholder())

	cache.Upsert(client.Task{ID: "a", Text: "open", LastUpdated: at(10, 0)})
	assert.Empty(t, cache.Placeholder())

	cache.SetFilter(client.FilterCompleted)
	assert.Equal(t, "No completed tasks", cache.Placeholder())

	cache.SetFilter(client.FilterInProgress)
	assert.Empty(t, cache.Placeholder())

	cache.Upsert(client.Task{ID: "a", Text: "open", Completed: true, LastUpdated: at(10, 1)})
	assert.Equal(t, "No tasks in progress", cache.Placeholder())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "viewing", client.StateViewing.String())
	assert.Equal(t, "editing-text", client.StateEditing.String())
	assert.Equal(t, "awaiting-server", client.StateAwaitingServer.String())
}
