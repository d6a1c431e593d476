package client

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// api is the slice of the REST surface the driver needs. *Client
// satisfies it; tests substitute fakes.
type api interface {
	ListTasks(ctx context.Context) ([]Task, error)
	CreateTask(ctx context.Context, text string, completed bool) (Task, error)
	PatchTask(ctx context.Context, id string, patch TaskPatch) (Task, error)
	DeleteTask(ctx context.Context, id string) error
	CurrentUser(ctx context.Context) (User, error)
	Logout(ctx context.Context) error
}

// Notifier surfaces user-facing messages (the alert() of the browser
// original).
type Notifier func(message string)

// Driver issues task mutations and reconciles the cache against the
// server's responses. There is no optimistic mutation: the cache
// changes only after the server confirms, and it always adopts the
// server's lastUpdated so ordering matches the store even when clocks
// diverge.
type Driver struct {
	logger zerolog.Logger
	api    api
	cache  *Cache
	notify Notifier

	mu sync.Mutex
}

func NewDriver(logger zerolog.Logger, api api, notify Notifier) *Driver {
	if notify == nil {
		notify = func(string) {}
	}
	return &Driver{
		logger: logger,
		api:    api,
		cache:  NewCache(),
		notify: notify,
	}
}

// Cache exposes the cache for rendering.
func (d *Driver) Cache() *Cache {
	return d.cache
}

// Refresh replaces the cache contents with the server's task list.
func (d *Driver) Refresh(ctx context.Context) error {
	tasks, err := d.api.ListTasks(ctx)
	if err != nil {
		d.logger.Error().
			Err(err).
			Msg("failed to list tasks")
		d.notify("Failed to load tasks. Please check if the server is running.")
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	seen := make(map[string]bool, len(tasks))
	for _, task := range tasks {
		seen[task.ID] = true
		d.cache.Upsert(task)
	}
	for _, cached := range d.cache.Tasks() {
		if !seen[cached.ID] {
			d.cache.Remove(cached.ID)
		}
	}
	return nil
}

// Add creates a task. Empty input is rejected client-side before any
// request is issued.
func (d *Driver) Add(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		d.notify("Please enter a task to add.")
		return ErrEmptyText
	}

	task, err := d.api.CreateTask(ctx, text, false)
	if err != nil {
		d.logger.Error().
			Err(err).
			Msg("failed to create task")
		d.notify("Failed to add task. Please check if the server is running.")
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.cache.Upsert(task)
	return nil
}

// ToggleCompleted flips the completed flag. It is independent of the
// edit state machine: the patch carries the new flag plus the current
// text and goes out immediately.
func (d *Driver) ToggleCompleted(ctx context.Context, id string) error {
	d.mu.Lock()
	entry := d.cache.Get(id)
	if entry == nil {
		d.mu.Unlock()
		return ErrUnknownTask
	}
	text := entry.Task.Text
	completed := !entry.Task.Completed
	d.mu.Unlock()

	task, err := d.api.PatchTask(ctx, id, TaskPatch{
		Text:      &text,
		Completed: &completed,
	})
	if err != nil {
		d.logger.Error().
			Err(err).
			Str("task_id", id).
			Msg("failed to toggle task")
		d.notify("Failed to update task.")
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.cache.Upsert(task)
	return nil
}

// BeginEdit moves the task into editing-text, holding the single
// system-wide edit token.
func (d *Driver) BeginEdit(id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	err := d.cache.BeginEdit(id)
	if err != nil {
		if err == ErrEditInProgress {
			d.notify("Please save or cancel the current edit before editing another task.")
		}
		return err
	}
	return nil
}

// ConfirmEdit completes an edit. Unchanged text is a notified no-op;
// empty text reverts to the pre-edit value without a request; changed
// text goes through awaiting-server and the cache adopts the server's
// response.
func (d *Driver) ConfirmEdit(ctx context.Context, id, text string) error {
	d.mu.Lock()
	entry := d.cache.Get(id)
	if entry == nil {
		d.mu.Unlock()
		return ErrUnknownTask
	}
	if entry.State != StateEditing {
		d.mu.Unlock()
		return ErrNotEditing
	}

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		// Deterministic empty-confirm policy: revert, never delete.
		entry.Task.Text = entry.preEditText
		d.cache.EndEdit(id)
		d.mu.Unlock()
		d.notify("Task text cannot be empty; edit reverted.")
		return nil
	}
	if trimmed == entry.preEditText {
		d.cache.EndEdit(id)
		d.mu.Unlock()
		d.notify("No changes made.")
		return nil
	}

	entry.State = StateAwaitingServer
	d.mu.Unlock()

	task, err := d.api.PatchTask(ctx, id, TaskPatch{Text: &trimmed})

	d.mu.Lock()
	defer d.mu.Unlock()

	if err != nil {
		d.logger.Error().
			Err(err).
			Str("task_id", id).
			Msg("failed to save edit")
		// Cache stays unchanged; the user keeps editing.
		if e := d.cache.Get(id); e != nil {
			e.State = StateEditing
		}
		d.notify("Failed to save task.")
		return err
	}

	d.cache.EndEdit(id)
	d.cache.Upsert(task)
	return nil
}

// CancelEdit reverts the displayed text to the pre-edit value and
// releases the edit token. No request is issued.
func (d *Driver) CancelEdit(id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	entry := d.cache.Get(id)
	if entry == nil {
		return ErrUnknownTask
	}
	if entry.State != StateEditing {
		return ErrNotEditing
	}

	entry.Task.Text = entry.preEditText
	d.cache.EndEdit(id)
	return nil
}

// Delete issues the delete request first and removes the cached entry
// only once the server confirms.
func (d *Driver) Delete(ctx context.Context, id string) error {
	err := d.api.DeleteTask(ctx, id)
	if err != nil {
		d.logger.Error().
			Err(err).
			Str("task_id", id).
			Msg("failed to delete task")
		d.notify("Failed to delete task.")
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.cache.Remove(id)
	return nil
}

// SetFilter switches the visibility filter and returns the
// recomputed placeholder message.
func (d *Driver) SetFilter(filter Filter) string {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.cache.SetFilter(filter)
	return d.cache.Placeholder()
}

// WatchRole polls the current user's role at the given interval. On a
// role change it logs the session out, reports the new role and
// stops. Fire-and-forget: it is not coordinated with in-flight
// mutations. Cancel the context to stop it.
func (d *Driver) WatchRole(ctx context.Context, interval time.Duration, onChange func(newRole string)) {
	go func() {
		// Baseline the session's role before the first tick, so a
		// change landing between start and that tick is still seen.
		var knownRole string
		if user, err := d.api.CurrentUser(ctx); err == nil {
			knownRole = user.Role
		} else {
			d.logger.Warn().
				Err(err).
				Msg("initial role check failed")
		}

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}

			user, err := d.api.CurrentUser(ctx)
			if err != nil {
				d.logger.Warn().
					Err(err).
					Msg("role check failed")
				continue
			}
			if knownRole == "" {
				knownRole = user.Role
				continue
			}
			if user.Role != knownRole {
				d.notify("Your role has been updated to " + user.Role + ". You will now be logged out.")
				if err := d.api.Logout(ctx); err != nil {
					d.logger.Warn().
						Err(err).
						Msg("logout after role change failed")
				}
				if onChange != nil {
					onChange(user.Role)
				}
				return
			}
		}
	}()
}
