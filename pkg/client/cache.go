package client

import (
	"errors"
	"fmt"
)

// State is the view state of a cached task.
type State int

const (
	StateViewing State = iota
	StateEditing
	StateAwaitingServer
)

func (s State) String() string {
	switch s {
	case StateViewing:
		return "viewing"
	case StateEditing:
		return "editing-text"
	case StateAwaitingServer:
		return "awaiting-server"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Filter controls visibility only. It never removes or reorders
// entries.
type Filter string

const (
	FilterAll        Filter = "all"
	FilterCompleted  Filter = "completed"
	FilterInProgress Filter = "in-progress"
)

var (
	ErrUnknownTask    = errors.New("unknown task")
	ErrEditInProgress = errors.New("another task is being edited")
	ErrNotEditing     = errors.New("task is not being edited")
	ErrEmptyText      = errors.New("task text is empty")
)

// Entry is one cached task plus its view state.
type Entry struct {
	Task  Task
	State State

	// preEditText holds the text shown before the current edit began,
	// for cancel and empty-confirm reverts.
	preEditText string
}

// Visible reports whether the entry passes the given filter.
func (e *Entry) Visible(filter Filter) bool {
	switch filter {
	case FilterCompleted:
		return e.Task.Completed
	case FilterInProgress:
		return !e.Task.Completed
	default:
		return true
	}
}

// Cache is the client-side reflection of the task store: one entry
// per task id, ordered by descending lastUpdated. It holds the single
// system-wide active-edit token. Not safe for concurrent use; the
// driver serializes access.
type Cache struct {
	entries []*Entry
	index   map[string]*Entry
	editing string // id holding the edit token; empty if none
	filter  Filter
}

func NewCache() *Cache {
	return &Cache{
		index:  make(map[string]*Entry),
		filter: FilterAll,
	}
}

// Upsert reconciles a task into the cache: the stale entry (if any)
// is removed and the task is re-inserted at its sorted position. The
// task's lastUpdated must be the server's value, never a local clock.
func (c *Cache) Upsert(task Task) *Entry {
	entry, ok := c.index[task.ID]
	if ok {
		c.detach(entry)
		entry.Task = task
	} else {
		entry = &Entry{Task: task}
		c.index[task.ID] = entry
	}
	c.insertSorted(entry)
	return entry
}

// insertSorted places the entry immediately before the first entry
// whose lastUpdated is strictly older; with no older entry it is
// appended. Entries sharing a timestamp therefore keep their
// existing position ahead of the newcomer.
func (c *Cache) insertSorted(entry *Entry) {
	for i, existing := range c.entries {
		if existing.Task.LastUpdated.Before(entry.Task.LastUpdated) {
			c.entries = append(c.entries, nil)
			copy(c.entries[i+1:], c.entries[i:])
			c.entries[i] = entry
			return
		}
	}
	c.entries = append(c.entries, entry)
}

func (c *Cache) detach(entry *Entry) {
	for i, existing := range c.entries {
		if existing == entry {
			c.entries = append(c.entries[:i], c.entries[i+1:]...)
			return
		}
	}
}

// Remove drops the entry and releases the edit token if it held it.
func (c *Cache) Remove(id string) {
	entry, ok := c.index[id]
	if !ok {
		return
	}
	c.detach(entry)
	delete(c.index, id)
	if c.editing == id {
		c.editing = ""
	}
}

// Get returns the entry for the id, or nil.
func (c *Cache) Get(id string) *Entry {
	return c.index[id]
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	return len(c.entries)
}

// Tasks returns the cached tasks in display order.
func (c *Cache) Tasks() []Task {
	tasks := make([]Task, 0, len(c.entries))
	for _, entry := range c.entries {
		tasks = append(tasks, entry.Task)
	}
	return tasks
}

// Editing returns the id of the task holding the edit token, or "".
func (c *Cache) Editing() string {
	return c.editing
}

// BeginEdit moves the entry to editing-text. Only one entry may be
// mid-edit at a time; a second attempt fails with ErrEditInProgress
// and changes nothing.
func (c *Cache) BeginEdit(id string) error {
	entry, ok := c.index[id]
	if !ok {
		return ErrUnknownTask
	}
	if c.editing != "" && c.editing != id {
		return ErrEditInProgress
	}
	if entry.State == StateEditing {
		return nil
	}
	entry.State = StateEditing
	entry.preEditText = entry.Task.Text
	c.editing = id
	return nil
}

// PreEditText returns the text saved when the edit began.
func (c *Cache) PreEditText(id string) string {
	entry, ok := c.index[id]
	if !ok {
		return ""
	}
	return entry.preEditText
}

// EndEdit returns the entry to viewing and releases the edit token.
func (c *Cache) EndEdit(id string) {
	entry, ok := c.index[id]
	if !ok {
		return
	}
	entry.State = StateViewing
	entry.preEditText = ""
	if c.editing == id {
		c.editing = ""
	}
}

// SetFilter switches the visibility filter.
func (c *Cache) SetFilter(filter Filter) {
	c.filter = filter
}

func (c *Cache) Filter() Filter {
	return c.filter
}

// VisibleTasks returns the tasks passing the current filter, in
// display order.
func (c *Cache) VisibleTasks() []Task {
	tasks := make([]Task, 0, len(c.entries))
	for _, entry := range c.entries {
		if entry.Visible(c.filter) {
			tasks = append(tasks, entry.Task)
		}
	}
	return tasks
}

// Placeholder returns the "no tasks" message for the current filter,
// derived from the visible count. Empty when tasks are visible.
func (c *Cache) Placeholder() string {
	if len(c.VisibleTasks()) > 0 {
		return ""
	}
	switch c.filter {
	case FilterCompleted:
		return "No completed tasks"
	case FilterInProgress:
		return "No tasks in progress"
	default:
		return "No tasks yet"
	}
}
