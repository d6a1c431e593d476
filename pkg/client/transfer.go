package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidImport   = errors.New("imported data is not an array of tasks")
	ErrNothingToExport = errors.New("task list is empty")
)

// ImportResult counts the outcome of a bulk import.
type ImportResult struct {
	Imported int
	Skipped  int
}

// importRecord accepts the field spellings seen in exported task
// files from other tools. The first non-empty text-like field wins.
type importRecord struct {
	Text        string `json:"text"`
	Task        string `json:"task"`
	Content     string `json:"content"`
	Description string `json:"description"`

	Completed bool   `json:"completed"`
	Status    string `json:"status"`
	Done      bool   `json:"done"`
}

func (r importRecord) text() string {
	for _, candidate := range []string{r.Text, r.Task, r.Content, r.Description} {
		if strings.TrimSpace(candidate) != "" {
			return strings.TrimSpace(candidate)
		}
	}
	return ""
}

func (r importRecord) completed() bool {
	return r.Completed || r.Status == "completed" || r.Done
}

// Import creates a task for every valid entry in a JSON array.
// Entries without a usable text field are skipped and counted rather
// than failing the whole import. The cache is refreshed afterwards so
// the imported tasks carry the server's ids and timestamps.
func (d *Driver) Import(ctx context.Context, data []byte) (ImportResult, error) {
	var entries []json.RawMessage
	if err := json.Unmarshal(data, &entries); err != nil {
		d.notify("Invalid JSON format. Please check your file.")
		return ImportResult{}, fmt.Errorf("%w: %w", ErrInvalidImport, err)
	}

	var result ImportResult
	for _, entry := range entries {
		var record importRecord
		if err := json.Unmarshal(entry, &record); err != nil {
			result.Skipped++
			continue
		}
		text := record.text()
		if text == "" {
			result.Skipped++
			continue
		}

		_, err := d.api.CreateTask(ctx, text, record.completed())
		if err != nil {
			d.logger.Error().
				Err(err).
				Msg("failed to import task")
			result.Skipped++
			continue
		}
		result.Imported++
	}

	if err := d.Refresh(ctx); err != nil {
		return result, err
	}

	switch {
	case result.Imported > 0 && result.Skipped == 0:
		d.notify(fmt.Sprintf("Successfully imported %d tasks.", result.Imported))
	case result.Imported > 0:
		d.notify(fmt.Sprintf("Imported %d tasks successfully, but %d tasks could not be imported due to errors.",
			result.Imported, result.Skipped))
	default:
		d.notify("Failed to import any tasks. Please check if the file format is correct.")
	}
	return result, nil
}

// Export fetches the server's current task list and returns it as
// indented JSON. An empty list is refused.
func (d *Driver) Export(ctx context.Context) ([]byte, error) {
	tasks, err := d.api.ListTasks(ctx)
	if err != nil {
		d.logger.Error().
			Err(err).
			Msg("failed to export tasks")
		d.notify("Failed to load tasks. Please check if the server is running.")
		return nil, err
	}
	if len(tasks) == 0 {
		d.notify("Cannot export: your task list is empty!")
		return nil, ErrNothingToExport
	}

	return json.MarshalIndent(tasks, "", "  ")
}
