package syncstore

import (
	"context"
	"fmt"

	"github.com/tgienger/organizer/internal/models"
)

// TaskStore mirrors the tasks collection. Besides the generic operations it
// moves tasks between board columns and keeps local subtask check marks.
type TaskStore struct {
	*Store[models.Task, models.TaskDraft]

	// overlay holds subtask completion toggled locally and not yet reported
	// back by the server, keyed by task id then subtask id. Guarded by Store.mu.
	overlay map[string]map[string]bool
}

// NewTaskStore creates a store for the tasks endpoint
func NewTaskStore(remote Remote, opts ...Option) *TaskStore {
	ts := &TaskStore{
		Store:   New[models.Task, models.TaskDraft](taskKind{}, remote, opts...),
		overlay: make(map[string]map[string]bool),
	}
	ts.reconcile = ts.applyOverlay
	return ts
}

// UpdateStatus moves a task to another column. The full task is sent so the
// server never resets fields the change did not touch.
func (ts *TaskStore) UpdateStatus(ctx context.Context, id string, status models.Status) error {
	if !status.Valid() {
		return ts.fail(OpUpdate, ErrValidation, fmt.Errorf("unknown status %q", status))
	}
	return ts.Update(ctx, id, func(t *models.Task) {
		t.Status = status
	})
}

// ToggleSubtask flips the completion of one subtask in the cache. No request
// is made; the mark survives refreshes until the server reports the same value
// or the subtask disappears. It reports whether anything changed.
func (ts *TaskStore) ToggleSubtask(taskID, subtaskID string) bool {
	return ts.mutateLocal(taskID, func(t models.Task) (models.Task, bool) {
		for i := range t.Subtasks {
			if t.Subtasks[i].ID != subtaskID {
				continue
			}
			t.Subtasks[i].Completed = !t.Subtasks[i].Completed

			marks, ok := ts.overlay[taskID]
			if !ok {
				marks = make(map[string]bool)
				ts.overlay[taskID] = marks
			}
			marks[subtaskID] = t.Subtasks[i].Completed
			return t, true
		}
		return t, false
	})
}

// Pending returns how many local subtask marks the server has not confirmed
func (ts *TaskStore) Pending() int {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	n := 0
	for _, marks := range ts.overlay {
		n += len(marks)
	}
	return n
}

// applyOverlay re-applies local marks to a fetched snapshot and forgets the
// ones that are confirmed or orphaned. Called with mu held.
func (ts *TaskStore) applyOverlay(records []models.Task) []models.Task {
	if len(ts.overlay) == 0 {
		return records
	}

	next := make(map[string]map[string]bool)
	for i := range records {
		marks, ok := ts.overlay[records[i].ID]
		if !ok {
			continue
		}
		for j := range records[i].Subtasks {
			sub := &records[i].Subtasks[j]
			want, ok := marks[sub.ID]
			if !ok || sub.Completed == want {
				continue
			}
			sub.Completed = want
			if next[records[i].ID] == nil {
				next[records[i].ID] = make(map[string]bool)
			}
			next[records[i].ID][sub.ID] = want
		}
	}
	ts.overlay = next
	return records
}
