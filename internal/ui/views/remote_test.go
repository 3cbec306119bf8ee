package views

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tgienger/organizer/internal/api"
)

// memRemote is an in-memory collection endpoint. Records are api.Task,
// api.Note or api.Event values; ids are assigned from 101 upward.
type memRemote struct {
	mu      sync.Mutex
	records []any
	nextID  api.ID
	creates []any
	updates []any
	fail    error
	listErr error // fails List only; writes still succeed
}

func newMemRemote(records ...any) *memRemote {
	return &memRemote{records: records, nextID: 100}
}

func (r *memRemote) List(ctx context.Context) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return nil, r.fail
	}
	if r.listErr != nil {
		return nil, r.listErr
	}
	if r.records == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(r.records)
}

func (r *memRemote) Create(ctx context.Context, payload any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return r.fail
	}
	r.creates = append(r.creates, payload)
	r.nextID++
	switch rec := payload.(type) {
	case api.Task:
		rec.ID = r.nextID
		if rec.Status == "" {
			rec.Status = "todo"
		}
		for i := range rec.Subtasks {
			rec.Subtasks[i].ID = r.nextID*10 + api.ID(i)
		}
		r.records = append([]any{rec}, r.records...)
	case api.Note:
		rec.ID = r.nextID
		r.records = append([]any{rec}, r.records...)
	case api.Event:
		rec.ID = r.nextID
		r.records = append(r.records, rec)
	default:
		return errors.New("unexpected payload")
	}
	return nil
}

func (r *memRemote) Update(ctx context.Context, payload any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return r.fail
	}
	r.updates = append(r.updates, payload)
	task, ok := payload.(api.Task)
	if !ok {
		return errors.New("unexpected payload")
	}
	for i, rec := range r.records {
		if t, ok := rec.(api.Task); ok && t.ID == task.ID {
			r.records[i] = task
			return nil
		}
	}
	return errors.New("not found")
}

func (r *memRemote) counts() (creates, updates int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.creates), len(r.updates)
}

func press(s string) tea.KeyMsg {
	switch s {
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// run feeds msg to m, then the store results its commands produce. Other
// commands (cursor blinks) are dropped.
func run(m tea.Model, msg tea.Msg) {
	for {
		_, cmd := m.Update(msg)
		if cmd == nil {
			return
		}
		msg = cmd()
		switch msg.(type) {
		case tasksLoadedMsg, tasksFailedMsg,
			notesLoadedMsg, notesFailedMsg,
			eventsLoadedMsg, eventsFailedMsg:
			continue
		}
		return
	}
}

func typeText(m tea.Model, text string) {
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
}
