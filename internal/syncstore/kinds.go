package syncstore

import (
	"encoding/json"
	"slices"

	"github.com/tgienger/organizer/internal/api"
	"github.com/tgienger/organizer/internal/models"
)

// Collection names
const (
	TasksCollection  = "tasks"
	NotesCollection  = "notes"
	EventsCollection = "events"
)

func decodeList[W any, R any](body []byte, toModel func(W) R) ([]R, error) {
	var wire []W
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, err
	}
	out := make([]R, 0, len(wire))
	for _, w := range wire {
		out = append(out, toModel(w))
	}
	return out, nil
}

type taskKind struct{}

func (taskKind) Name() string { return TasksCollection }

func (taskKind) Decode(body []byte) ([]models.Task, error) {
	return decodeList(body, api.Task.ToModel)
}

func (taskKind) CreatePayload(d models.TaskDraft) any { return api.TaskFromDraft(d) }

func (taskKind) UpdatePayload(t models.Task) (any, error) { return api.TaskFromModel(t) }

func (taskKind) ID(t models.Task) string { return t.ID }

func (taskKind) Clone(t models.Task) models.Task {
	t.Subtasks = slices.Clone(t.Subtasks)
	if t.Date != nil {
		d := *t.Date
		t.Date = &d
	}
	return t
}

type noteKind struct{}

func (noteKind) Name() string { return NotesCollection }

func (noteKind) Decode(body []byte) ([]models.Note, error) {
	return decodeList(body, api.Note.ToModel)
}

func (noteKind) CreatePayload(d models.NoteDraft) any { return api.NoteFromDraft(d) }

func (noteKind) UpdatePayload(n models.Note) (any, error) { return api.NoteFromModel(n) }

func (noteKind) ID(n models.Note) string { return n.ID }

func (noteKind) Clone(n models.Note) models.Note { return n }

type eventKind struct{}

func (eventKind) Name() string { return EventsCollection }

func (eventKind) Decode(body []byte) ([]models.Event, error) {
	return decodeList(body, api.Event.ToModel)
}

func (eventKind) CreatePayload(d models.EventDraft) any { return api.EventFromDraft(d) }

func (eventKind) UpdatePayload(e models.Event) (any, error) { return api.EventFromModel(e) }

func (eventKind) ID(e models.Event) string { return e.ID }

func (eventKind) Clone(e models.Event) models.Event { return e }

// NoteStore mirrors the notes collection
type NoteStore = Store[models.Note, models.NoteDraft]

// EventStore mirrors the events collection
type EventStore = Store[models.Event, models.EventDraft]

// NewNoteStore creates a store for the notes endpoint
func NewNoteStore(remote Remote, opts ...Option) *NoteStore {
	return New[models.Note, models.NoteDraft](noteKind{}, remote, opts...)
}

// NewEventStore creates a store for the events endpoint
func NewEventStore(remote Remote, opts ...Option) *EventStore {
	return New[models.Event, models.EventDraft](eventKind{}, remote, opts...)
}
