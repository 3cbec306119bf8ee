package api

import (
	"time"

	"github.com/tgienger/organizer/internal/models"
)

func timePtr(t *Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.Time
	return &v
}

func timeValue(t *Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return t.Time
}

func wireTime(t *time.Time) *Time {
	if t == nil {
		return nil
	}
	return &Time{Time: *t}
}

// ToModel maps a remote task to its local shape. Absent subtasks become an
// empty slice.
func (t Task) ToModel() models.Task {
	subtasks := make([]models.Subtask, 0, len(t.Subtasks))
	for _, s := range t.Subtasks {
		subtasks = append(subtasks, models.Subtask{
			ID:        s.ID.String(),
			Title:     s.Title,
			Completed: s.Completed,
		})
	}
	return models.Task{
		ID:          t.ID.String(),
		Title:       t.Title,
		Description: t.Description,
		Status:      models.Status(t.Status),
		Priority:    models.Priority(t.Priority),
		Color:       models.Color(t.Color),
		Date:        timePtr(t.DueDate),
		Subtasks:    subtasks,
		CreatedAt:   timeValue(t.CreatedAt),
	}
}

// TaskFromModel builds the full update payload for a local task
func TaskFromModel(m models.Task) (Task, error) {
	id, err := ParseID(m.ID)
	if err != nil {
		return Task{}, err
	}
	t := Task{
		ID:          id,
		Title:       m.Title,
		Description: m.Description,
		Status:      string(m.Status),
		Priority:    string(m.Priority),
		Color:       string(m.Color),
		DueDate:     wireTime(m.Date),
	}
	for _, s := range m.Subtasks {
		sub := Subtask{Title: s.Title, Completed: s.Completed}
		if sid, err := ParseID(s.ID); err == nil {
			sub.ID = sid
		}
		t.Subtasks = append(t.Subtasks, sub)
	}
	return t, nil
}

// TaskFromDraft builds the create payload for a task draft
func TaskFromDraft(d models.TaskDraft) Task {
	t := Task{
		Title:       d.Title,
		Description: d.Description,
		Status:      string(d.Status),
		Priority:    string(d.Priority),
		Color:       string(d.Color),
		DueDate:     wireTime(d.Date),
	}
	for _, title := range d.Subtasks {
		t.Subtasks = append(t.Subtasks, Subtask{Title: title})
	}
	return t
}

// ToModel maps a remote note to its local shape; created_at becomes Date
func (n Note) ToModel() models.Note {
	return models.Note{
		ID:       n.ID.String(),
		Title:    n.Title,
		Content:  n.Content,
		Notebook: n.Notebook,
		Color:    models.Color(n.Color),
		Date:     timeValue(n.CreatedAt),
	}
}

// NoteFromModel builds the full update payload for a local note
func NoteFromModel(m models.Note) (Note, error) {
	id, err := ParseID(m.ID)
	if err != nil {
		return Note{}, err
	}
	return Note{
		ID:       id,
		Title:    m.Title,
		Content:  m.Content,
		Notebook: m.Notebook,
		Color:    string(m.Color),
	}, nil
}

// NoteFromDraft builds the create payload for a note draft
func NoteFromDraft(d models.NoteDraft) Note {
	return Note{
		Title:    d.Title,
		Content:  d.Content,
		Notebook: d.Notebook,
		Color:    string(d.Color),
	}
}

// ToModel maps a remote event to its local shape; event_date becomes Date and
// event_type becomes Type
func (e Event) ToModel() models.Event {
	return models.Event{
		ID:          e.ID.String(),
		Title:       e.Title,
		Date:        timeValue(e.EventDate),
		Color:       models.Color(e.Color),
		Type:        e.EventType,
		IsRecurring: e.IsRecurring,
	}
}

// EventFromModel builds the full update payload for a local event
func EventFromModel(m models.Event) (Event, error) {
	id, err := ParseID(m.ID)
	if err != nil {
		return Event{}, err
	}
	return Event{
		ID:          id,
		Title:       m.Title,
		EventDate:   &Time{Time: m.Date},
		Color:       string(m.Color),
		EventType:   m.Type,
		IsRecurring: m.IsRecurring,
	}, nil
}

// EventFromDraft builds the create payload for an event draft
func EventFromDraft(d models.EventDraft) Event {
	return Event{
		Title:       d.Title,
		EventDate:   &Time{Time: d.Date},
		Color:       string(d.Color),
		EventType:   d.Type,
		IsRecurring: d.IsRecurring,
	}
}
