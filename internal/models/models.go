package models

import "time"

// Status is the kanban column a task belongs to
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in-progress"
	StatusDone       Status = "done"
	// StatusArchived is set by the service when a task is deleted. It never
	// appears on the board.
	StatusArchived Status = "archived"
)

// Statuses lists the board columns in display order
var Statuses = []Status{StatusTodo, StatusInProgress, StatusDone}

// Valid reports whether s is one of the board columns
func (s Status) Valid() bool {
	for _, st := range Statuses {
		if s == st {
			return true
		}
	}
	return false
}

// Priority of a task
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Priorities lists the priorities from lowest to highest
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

// Color is one of the fixed palette names shared by every record kind
type Color string

const (
	ColorPurple Color = "purple"
	ColorPink   Color = "pink"
	ColorOrange Color = "orange"
	ColorBlue   Color = "blue"
	ColorGreen  Color = "green"
)

// Palette is the ordered set of colors offered by the forms
var Palette = []Color{ColorPurple, ColorPink, ColorOrange, ColorBlue, ColorGreen}

// Labels offered by the note and event forms
var (
	Notebooks  = []string{"Работа", "Личное", "Идеи", "Обучение"}
	EventTypes = []string{"Работа", "Личное", "Здоровье", "Обучение"}
)

// Subtask is a checklist item of a task
type Subtask struct {
	ID        string
	Title     string
	Completed bool
}

// Task represents a single kanban card
type Task struct {
	ID          string
	Title       string
	Description string
	Status      Status
	Priority    Priority
	Color       Color
	Date        *time.Time // due date, nil when unset
	Subtasks    []Subtask  // never nil once decoded
	CreatedAt   time.Time
}

// Note represents a notebook entry
type Note struct {
	ID       string
	Title    string
	Content  string
	Notebook string
	Color    Color
	Date     time.Time // assigned by the server on creation
}

// Event represents a calendar entry
type Event struct {
	ID          string
	Title       string
	Date        time.Time
	Color       Color
	Type        string
	IsRecurring bool
}

// TaskDraft holds the fields of a task that has not been created yet
type TaskDraft struct {
	Title       string     `validate:"notblank"`
	Description string
	Status      Status     `validate:"omitempty,oneof=todo in-progress done"`
	Priority    Priority   `validate:"omitempty,oneof=low medium high"`
	Color       Color
	Date        *time.Time
	Subtasks    []string   // titles
}

// NoteDraft holds the fields of a note that has not been created yet
type NoteDraft struct {
	Title    string `validate:"notblank"`
	Content  string
	Notebook string
	Color    Color
}

// EventDraft holds the fields of an event that has not been created yet
type EventDraft struct {
	Title       string    `validate:"notblank"`
	Date        time.Time `validate:"required"`
	Color       Color
	Type        string
	IsRecurring bool
}
