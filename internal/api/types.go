// Package api defines the JSON shapes exchanged with the collection service
// and an HTTP client for one collection endpoint.
package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ID is a record identifier. The service emits numbers; numeric strings are
// accepted as well.
type ID int64

func (id ID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// ParseID converts a local string id back to its wire form
func ParseID(s string) (ID, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q: %w", s, err)
	}
	return ID(n), nil
}

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		parsed, err := ParseID(s)
		if err != nil {
			return err
		}
		*id = parsed
		return nil
	}
	var n int64
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid id %s: %w", data, err)
	}
	*id = ID(n)
	return nil
}

// timeLayouts are tried in order when decoding a timestamp. Older services
// emit timestamps without a zone; those are read as UTC.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// ParseTime parses any of the accepted timestamp forms
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// Time is a timestamp that tolerates the service's historical formats
type Time struct {
	time.Time
}

func (t Time) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Time.UTC().Format(time.RFC3339))
}

func (t *Time) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("timestamp must be a string: %w", err)
	}
	parsed, err := ParseTime(s)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

// Subtask as stored remotely
type Subtask struct {
	ID        ID     `json:"id,omitempty"`
	Title     string `json:"title" validate:"notblank"`
	Completed bool   `json:"completed"`
}

// Task is the remote task record
type Task struct {
	ID          ID        `json:"id,omitempty"`
	Title       string    `json:"title" validate:"notblank"`
	Description string    `json:"description"`
	Status      string    `json:"status,omitempty" validate:"omitempty,oneof=todo in-progress done archived"`
	Priority    string    `json:"priority,omitempty" validate:"omitempty,oneof=low medium high"`
	Color       string    `json:"color,omitempty"`
	DueDate     *Time     `json:"due_date"`
	Subtasks    []Subtask `json:"subtasks,omitempty" validate:"dive"`
	CreatedAt   *Time     `json:"created_at,omitempty"`
	UpdatedAt   *Time     `json:"updated_at,omitempty"`
}

// Note is the remote note record
type Note struct {
	ID        ID     `json:"id,omitempty"`
	Title     string `json:"title" validate:"notblank"`
	Content   string `json:"content"`
	Notebook  string `json:"notebook,omitempty"`
	Color     string `json:"color,omitempty"`
	CreatedAt *Time  `json:"created_at,omitempty"`
	UpdatedAt *Time  `json:"updated_at,omitempty"`
}

// Event is the remote event record
type Event struct {
	ID          ID     `json:"id,omitempty"`
	Title       string `json:"title" validate:"notblank"`
	EventDate   *Time  `json:"event_date" validate:"required"`
	Color       string `json:"color,omitempty"`
	EventType   string `json:"event_type,omitempty"`
	IsRecurring bool   `json:"is_recurring"`
	CreatedAt   *Time  `json:"created_at,omitempty"`
	UpdatedAt   *Time  `json:"updated_at,omitempty"`
}

// Created is the body of a successful create
type Created struct {
	ID      ID     `json:"id"`
	Message string `json:"message"`
}

// Message is the body of a successful update or archive
type Message struct {
	Message string `json:"message"`
}

// ErrorBody is the body of a failed request
type ErrorBody struct {
	Error string `json:"error"`
}
