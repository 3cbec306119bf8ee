package db

import (
	"context"
	"fmt"
	"time"

	"github.com/tgienger/organizer/internal/api"
)

type eventRow struct {
	ID          int64     `db:"id"`
	Title       string    `db:"title"`
	EventDate   time.Time `db:"event_date"`
	Color       string    `db:"color"`
	EventType   string    `db:"event_type"`
	IsRecurring bool      `db:"is_recurring"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (r eventRow) toAPI() api.Event {
	return api.Event{
		ID:          api.ID(r.ID),
		Title:       r.Title,
		EventDate:   &api.Time{Time: r.EventDate},
		Color:       r.Color,
		EventType:   r.EventType,
		IsRecurring: r.IsRecurring,
		CreatedAt:   &api.Time{Time: r.CreatedAt},
		UpdatedAt:   &api.Time{Time: r.UpdatedAt},
	}
}

func eventDate(t *api.Time) (time.Time, error) {
	if t == nil || t.IsZero() {
		return time.Time{}, fmt.Errorf("event_date is required")
	}
	return t.Time.UTC(), nil
}

// ListEvents returns all events, earliest first
func (db *DB) ListEvents(ctx context.Context) ([]api.Event, error) {
	var rows []eventRow
	err := db.SelectContext(ctx, &rows, `
		SELECT id, title, event_date, color, event_type, is_recurring, created_at, updated_at
		FROM events
		ORDER BY event_date ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}

	events := make([]api.Event, 0, len(rows))
	for _, r := range rows {
		events = append(events, r.toAPI())
	}
	return events, nil
}

// CreateEvent inserts an event and returns its id
func (db *DB) CreateEvent(ctx context.Context, e api.Event) (api.ID, error) {
	date, err := eventDate(e.EventDate)
	if err != nil {
		return 0, fmt.Errorf("create event: %w", err)
	}

	var id int64
	err = db.QueryRowxContext(ctx, db.Rebind(`
		INSERT INTO events (title, event_date, color, event_type, is_recurring)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id
	`), e.Title, date, orDefault(e.Color, DefaultColor), orDefault(e.EventType, DefaultEventType), e.IsRecurring).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create event: %w", err)
	}
	return api.ID(id), nil
}

// UpdateEvent overwrites an event's editable fields
func (db *DB) UpdateEvent(ctx context.Context, e api.Event) error {
	date, err := eventDate(e.EventDate)
	if err != nil {
		return fmt.Errorf("update event %d: %w", e.ID, err)
	}

	res, err := db.ExecContext(ctx, db.Rebind(`
		UPDATE events
		SET title = ?, event_date = ?, color = ?, event_type = ?, is_recurring = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`), e.Title, date, orDefault(e.Color, DefaultColor), orDefault(e.EventType, DefaultEventType), e.IsRecurring, int64(e.ID))
	if err != nil {
		return fmt.Errorf("update event %d: %w", e.ID, err)
	}
	if err := checkAffected(res); err != nil {
		return fmt.Errorf("update event %d: %w", e.ID, err)
	}
	return nil
}
