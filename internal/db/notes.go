package db

import (
	"context"
	"fmt"
	"time"

	"github.com/tgienger/organizer/internal/api"
)

type noteRow struct {
	ID        int64     `db:"id"`
	Title     string    `db:"title"`
	Content   string    `db:"content"`
	Notebook  string    `db:"notebook"`
	Color     string    `db:"color"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r noteRow) toAPI() api.Note {
	return api.Note{
		ID:        api.ID(r.ID),
		Title:     r.Title,
		Content:   r.Content,
		Notebook:  r.Notebook,
		Color:     r.Color,
		CreatedAt: &api.Time{Time: r.CreatedAt},
		UpdatedAt: &api.Time{Time: r.UpdatedAt},
	}
}

// ListNotes returns all notes, newest first
func (db *DB) ListNotes(ctx context.Context) ([]api.Note, error) {
	var rows []noteRow
	err := db.SelectContext(ctx, &rows, `
		SELECT id, title, content, notebook, color, created_at, updated_at
		FROM notes
		ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}

	notes := make([]api.Note, 0, len(rows))
	for _, r := range rows {
		notes = append(notes, r.toAPI())
	}
	return notes, nil
}

// CreateNote inserts a note and returns its id
func (db *DB) CreateNote(ctx context.Context, n api.Note) (api.ID, error) {
	var id int64
	err := db.QueryRowxContext(ctx, db.Rebind(`
		INSERT INTO notes (title, content, notebook, color)
		VALUES (?, ?, ?, ?)
		RETURNING id
	`), n.Title, n.Content, orDefault(n.Notebook, DefaultNotebook), orDefault(n.Color, DefaultColor)).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create note: %w", err)
	}
	return api.ID(id), nil
}

// UpdateNote overwrites a note's editable fields
func (db *DB) UpdateNote(ctx context.Context, n api.Note) error {
	res, err := db.ExecContext(ctx, db.Rebind(`
		UPDATE notes
		SET title = ?, content = ?, notebook = ?, color = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`), n.Title, n.Content, orDefault(n.Notebook, DefaultNotebook), orDefault(n.Color, DefaultColor), int64(n.ID))
	if err != nil {
		return fmt.Errorf("update note %d: %w", n.ID, err)
	}
	if err := checkAffected(res); err != nil {
		return fmt.Errorf("update note %d: %w", n.ID, err)
	}
	return nil
}
