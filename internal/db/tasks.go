package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/tgienger/organizer/internal/api"
)

type taskRow struct {
	ID          int64        `db:"id"`
	Title       string       `db:"title"`
	Description string       `db:"description"`
	Status      string       `db:"status"`
	Priority    string       `db:"priority"`
	Color       string       `db:"color"`
	DueDate     sql.NullTime `db:"due_date"`
	CreatedAt   time.Time    `db:"created_at"`
	UpdatedAt   time.Time    `db:"updated_at"`
}

type subtaskRow struct {
	ID        int64  `db:"id"`
	TaskID    int64  `db:"task_id"`
	Title     string `db:"title"`
	Completed bool   `db:"completed"`
}

func (r taskRow) toAPI(subtasks []api.Subtask) api.Task {
	t := api.Task{
		ID:          api.ID(r.ID),
		Title:       r.Title,
		Description: r.Description,
		Status:      r.Status,
		Priority:    r.Priority,
		Color:       r.Color,
		Subtasks:    subtasks,
		CreatedAt:   &api.Time{Time: r.CreatedAt},
		UpdatedAt:   &api.Time{Time: r.UpdatedAt},
	}
	if r.DueDate.Valid {
		t.DueDate = &api.Time{Time: r.DueDate.Time}
	}
	if t.Subtasks == nil {
		t.Subtasks = []api.Subtask{}
	}
	return t
}

func dueDate(t *api.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.Time.UTC(), Valid: true}
}

// ListTasks returns every task, archived ones included, newest first. Each
// task carries its subtasks ordered by id.
func (db *DB) ListTasks(ctx context.Context) ([]api.Task, error) {
	var rows []taskRow
	err := db.SelectContext(ctx, &rows, `
		SELECT id, title, description, status, priority, color, due_date, created_at, updated_at
		FROM tasks
		ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	var subs []subtaskRow
	if err := db.SelectContext(ctx, &subs, `SELECT id, task_id, title, completed FROM subtasks ORDER BY id`); err != nil {
		return nil, fmt.Errorf("list subtasks: %w", err)
	}
	byTask := make(map[int64][]api.Subtask)
	for _, s := range subs {
		byTask[s.TaskID] = append(byTask[s.TaskID], api.Subtask{ID: api.ID(s.ID), Title: s.Title, Completed: s.Completed})
	}

	tasks := make([]api.Task, 0, len(rows))
	for _, r := range rows {
		tasks = append(tasks, r.toAPI(byTask[r.ID]))
	}
	return tasks, nil
}

// GetTask retrieves a task by ID with its subtasks
func (db *DB) GetTask(ctx context.Context, id api.ID) (*api.Task, error) {
	var row taskRow
	err := db.GetContext(ctx, &row, db.Rebind(`
		SELECT id, title, description, status, priority, color, due_date, created_at, updated_at
		FROM tasks WHERE id = ?
	`), int64(id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}

	var subs []subtaskRow
	if err := db.SelectContext(ctx, &subs, db.Rebind(`SELECT id, task_id, title, completed FROM subtasks WHERE task_id = ? ORDER BY id`), int64(id)); err != nil {
		return nil, fmt.Errorf("get subtasks: %w", err)
	}
	list := make([]api.Subtask, 0, len(subs))
	for _, s := range subs {
		list = append(list, api.Subtask{ID: api.ID(s.ID), Title: s.Title, Completed: s.Completed})
	}

	t := row.toAPI(list)
	return &t, nil
}

// CreateTask inserts a task and its subtasks and returns the new id. Empty
// status, priority and color get the service defaults.
func (db *DB) CreateTask(ctx context.Context, t api.Task) (api.ID, error) {
	var id int64
	err := db.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		err := tx.QueryRowxContext(ctx, tx.Rebind(`
			INSERT INTO tasks (title, description, status, priority, color, due_date)
			VALUES (?, ?, ?, ?, ?, ?)
			RETURNING id
		`),
			t.Title, t.Description,
			orDefault(t.Status, DefaultStatus),
			orDefault(t.Priority, DefaultPriority),
			orDefault(t.Color, DefaultColor),
			dueDate(t.DueDate),
		).Scan(&id)
		if err != nil {
			return err
		}

		for _, s := range t.Subtasks {
			if err := insertSubtask(ctx, tx, id, s); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("create task: %w", err)
	}
	return api.ID(id), nil
}

// UpdateTask overwrites every field of a task. When t.Subtasks is non-nil
// the stored subtasks are replaced: known ids are updated, new ones inserted
// and missing ones removed.
func (db *DB) UpdateTask(ctx context.Context, t api.Task) error {
	err := db.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, tx.Rebind(`
			UPDATE tasks
			SET title = ?, description = ?, status = ?, priority = ?, color = ?, due_date = ?, updated_at = CURRENT_TIMESTAMP
			WHERE id = ?
		`),
			t.Title, t.Description,
			orDefault(t.Status, DefaultStatus),
			orDefault(t.Priority, DefaultPriority),
			orDefault(t.Color, DefaultColor),
			dueDate(t.DueDate),
			int64(t.ID),
		)
		if err != nil {
			return err
		}
		if err := checkAffected(res); err != nil {
			return err
		}

		if t.Subtasks == nil {
			return nil
		}
		return replaceSubtasks(ctx, tx, int64(t.ID), t.Subtasks)
	})
	if err != nil {
		return fmt.Errorf("update task %d: %w", t.ID, err)
	}
	return nil
}

// ArchiveTask marks a task archived. Archived tasks are still listed.
func (db *DB) ArchiveTask(ctx context.Context, id api.ID) error {
	res, err := db.ExecContext(ctx, db.Rebind(`
		UPDATE tasks SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?
	`), "archived", int64(id))
	if err != nil {
		return fmt.Errorf("archive task %d: %w", id, err)
	}
	if err := checkAffected(res); err != nil {
		return fmt.Errorf("archive task %d: %w", id, err)
	}
	return nil
}

func insertSubtask(ctx context.Context, tx *sqlx.Tx, taskID int64, s api.Subtask) error {
	_, err := tx.ExecContext(ctx, tx.Rebind(`
		INSERT INTO subtasks (task_id, title, completed) VALUES (?, ?, ?)
	`), taskID, s.Title, s.Completed)
	return err
}

func replaceSubtasks(ctx context.Context, tx *sqlx.Tx, taskID int64, subtasks []api.Subtask) error {
	var existing []int64
	if err := tx.SelectContext(ctx, &existing, tx.Rebind(`SELECT id FROM subtasks WHERE task_id = ?`), taskID); err != nil {
		return err
	}
	known := make(map[int64]bool, len(existing))
	for _, id := range existing {
		known[id] = true
	}

	keep := make(map[int64]bool)
	for _, s := range subtasks {
		id := int64(s.ID)
		if !known[id] {
			if err := insertSubtask(ctx, tx, taskID, s); err != nil {
				return err
			}
			continue
		}
		keep[id] = true
		if _, err := tx.ExecContext(ctx, tx.Rebind(`
			UPDATE subtasks SET title = ?, completed = ? WHERE id = ?
		`), s.Title, s.Completed, id); err != nil {
			return err
		}
	}

	for _, id := range existing {
		if keep[id] {
			continue
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM subtasks WHERE id = ?`), id); err != nil {
			return err
		}
	}
	return nil
}
