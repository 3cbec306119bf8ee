package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tgienger/organizer/internal/api"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func at(year int, month time.Month, day, hour int) *api.Time {
	return &api.Time{Time: time.Date(year, month, day, hour, 0, 0, 0, time.UTC)}
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open("mysql", "whatever")
	assert.Error(t, err)
}

func TestSchemaIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	_, err := db.Exec(sqliteSchema)
	assert.NoError(t, err)
	assert.NoError(t, db.HealthCheck(context.Background()))
}

func TestCreateTaskAppliesDefaults(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	id, err := db.CreateTask(ctx, api.Task{
		Title:    "Разработать дизайн",
		Subtasks: []api.Subtask{{Title: "Главный экран", Completed: true}, {Title: "Профиль"}},
	})
	require.NoError(t, err)

	task, err := db.GetTask(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, DefaultStatus, task.Status)
	assert.Equal(t, DefaultPriority, task.Priority)
	assert.Equal(t, DefaultColor, task.Color)
	assert.Nil(t, task.DueDate)
	require.NotNil(t, task.CreatedAt)
	require.Len(t, task.Subtasks, 2)
	assert.Equal(t, "Главный экран", task.Subtasks[0].Title)
	assert.True(t, task.Subtasks[0].Completed)
	assert.False(t, task.Subtasks[1].Completed)
}

func TestListTasksOrdering(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	first, err := db.CreateTask(ctx, api.Task{Title: "first", DueDate: at(2026, 1, 20, 0)})
	require.NoError(t, err)
	second, err := db.CreateTask(ctx, api.Task{Title: "second", Status: "done"})
	require.NoError(t, err)

	tasks, err := db.ListTasks(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, second, tasks[0].ID)
	assert.Equal(t, first, tasks[1].ID)
	assert.NotNil(t, tasks[0].Subtasks)
	assert.Empty(t, tasks[0].Subtasks)
	require.NotNil(t, tasks[1].DueDate)
	assert.True(t, tasks[1].DueDate.Equal(at(2026, 1, 20, 0).Time))
}

func TestUpdateTaskReplacesSubtasks(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	id, err := db.CreateTask(ctx, api.Task{
		Title:    "Отчёт",
		Priority: "high",
		Subtasks: []api.Subtask{{Title: "a"}, {Title: "b"}},
	})
	require.NoError(t, err)
	task, err := db.GetTask(ctx, id)
	require.NoError(t, err)
	a, b := task.Subtasks[0], task.Subtasks[1]

	a.Completed = true
	task.Status = "done"
	task.Subtasks = []api.Subtask{a, {Title: "c"}}
	require.NoError(t, db.UpdateTask(ctx, *task))

	got, err := db.GetTask(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "done", got.Status)
	assert.Equal(t, "high", got.Priority)
	require.Len(t, got.Subtasks, 2)
	assert.Equal(t, a.ID, got.Subtasks[0].ID)
	assert.True(t, got.Subtasks[0].Completed)
	assert.Equal(t, "c", got.Subtasks[1].Title)
	assert.NotEqual(t, b.ID, got.Subtasks[1].ID)

	// nil subtasks leave the stored ones alone
	got.Subtasks = nil
	got.Title = "Отчёт v2"
	require.NoError(t, db.UpdateTask(ctx, *got))
	again, err := db.GetTask(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Отчёт v2", again.Title)
	assert.Len(t, again.Subtasks, 2)
}

func TestUpdateAndArchiveUnknownTask(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	err := db.UpdateTask(ctx, api.Task{ID: 42, Title: "x"})
	assert.True(t, errors.Is(err, ErrNotFound))

	err = db.ArchiveTask(ctx, 42)
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = db.GetTask(ctx, 42)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestArchiveTask(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	id, err := db.CreateTask(ctx, api.Task{Title: "old"})
	require.NoError(t, err)
	require.NoError(t, db.ArchiveTask(ctx, id))

	tasks, err := db.ListTasks(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "archived", tasks[0].Status)
}

func TestNotes(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	first, err := db.CreateNote(ctx, api.Note{Title: "Идеи", Content: "Список"})
	require.NoError(t, err)
	second, err := db.CreateNote(ctx, api.Note{Title: "Курс", Notebook: "Обучение", Color: "green"})
	require.NoError(t, err)

	notes, err := db.ListNotes(ctx)
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, second, notes[0].ID)
	assert.Equal(t, "Обучение", notes[0].Notebook)
	assert.Equal(t, DefaultNotebook, notes[1].Notebook)
	assert.Equal(t, DefaultColor, notes[1].Color)
	require.NotNil(t, notes[1].CreatedAt)

	require.NoError(t, db.UpdateNote(ctx, api.Note{ID: first, Title: "Идеи+", Content: "Новое", Notebook: "Идеи", Color: "blue"}))
	notes, err = db.ListNotes(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Идеи+", notes[1].Title)
	assert.Equal(t, "blue", notes[1].Color)

	err = db.UpdateNote(ctx, api.Note{ID: 99, Title: "x"})
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestEvents(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	late, err := db.CreateEvent(ctx, api.Event{Title: "Дедлайн", EventDate: at(2026, 1, 25, 9)})
	require.NoError(t, err)
	early, err := db.CreateEvent(ctx, api.Event{Title: "Встреча", EventDate: at(2026, 1, 22, 10), EventType: "Личное", IsRecurring: true})
	require.NoError(t, err)

	events, err := db.ListEvents(ctx)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, early, events[0].ID)
	assert.Equal(t, late, events[1].ID)
	assert.True(t, events[0].IsRecurring)
	assert.Equal(t, "Личное", events[0].EventType)
	assert.Equal(t, DefaultEventType, events[1].EventType)
	assert.True(t, events[0].EventDate.Equal(at(2026, 1, 22, 10).Time))

	// moving the deadline earlier reorders the list
	require.NoError(t, db.UpdateEvent(ctx, api.Event{ID: late, Title: "Дедлайн", EventDate: at(2026, 1, 21, 9)}))
	events, err = db.ListEvents(ctx)
	require.NoError(t, err)
	assert.Equal(t, late, events[0].ID)

	_, err = db.CreateEvent(ctx, api.Event{Title: "no date"})
	assert.Error(t, err)
}
