package views

import (
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tgienger/organizer/internal/api"
	"github.com/tgienger/organizer/internal/syncstore"
)

func TestNotesRenderCards(t *testing.T) {
	created := &api.Time{Time: time.Date(2026, 1, 15, 12, 0, 0, 0, time.Local)}
	remote := newMemRemote(
		api.Note{ID: 2, Title: "Идеи для проекта", Content: "\nСписок идей\nвторая строка", Notebook: "Идеи", Color: "orange", CreatedAt: created},
		api.Note{ID: 1, Title: "Конспект", Notebook: "Обучение", Color: "blue", CreatedAt: created},
	)
	v := NewNoteListView(syncstore.NewNoteStore(remote))
	v.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	run(v, v.Init()())

	out := v.View()
	assert.Contains(t, out, "Идеи для проекта")
	assert.Contains(t, out, "Идеи · 15.01.2026")
	assert.Contains(t, out, "Список идей")
	assert.NotContains(t, out, "вторая строка")
	assert.Contains(t, out, "Конспект")

	run(v, press("down"))
	assert.Equal(t, 1, v.cursor)
	run(v, press("down"))
	assert.Equal(t, 1, v.cursor)
}

func TestNotesCreate(t *testing.T) {
	remote := newMemRemote(api.Note{ID: 1, Title: "Старая"})
	v := NewNoteListView(syncstore.NewNoteStore(remote))
	run(v, v.Init()())
	run(v, press("down"))

	run(v, press("n"))
	typeText(v, "Покупки")
	run(v, press("tab"))
	typeText(v, "Молоко")
	run(v, press("tab"))
	run(v, press("right")) // Личное
	run(v, press("ctrl+s"))

	assert.False(t, v.creating)
	creates, _ := remote.counts()
	require.Equal(t, 1, creates)
	sent := remote.creates[0].(api.Note)
	assert.Equal(t, "Покупки", sent.Title)
	assert.Equal(t, "Молоко", sent.Content)
	assert.Equal(t, "Личное", sent.Notebook)
	assert.Equal(t, "purple", sent.Color)

	require.Len(t, v.notes, 2)
	assert.Equal(t, 0, v.cursor)
	assert.Equal(t, "Покупки", v.notes[0].Title)
}

func TestNotesCreatedButNotRefreshed(t *testing.T) {
	remote := newMemRemote()
	v := NewNoteListView(syncstore.NewNoteStore(remote))
	run(v, v.Init()())

	run(v, press("n"))
	typeText(v, "Покупки")
	remote.listErr = errors.New("connection reset")
	run(v, press("ctrl+s"))

	assert.False(t, v.creating)
	assert.Empty(t, v.form.value(noteFieldTitle))
	assert.Contains(t, v.status.text, "Note created, refresh failed")
	creates, _ := remote.counts()
	assert.Equal(t, 1, creates)
}

func TestNotesEmpty(t *testing.T) {
	v := NewNoteListView(syncstore.NewNoteStore(newMemRemote()))
	run(v, v.Init()())
	assert.Contains(t, v.View(), "No notes")
}
