package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tgienger/organizer/internal/models"
)

func TestParseTime(t *testing.T) {
	want := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	for _, in := range []string{
		"2026-01-15T00:00:00Z",
		"2026-01-15T00:00:00",
		"2026-01-15T00:00:00.000000",
		"2026-01-15 00:00:00",
		"2026-01-15 00:00:00+00:00",
		"2026-01-15",
		"2026-01-15T03:00:00+03:00",
	} {
		got, err := ParseTime(in)
		require.NoError(t, err, in)
		assert.True(t, want.Equal(got), "%s parsed as %s", in, got)
	}

	_, err := ParseTime("15.01.2026")
	assert.Error(t, err)
}

func TestIDUnmarshal(t *testing.T) {
	var v struct {
		A ID `json:"a"`
		B ID `json:"b"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a": 7, "b": "42"}`), &v))
	assert.Equal(t, "7", v.A.String())
	assert.Equal(t, "42", v.B.String())

	assert.Error(t, json.Unmarshal([]byte(`{"a": "seven"}`), &v))
	assert.Error(t, json.Unmarshal([]byte(`{"a": true}`), &v))
}

func TestTaskToModelDefaultsSubtasks(t *testing.T) {
	var tasks []Task
	body := `[
		{"id": 1, "title": "Дизайн", "status": "in-progress", "priority": "high", "color": "purple",
		 "due_date": "2026-01-20T00:00:00", "subtasks": [{"id": 3, "title": "Главный экран", "completed": true}]},
		{"id": 2, "title": "ТЗ", "status": "todo", "priority": "medium", "color": "pink", "due_date": null, "subtasks": null},
		{"id": 5, "title": "Созвон", "status": "done", "priority": "low", "color": "blue"}
	]`
	require.NoError(t, json.Unmarshal([]byte(body), &tasks))

	first := tasks[0].ToModel()
	assert.Equal(t, "1", first.ID)
	require.NotNil(t, first.Date)
	assert.True(t, first.Date.Equal(time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC)))
	require.Len(t, first.Subtasks, 1)
	assert.Equal(t, "3", first.Subtasks[0].ID)
	assert.True(t, first.Subtasks[0].Completed)

	for _, raw := range tasks[1:] {
		m := raw.ToModel()
		assert.Nil(t, m.Date)
		assert.NotNil(t, m.Subtasks)
		assert.Empty(t, m.Subtasks)
	}
}

func TestEventFieldMapping(t *testing.T) {
	var e Event
	require.NoError(t, json.Unmarshal([]byte(`{"id": 9, "title": "Дедлайн", "event_date": "2026-01-25", "color": "orange", "event_type": "Работа"}`), &e))
	m := e.ToModel()
	assert.Equal(t, "9", m.ID)
	assert.Equal(t, "Работа", m.Type)
	assert.True(t, m.Date.Equal(time.Date(2026, 1, 25, 0, 0, 0, 0, time.UTC)))

	back, err := EventFromModel(m)
	require.NoError(t, err)
	data, err := json.Marshal(back)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id": 9, "title": "Дедлайн", "event_date": "2026-01-25T00:00:00Z", "color": "orange", "event_type": "Работа", "is_recurring": false}`, string(data))
}

func TestTaskFromModelRejectsLocalID(t *testing.T) {
	_, err := TaskFromModel(models.Task{ID: "tmp-1"})
	assert.Error(t, err)
}

func TestCollectionRoundTrip(t *testing.T) {
	var gotMethod, gotBody, gotContentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotContentType = r.Header.Get("Content-Type")
		data, _ := io.ReadAll(r.Body)
		gotBody = string(data)
		switch r.Method {
		case http.MethodGet:
			w.Write([]byte(`[]`))
		case http.MethodPost:
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`{"id": 1, "message": "Note created"}`))
		case http.MethodPut:
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error": "Note ID is required"}`))
		}
	}))
	defer srv.Close()

	c := NewCollection(srv.URL, nil)
	ctx := context.Background()

	body, err := c.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(body))
	assert.Equal(t, http.MethodGet, gotMethod)

	require.NoError(t, c.Create(ctx, Note{Title: "X", Content: "Y"}))
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "application/json", gotContentType)
	assert.JSONEq(t, `{"title": "X", "content": "Y"}`, gotBody)

	err = c.Update(ctx, Note{Title: "X"})
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusBadRequest, statusErr.Code)
	assert.Contains(t, statusErr.Error(), "Note ID is required")
}

func TestCollectionTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewCollection(url, nil).List(context.Background())
	assert.Error(t, err)
}

func TestCollectionArchive(t *testing.T) {
	var gotMethod, gotID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotID = r.URL.Query().Get("id")
		w.Write([]byte(`{"message": "Task archived"}`))
	}))
	defer srv.Close()

	require.NoError(t, NewCollection(srv.URL+"/tasks", nil).Archive(context.Background(), 42))
	assert.Equal(t, http.MethodDelete, gotMethod)
	assert.Equal(t, "42", gotID)
}
