package server

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tgienger/organizer/internal/api"
	"github.com/tgienger/organizer/internal/db"
)

// bindAndValidate decodes the JSON body into v and runs the validator
func bindAndValidate(c echo.Context, v interface{}) error {
	if err := c.Bind(v); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body").SetInternal(err)
	}
	return c.Validate(v)
}

// storageError maps a storage failure to an HTTP error
func storageError(err error, notFound string) error {
	if errors.Is(err, db.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, notFound)
	}
	return err
}

// Tasks

func (s *Server) listTasks(c echo.Context) error {
	tasks, err := s.store.ListTasks(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tasks)
}

func (s *Server) createTask(c echo.Context) error {
	var task api.Task
	if err := bindAndValidate(c, &task); err != nil {
		return err
	}

	id, err := s.store.CreateTask(c.Request().Context(), task)
	if err != nil {
		return err
	}

	s.logger.Infow("Task created", "id", id, "request_id", requestID(c))
	return c.JSON(http.StatusCreated, api.Created{ID: id, Message: "Task created"})
}

func (s *Server) updateTask(c echo.Context) error {
	var task api.Task
	if err := c.Bind(&task); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body").SetInternal(err)
	}
	if task.ID == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "Task ID is required")
	}
	if err := c.Validate(&task); err != nil {
		return err
	}

	if err := s.store.UpdateTask(c.Request().Context(), task); err != nil {
		return storageError(err, "Task not found")
	}
	return c.JSON(http.StatusOK, api.Message{Message: "Task updated"})
}

func (s *Server) archiveTask(c echo.Context) error {
	raw := c.QueryParam("id")
	if raw == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Task ID is required")
	}
	id, err := api.ParseID(raw)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid task ID")
	}

	if err := s.store.ArchiveTask(c.Request().Context(), id); err != nil {
		return storageError(err, "Task not found")
	}
	return c.JSON(http.StatusOK, api.Message{Message: "Task archived"})
}

// Notes

func (s *Server) listNotes(c echo.Context) error {
	notes, err := s.store.ListNotes(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, notes)
}

func (s *Server) createNote(c echo.Context) error {
	var note api.Note
	if err := bindAndValidate(c, &note); err != nil {
		return err
	}

	id, err := s.store.CreateNote(c.Request().Context(), note)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, api.Created{ID: id, Message: "Note created"})
}

func (s *Server) updateNote(c echo.Context) error {
	var note api.Note
	if err := c.Bind(&note); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body").SetInternal(err)
	}
	if note.ID == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "Note ID is required")
	}
	if err := c.Validate(&note); err != nil {
		return err
	}

	if err := s.store.UpdateNote(c.Request().Context(), note); err != nil {
		return storageError(err, "Note not found")
	}
	return c.JSON(http.StatusOK, api.Message{Message: "Note updated"})
}

// Events

func (s *Server) listEvents(c echo.Context) error {
	events, err := s.store.ListEvents(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, events)
}

func (s *Server) createEvent(c echo.Context) error {
	var event api.Event
	if err := bindAndValidate(c, &event); err != nil {
		return err
	}

	id, err := s.store.CreateEvent(c.Request().Context(), event)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, api.Created{ID: id, Message: "Event created"})
}

func (s *Server) updateEvent(c echo.Context) error {
	var event api.Event
	if err := c.Bind(&event); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body").SetInternal(err)
	}
	if event.ID == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "Event ID is required")
	}
	if err := c.Validate(&event); err != nil {
		return err
	}

	if err := s.store.UpdateEvent(c.Request().Context(), event); err != nil {
		return storageError(err, "Event not found")
	}
	return c.JSON(http.StatusOK, api.Message{Message: "Event updated"})
}

func requestID(c echo.Context) string {
	return c.Response().Header().Get(echo.HeaderXRequestID)
}
