package views

import (
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tgienger/organizer/internal/api"
	"github.com/tgienger/organizer/internal/models"
	"github.com/tgienger/organizer/internal/syncstore"
)

func utc(year int, month time.Month, day, hour int) time.Time {
	return time.Date(year, month, day, hour, 0, 0, 0, time.UTC)
}

func newCalendar(t *testing.T, remote *memRemote) *CalendarView {
	t.Helper()
	v := NewCalendarView(syncstore.NewEventStore(remote))
	v.now = func() time.Time { return utc(2026, 1, 22, 15) }
	v.day = startOfDay(v.now())
	v.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	run(v, v.Init()())
	require.True(t, v.loaded)
	return v
}

func TestSameDay(t *testing.T) {
	day := utc(2026, 1, 22, 0)
	assert.True(t, sameDay(utc(2026, 1, 22, 23), day))
	assert.False(t, sameDay(utc(2026, 1, 23, 0), day))

	// 01:00 on the 22nd in Moscow is still the 21st in UTC
	msk := time.FixedZone("MSK", 3*60*60)
	early := time.Date(2026, 1, 22, 1, 0, 0, 0, msk)
	assert.True(t, sameDay(early, utc(2026, 1, 21, 0)))
	assert.False(t, sameDay(early, utc(2026, 1, 22, 0)))
	assert.True(t, sameDay(early.UTC(), time.Date(2026, 1, 22, 0, 0, 0, 0, msk)))
}

func TestSortEventsDoesNotTouchInput(t *testing.T) {
	events := []models.Event{
		{ID: "1", Date: utc(2026, 1, 25, 9)},
		{ID: "2", Date: utc(2026, 1, 22, 10)},
		{ID: "3", Date: utc(2026, 1, 22, 8)},
	}
	sorted := sortEvents(events)
	assert.Equal(t, "3", sorted[0].ID)
	assert.Equal(t, "2", sorted[1].ID)
	assert.Equal(t, "1", sorted[2].ID)
	assert.Equal(t, "1", events[0].ID)

	on := eventsOn(sorted, utc(2026, 1, 22, 0))
	require.Len(t, on, 2)
	assert.Equal(t, "3", on[0].ID)
}

func TestLongDate(t *testing.T) {
	assert.Equal(t, "22 января 2026", longDate(time.Date(2026, 1, 22, 12, 0, 0, 0, time.Local)))
}

func TestCalendarNavigation(t *testing.T) {
	v := newCalendar(t, newMemRemote())

	run(v, press("right"))
	assert.Equal(t, 23, v.day.Day())
	run(v, press("down"))
	assert.Equal(t, 30, v.day.Day())
	run(v, press("down"))
	assert.Equal(t, time.February, v.day.Month())
	assert.Equal(t, 6, v.day.Day())
	run(v, press("left"))
	run(v, press("up"))
	assert.Equal(t, 29, v.day.Day())
	run(v, press("t"))
	assert.True(t, sameDay(v.day, utc(2026, 1, 22, 0)))
}

func TestCalendarHighlightsSelectedDay(t *testing.T) {
	v := newCalendar(t, newMemRemote(
		api.Event{ID: 1, Title: "Дедлайн проекта", EventDate: &api.Time{Time: utc(2026, 1, 25, 9)}, EventType: "Работа"},
		api.Event{ID: 2, Title: "Встреча с командой", EventDate: &api.Time{Time: utc(2026, 1, 22, 10)}, EventType: "Работа"},
	))

	require.Len(t, v.events, 2)
	assert.Equal(t, "2", v.events[0].ID)

	on := eventsOn(v.events, v.day)
	require.Len(t, on, 1)
	assert.Equal(t, "Встреча с командой", on[0].Title)

	out := v.View()
	assert.Contains(t, out, "Январь 2026")
	assert.Contains(t, out, "22 января 2026")
	assert.Contains(t, out, "Дедлайн проекта")
}

func TestCalendarCreate(t *testing.T) {
	remote := newMemRemote()
	v := newCalendar(t, remote)

	run(v, press("right"))
	run(v, press("n"))
	require.True(t, v.Capturing())
	assert.Equal(t, "2026-01-23", v.form.value(eventFieldDate))

	typeText(v, "Йога")
	v.form.fields[eventFieldType].choice = 2
	run(v, press("ctrl+s"))

	assert.False(t, v.creating)
	creates, _ := remote.counts()
	require.Equal(t, 1, creates)
	sent := remote.creates[0].(api.Event)
	assert.Equal(t, "Йога", sent.Title)
	assert.Equal(t, "Здоровье", sent.EventType)
	assert.Equal(t, "purple", sent.Color)
	require.NotNil(t, sent.EventDate)
	assert.True(t, sent.EventDate.Equal(utc(2026, 1, 23, 0)))

	require.Len(t, v.events, 1)
	assert.Len(t, eventsOn(v.events, v.day), 1)
}

func TestCalendarRejectsBadDate(t *testing.T) {
	remote := newMemRemote()
	v := newCalendar(t, remote)

	run(v, press("n"))
	typeText(v, "Йога")
	v.form.setValue(eventFieldDate, "завтра")
	run(v, press("ctrl+s"))

	assert.True(t, v.creating)
	assert.True(t, v.status.failed)
	creates, _ := remote.counts()
	assert.Zero(t, creates)
}

func TestCalendarCreatedButNotRefreshed(t *testing.T) {
	remote := newMemRemote()
	v := newCalendar(t, remote)

	run(v, press("n"))
	typeText(v, "Йога")
	remote.listErr = errors.New("connection reset")
	run(v, press("ctrl+s"))

	assert.False(t, v.creating)
	assert.Empty(t, v.form.value(eventFieldTitle))
	assert.Contains(t, v.status.text, "Event created, refresh failed")
	creates, _ := remote.counts()
	assert.Equal(t, 1, creates)
}
