package views

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tgienger/organizer/internal/models"
	"github.com/tgienger/organizer/internal/syncstore"
	"github.com/tgienger/organizer/internal/ui/keys"
	"github.com/tgienger/organizer/internal/ui/styles"
)

var monthNames = [...]string{
	"Январь", "Февраль", "Март", "Апрель", "Май", "Июнь",
	"Июль", "Август", "Сентябрь", "Октябрь", "Ноябрь", "Декабрь",
}

var monthGenitive = [...]string{
	"января", "февраля", "марта", "апреля", "мая", "июня",
	"июля", "августа", "сентября", "октября", "ноября", "декабря",
}

var weekdayHeader = []string{"Пн", "Вт", "Ср", "Чт", "Пт", "Сб", "Вс"}

const (
	eventFieldTitle = iota
	eventFieldDate
	eventFieldType
	eventFieldColor
)

// longDate formats t as "22 января 2026" in t's location
func longDate(t time.Time) string {
	return fmt.Sprintf("%d %s %d", t.Day(), monthGenitive[t.Month()-1], t.Year())
}

// sameDay reports whether a falls on the calendar day of b, in b's location
func sameDay(a, b time.Time) bool {
	a = a.In(b.Location())
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// startOfDay truncates t to midnight in its own location
func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// sortEvents returns a copy of events ordered by date, earliest first
func sortEvents(events []models.Event) []models.Event {
	out := append([]models.Event(nil), events...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out
}

// eventsOn returns the events on day, keeping their order
func eventsOn(events []models.Event, day time.Time) []models.Event {
	var out []models.Event
	for _, e := range events {
		if sameDay(e.Date, day) {
			out = append(out, e)
		}
	}
	return out
}

// CalendarView shows a month grid and the events list
type CalendarView struct {
	store  *syncstore.EventStore
	styles *styles.Styles
	keys   keys.KeyMap
	now    func() time.Time

	width  int
	height int

	events []models.Event // sorted
	loaded bool
	day    time.Time // selected day, local midnight

	creating bool
	form     *form
	status   status
}

type eventsLoadedMsg struct {
	events  []models.Event
	created bool
	err     error // set when a created record could not be re-fetched
}

type eventsFailedMsg struct {
	err error
}

// NewCalendarView creates the calendar tab
func NewCalendarView(store *syncstore.EventStore) *CalendarView {
	s := styles.NewStyles()
	km := keys.DefaultKeyMap()

	f := newForm("Новое событие", s, km).
		addInput("Title", "Event title", 200).
		addInput("Date", "YYYY-MM-DD", 10).
		addChoice("Type", models.EventTypes, 0, nil).
		addChoice("Color", colorNames(), 0, renderColorChoice)

	v := &CalendarView{
		store:  store,
		styles: s,
		keys:   km,
		now:    time.Now,
		form:   f,
	}
	v.day = startOfDay(v.now())
	return v
}

// Init loads the collection
func (v *CalendarView) Init() tea.Cmd {
	return v.refresh
}

// Capturing reports whether keystrokes are text input
func (v *CalendarView) Capturing() bool {
	return v.creating
}

func (v *CalendarView) refresh() tea.Msg {
	if err := v.store.Refresh(context.Background()); err != nil {
		return eventsFailedMsg{err: err}
	}
	return eventsLoadedMsg{events: v.store.List()}
}

func (v *CalendarView) createEvent(draft models.EventDraft) tea.Cmd {
	return func() tea.Msg {
		err := v.store.Create(context.Background(), draft)
		if err != nil && !syncstore.Stored(err) {
			return eventsFailedMsg{err: err}
		}
		return eventsLoadedMsg{events: v.store.List(), created: true, err: err}
	}
}

// Update handles messages
func (v *CalendarView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		v.form.setWidth(clamp(styles.ContentWidth(v.width)-10, 20, 50))
		return v, nil

	case eventsLoadedMsg:
		v.events = sortEvents(msg.events)
		v.loaded = true
		v.status = status{}
		if msg.created {
			v.creating = false
			v.form.clear()
			v.status = status{text: "Event created"}
			if msg.err != nil {
				v.status = status{text: "Event created, refresh failed: " + msg.err.Error(), failed: true}
			}
		}
		return v, nil

	case eventsFailedMsg:
		v.status = status{text: msg.err.Error(), failed: true}
		return v, nil

	case tea.KeyMsg:
		if v.creating {
			return v.updateCreating(msg)
		}
		return v.updateNormal(msg)
	}

	return v, nil
}

func (v *CalendarView) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Left):
		v.day = v.day.AddDate(0, 0, -1)
	case key.Matches(msg, v.keys.Right):
		v.day = v.day.AddDate(0, 0, 1)
	case key.Matches(msg, v.keys.Up):
		v.day = v.day.AddDate(0, 0, -7)
	case key.Matches(msg, v.keys.Down):
		v.day = v.day.AddDate(0, 0, 7)
	case key.Matches(msg, v.keys.Today):
		v.day = startOfDay(v.now())

	case key.Matches(msg, v.keys.New):
		v.creating = true
		v.status = status{}
		if v.form.value(eventFieldDate) == "" {
			v.form.setValue(eventFieldDate, v.day.Format(dateLayout))
		}
		return v, v.form.open()

	case key.Matches(msg, v.keys.Refresh):
		v.status = status{text: "Refreshing..."}
		return v, v.refresh
	}
	return v, nil
}

func (v *CalendarView) updateCreating(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	res, cmd := v.form.update(msg)
	switch res {
	case formCancel:
		v.creating = false
		v.status = status{}
		return v, nil
	case formSubmit:
		draft, err := v.draft()
		if err != nil {
			v.status = status{text: err.Error(), failed: true}
			return v, nil
		}
		return v, v.createEvent(draft)
	}
	return v, cmd
}

func (v *CalendarView) draft() (models.EventDraft, error) {
	d := models.EventDraft{
		Title: v.form.value(eventFieldTitle),
		Type:  v.form.value(eventFieldType),
		Color: models.Color(v.form.value(eventFieldColor)),
	}
	raw := v.form.value(eventFieldDate)
	date, err := time.ParseInLocation(dateLayout, raw, v.day.Location())
	if err != nil {
		return d, fmt.Errorf("invalid date %q, use YYYY-MM-DD", raw)
	}
	d.Date = date
	return d, nil
}

// View renders the calendar
func (v *CalendarView) View() string {
	if v.creating {
		return lipgloss.JoinVertical(lipgloss.Left,
			centerForm(v.form, v.width, max(v.height-2, 0)),
			v.status.render(v.styles),
		)
	}

	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	grid := v.renderMonth()
	listWidth := max(contentWidth-lipgloss.Width(grid)-4, 20)
	side := v.renderDay(listWidth)

	var b strings.Builder
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, grid, "    ", side))
	b.WriteString("\n\n")
	b.WriteString(v.renderUpcoming(contentWidth))

	if st := v.status.render(s); st != "" {
		b.WriteString("\n")
		b.WriteString(st)
	}
	b.WriteString("\n")
	b.WriteString(helpLine(s,
		"←→", "day",
		"↑↓", "week",
		"t", "today",
		"n", "new",
		"r", "refresh",
	))
	return b.String()
}

// renderMonth draws the month of the selected day, weeks starting on Monday
func (v *CalendarView) renderMonth() string {
	s := v.styles
	today := startOfDay(v.now())
	first := time.Date(v.day.Year(), v.day.Month(), 1, 0, 0, 0, 0, v.day.Location())
	offset := (int(first.Weekday()) + 6) % 7

	rows := []string{
		s.Title.Render(fmt.Sprintf("%s %d", monthNames[v.day.Month()-1], v.day.Year())),
	}

	var header []string
	for _, d := range weekdayHeader {
		header = append(header, s.TitleMuted.Width(4).Align(lipgloss.Right).Render(d))
	}
	rows = append(rows, strings.Join(header, ""))

	var week []string
	for i := 0; i < offset; i++ {
		week = append(week, s.Day.Render(""))
	}
	for d := first; d.Month() == first.Month(); d = d.AddDate(0, 0, 1) {
		label := fmt.Sprintf("%d", d.Day())
		if len(eventsOn(v.events, d)) > 0 {
			label = "•" + label
		}

		style := s.Day
		switch {
		case sameDay(d, v.day):
			style = s.DaySelected
		case sameDay(d, today):
			style = s.DayToday
		}
		week = append(week, style.Render(label))

		if len(week) == 7 {
			rows = append(rows, strings.Join(week, ""))
			week = nil
		}
	}
	if len(week) > 0 {
		rows = append(rows, strings.Join(week, ""))
	}

	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// renderDay lists the events of the selected day
func (v *CalendarView) renderDay(width int) string {
	s := v.styles
	rows := []string{s.Title.Render(longDate(v.day)), ""}

	events := eventsOn(v.events, v.day)
	if len(events) == 0 {
		rows = append(rows, s.TitleMuted.Render("Нет событий"))
	}
	for _, e := range events {
		rows = append(rows, s.ListSelected.Width(width).Render(v.eventLine(e, width-4, "15:04")))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// renderUpcoming lists every event, earliest first, highlighting the selected day
func (v *CalendarView) renderUpcoming(width int) string {
	s := v.styles
	rows := []string{s.Title.Render("Все события")}

	if len(v.events) == 0 {
		msg := "No events. Press 'n' to create one."
		if !v.loaded {
			msg = "Loading events..."
		}
		return lipgloss.JoinVertical(lipgloss.Left, append(rows, s.TitleMuted.Render(msg))...)
	}

	limit := max(v.height-16, 3)
	for i, e := range v.events {
		if i == limit {
			rows = append(rows, s.TitleMuted.Render(fmt.Sprintf("… and %d more", len(v.events)-limit)))
			break
		}
		style := s.ListItem
		if sameDay(e.Date, v.day) {
			style = s.ListSelected
		}
		rows = append(rows, style.Width(width-4).Render(v.eventLine(e, width-8, "02.01.2006")))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (v *CalendarView) eventLine(e models.Event, width int, layout string) string {
	line := e.Date.In(v.day.Location()).Format(layout) + "  " + e.Title
	if e.Type != "" {
		line += " · " + e.Type
	}
	if e.IsRecurring {
		line += " ↻"
	}
	return colorDot(e.Color) + " " + truncate(line, width-2)
}
