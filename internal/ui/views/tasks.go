package views

import (
	"context"
	"fmt"
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

var statusLabels = map[models.Status]string{
	models.StatusTodo:       "К выполнению",
	models.StatusInProgress: "В процессе",
	models.StatusDone:       "Выполнено",
}

var priorityLabels = map[models.Priority]string{
	models.PriorityHigh:   "Высокий",
	models.PriorityMedium: "Средний",
	models.PriorityLow:    "Низкий",
}

// form field order
const (
	taskFieldTitle = iota
	taskFieldDesc
	taskFieldPriority
	taskFieldColor
	taskFieldDate
	taskFieldSubtasks
)

// dateLayout is what the forms accept for dates
const dateLayout = "2006-01-02"

// tasksIn returns the tasks of one board column, keeping their order
func tasksIn(tasks []models.Task, st models.Status) []models.Task {
	var out []models.Task
	for _, t := range tasks {
		if t.Status == st {
			out = append(out, t)
		}
	}
	return out
}

// nextStatus returns the column to the right of st
func nextStatus(st models.Status) (models.Status, bool) {
	for i, s := range models.Statuses {
		if s == st && i+1 < len(models.Statuses) {
			return models.Statuses[i+1], true
		}
	}
	return "", false
}

// prevStatus returns the column to the left of st
func prevStatus(st models.Status) (models.Status, bool) {
	for i, s := range models.Statuses {
		if s == st && i > 0 {
			return models.Statuses[i-1], true
		}
	}
	return "", false
}

func columnOf(st models.Status) int {
	for i, s := range models.Statuses {
		if s == st {
			return i
		}
	}
	return -1
}

// splitSubtasks turns "a, b, ,c" into [a b c]
func splitSubtasks(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// TaskBoardView is the kanban board over the tasks collection
type TaskBoardView struct {
	store  *syncstore.TaskStore
	styles *styles.Styles
	keys   keys.KeyMap

	width  int
	height int

	tasks   []models.Task
	loaded  bool
	column  int   // index in models.Statuses
	rows    []int // cursor per column
	subtask int   // selected subtask of the selected card

	creating bool
	form     *form
	status   status
}

type tasksLoadedMsg struct {
	tasks   []models.Task
	created bool
	err     error  // set when a created record could not be re-fetched
	follow  string // task id the cursor should move to
}

type tasksFailedMsg struct {
	err error
}

// NewTaskBoardView creates the board
func NewTaskBoardView(store *syncstore.TaskStore) *TaskBoardView {
	s := styles.NewStyles()
	km := keys.DefaultKeyMap()

	priorities := make([]string, len(models.Priorities))
	for i, p := range models.Priorities {
		priorities[i] = string(p)
	}

	f := newForm("Новая задача", s, km).
		addInput("Title", "Task title", 200).
		addArea("Description", "Description", 1000).
		addChoice("Priority", priorities, 1, renderPriorityChoice).
		addChoice("Color", colorNames(), 0, renderColorChoice).
		addInput("Due date", "YYYY-MM-DD (optional)", 10).
		addInput("Subtasks", "comma separated (optional)", 500)

	return &TaskBoardView{
		store:  store,
		styles: s,
		keys:   km,
		rows:   make([]int, len(models.Statuses)),
		form:   f,
	}
}

// Init loads the collection
func (v *TaskBoardView) Init() tea.Cmd {
	return v.refresh
}

// Capturing reports whether keystrokes are text input
func (v *TaskBoardView) Capturing() bool {
	return v.creating
}

func (v *TaskBoardView) refresh() tea.Msg {
	if err := v.store.Refresh(context.Background()); err != nil {
		return tasksFailedMsg{err: err}
	}
	return tasksLoadedMsg{tasks: v.store.List()}
}

func (v *TaskBoardView) createTask(draft models.TaskDraft) tea.Cmd {
	return func() tea.Msg {
		err := v.store.Create(context.Background(), draft)
		if err != nil && !syncstore.Stored(err) {
			return tasksFailedMsg{err: err}
		}
		return tasksLoadedMsg{tasks: v.store.List(), created: true, err: err}
	}
}

func (v *TaskBoardView) moveTask(id string, st models.Status) tea.Cmd {
	return func() tea.Msg {
		if err := v.store.UpdateStatus(context.Background(), id, st); err != nil {
			return tasksFailedMsg{err: err}
		}
		return tasksLoadedMsg{tasks: v.store.List(), follow: id}
	}
}

// Update handles messages
func (v *TaskBoardView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		v.form.setWidth(clamp(styles.ContentWidth(v.width)-10, 20, 50))
		return v, nil

	case tasksLoadedMsg:
		v.tasks = msg.tasks
		v.loaded = true
		v.status = status{}
		if msg.created {
			v.creating = false
			v.form.clear()
			v.status = status{text: "Task created"}
			if msg.err != nil {
				v.status = status{text: "Task created, refresh failed: " + msg.err.Error(), failed: true}
			}
		}
		if msg.follow != "" {
			v.followTask(msg.follow)
		}
		v.clampCursor()
		return v, nil

	case tasksFailedMsg:
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

func (v *TaskBoardView) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Up):
		v.rows[v.column]--
		v.subtask = 0
		v.clampCursor()

	case key.Matches(msg, v.keys.Down):
		v.rows[v.column]++
		v.subtask = 0
		v.clampCursor()

	case key.Matches(msg, v.keys.ColLeft):
		v.column = clamp(v.column-1, 0, len(models.Statuses)-1)
		v.subtask = 0
		v.clampCursor()

	case key.Matches(msg, v.keys.ColRight):
		v.column = clamp(v.column+1, 0, len(models.Statuses)-1)
		v.subtask = 0
		v.clampCursor()

	case key.Matches(msg, v.keys.Left):
		if task, ok := v.selected(); ok {
			if st, ok := prevStatus(task.Status); ok {
				return v, v.moveTask(task.ID, st)
			}
		}

	case key.Matches(msg, v.keys.Right):
		if task, ok := v.selected(); ok {
			if st, ok := nextStatus(task.Status); ok {
				return v, v.moveTask(task.ID, st)
			}
		}

	case key.Matches(msg, v.keys.PrevSub):
		v.subtask--
		v.clampCursor()

	case key.Matches(msg, v.keys.NextSub):
		v.subtask++
		v.clampCursor()

	case key.Matches(msg, v.keys.Toggle):
		if task, ok := v.selected(); ok && len(task.Subtasks) > 0 {
			if v.store.ToggleSubtask(task.ID, task.Subtasks[v.subtask].ID) {
				v.tasks = v.store.List()
			}
		}

	case key.Matches(msg, v.keys.New):
		v.creating = true
		v.status = status{}
		return v, v.form.open()

	case key.Matches(msg, v.keys.Refresh):
		v.status = status{text: "Refreshing..."}
		return v, v.refresh
	}

	return v, nil
}

func (v *TaskBoardView) updateCreating(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
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
		return v, v.createTask(draft)
	}
	return v, cmd
}

// draft reads the form. Title checks are left to the store.
func (v *TaskBoardView) draft() (models.TaskDraft, error) {
	d := models.TaskDraft{
		Title:       v.form.value(taskFieldTitle),
		Description: v.form.value(taskFieldDesc),
		Priority:    models.Priority(v.form.value(taskFieldPriority)),
		Color:       models.Color(v.form.value(taskFieldColor)),
		Subtasks:    splitSubtasks(v.form.value(taskFieldSubtasks)),
	}
	if raw := v.form.value(taskFieldDate); raw != "" {
		due, err := time.ParseInLocation(dateLayout, raw, time.Local)
		if err != nil {
			return d, fmt.Errorf("invalid due date %q, use YYYY-MM-DD", raw)
		}
		d.Date = &due
	}
	return d, nil
}

// selected returns the task under the cursor
func (v *TaskBoardView) selected() (models.Task, bool) {
	col := tasksIn(v.tasks, models.Statuses[v.column])
	if len(col) == 0 {
		return models.Task{}, false
	}
	return col[v.rows[v.column]], true
}

func (v *TaskBoardView) clampCursor() {
	for i, st := range models.Statuses {
		n := len(tasksIn(v.tasks, st))
		v.rows[i] = clamp(v.rows[i], 0, max(n-1, 0))
	}
	subs := 0
	if task, ok := v.selected(); ok {
		subs = len(task.Subtasks)
	}
	v.subtask = clamp(v.subtask, 0, max(subs-1, 0))
}

// followTask puts the cursor on the task with the given id
func (v *TaskBoardView) followTask(id string) {
	task, ok := v.store.Find(id)
	if !ok {
		return
	}
	col := columnOf(task.Status)
	if col < 0 {
		return
	}
	v.column = col
	for i, t := range tasksIn(v.tasks, task.Status) {
		if t.ID == id {
			v.rows[col] = i
			break
		}
	}
}

// View renders the board
func (v *TaskBoardView) View() string {
	if v.creating {
		return lipgloss.JoinVertical(lipgloss.Left,
			centerForm(v.form, v.width, max(v.height-2, 0)),
			v.status.render(v.styles),
		)
	}

	var b strings.Builder

	if !v.loaded && v.status.text == "" {
		b.WriteString(v.styles.TitleMuted.Render("Loading tasks..."))
		b.WriteString("\n")
	}

	contentWidth := styles.ContentWidth(v.width)
	colWidth := max(contentWidth/len(models.Statuses), 16)

	cols := make([]string, len(models.Statuses))
	for i := range models.Statuses {
		cols[i] = v.renderColumn(i, colWidth)
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cols...))
	b.WriteString("\n")

	if n := v.store.Pending(); n > 0 {
		b.WriteString(v.styles.TitleMuted.Render(fmt.Sprintf("%d subtask change(s) not synced yet", n)))
		b.WriteString("\n")
	}
	if st := v.status.render(v.styles); st != "" {
		b.WriteString(st)
		b.WriteString("\n")
	}

	b.WriteString(v.renderHelp())
	return b.String()
}

// visibleCards is how many cards fit in a column
func (v *TaskBoardView) visibleCards() int {
	// a collapsed card is three lines plus a blank one
	return max((v.height-10)/4, 1)
}

func (v *TaskBoardView) renderColumn(i, width int) string {
	s := v.styles
	st := models.Statuses[i]
	tasks := tasksIn(v.tasks, st)
	inner := width - 4

	dot := lipgloss.NewStyle().Foreground(statusColor(st)).Render("●")
	header := dot + " " + s.ColumnHeader.Render(statusLabels[st]) + " " +
		s.TitleMuted.Render(fmt.Sprintf("%d", len(tasks)))
	items := []string{header, ""}

	if len(tasks) == 0 {
		items = append(items, s.TitleMuted.Render("Нет задач"))
	}

	row := v.rows[i]
	visible := v.visibleCards()
	start := max(row-visible+1, 0)
	if i != v.column {
		start = 0
	}
	for j := start; j < min(len(tasks), start+visible); j++ {
		items = append(items, v.renderCard(tasks[j], inner, i == v.column && j == row), "")
	}

	style := s.Column.Width(width - 2)
	if i == v.column {
		style = style.BorderForeground(styles.Current.BorderFocus)
	}
	return style.Render(lipgloss.JoinVertical(lipgloss.Left, items...))
}

func (v *TaskBoardView) renderCard(task models.Task, width int, selected bool) string {
	s := v.styles
	text := width - 2 // border + padding

	lines := []string{colorDot(task.Color) + " " + truncate(task.Title, text-2)}

	meta := []string{
		s.Badge.Background(styles.PriorityColor(task.Priority)).Render(priorityLabels[task.Priority]),
	}
	if task.Date != nil {
		meta = append(meta, s.TitleMuted.Render(task.Date.Local().Format("02.01")))
	}
	if n := len(task.Subtasks); n > 0 {
		done := 0
		for _, sub := range task.Subtasks {
			if sub.Completed {
				done++
			}
		}
		meta = append(meta, s.TitleMuted.Render(fmt.Sprintf("%d/%d", done, n)))
	}
	lines = append(lines, strings.Join(meta, " "))

	style := s.Card
	if selected {
		style = s.CardSelected
		if desc := firstLine(task.Description); desc != "" {
			lines = append(lines, s.TitleMuted.Render(truncate(desc, text)))
		}
		if task.Date != nil {
			lines = append(lines, s.TitleMuted.Render("до "+longDate(task.Date.Local())))
		}
		for j, sub := range task.Subtasks {
			box := "[ ]"
			if sub.Completed {
				box = "[x]"
			}
			line := truncate(box+" "+sub.Title, text-2)
			if j == v.subtask {
				line = s.HelpKey.Render("› " + line)
			} else {
				line = "  " + line
			}
			lines = append(lines, line)
		}
	}

	return style.Width(width - 1).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (v *TaskBoardView) renderHelp() string {
	return helpLine(v.styles,
		"↑↓", "card",
		"H/L", "column",
		"←→", "move",
		"[ ]", "subtask",
		"space", "check",
		"n", "new",
		"r", "refresh",
	)
}

func statusColor(st models.Status) lipgloss.Color {
	switch st {
	case models.StatusInProgress:
		return styles.Current.Info
	case models.StatusDone:
		return styles.Current.Success
	}
	return styles.Current.ForegroundDim
}

func renderPriorityChoice(name string) string {
	p := models.Priority(name)
	return lipgloss.NewStyle().Foreground(styles.PriorityColor(p)).Render(priorityLabels[p])
}
