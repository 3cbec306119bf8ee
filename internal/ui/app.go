package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tgienger/organizer/internal/syncstore"
	"github.com/tgienger/organizer/internal/ui/keys"
	"github.com/tgienger/organizer/internal/ui/styles"
	"github.com/tgienger/organizer/internal/ui/views"
)

// Tab is the currently active view
type Tab int

const (
	TabTasks Tab = iota
	TabCalendar
	TabNotes
	TabProjects
)

var tabTitles = []string{"Задачи", "Календарь", "Заметки", "Проекты"}

// headerHeight is the lines taken by the title and the tab bar
const headerHeight = 4

// tabView is what every tab implements. Capturing is true while the view
// wants raw keystrokes (a form or a filter prompt is open).
type tabView interface {
	tea.Model
	Capturing() bool
}

// App is the root bubbletea model
type App struct {
	tabs   []tabView
	active Tab
	keys   keys.KeyMap
	styles *styles.Styles
	width  int
	height int
}

// NewApp creates the application over the three collection stores
func NewApp(tasks *syncstore.TaskStore, notes *syncstore.NoteStore, events *syncstore.EventStore) *App {
	return &App{
		tabs: []tabView{
			views.NewTaskBoardView(tasks),
			views.NewCalendarView(events),
			views.NewNoteListView(notes),
			views.NewProjectListView(),
		},
		active: TabTasks,
		keys:   keys.DefaultKeyMap(),
		styles: styles.NewStyles(),
	}
}

// Active returns the selected tab
func (a *App) Active() Tab {
	return a.active
}

// Init starts the first refresh of every collection
func (a *App) Init() tea.Cmd {
	cmds := make([]tea.Cmd, 0, len(a.tabs))
	for _, t := range a.tabs {
		cmds = append(cmds, t.Init())
	}
	return tea.Batch(cmds...)
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		inner := tea.WindowSizeMsg{Width: msg.Width, Height: max(msg.Height-headerHeight, 0)}
		for _, t := range a.tabs {
			t.Update(inner)
		}
		return a, nil

	case tea.KeyMsg:
		current := a.tabs[a.active]
		if current.Capturing() {
			if msg.String() == "ctrl+c" {
				return a, tea.Quit
			}
			_, cmd := current.Update(msg)
			return a, cmd
		}

		switch {
		case key.Matches(msg, a.keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, a.keys.Tab):
			a.active = (a.active + 1) % Tab(len(a.tabs))
			return a, nil
		case key.Matches(msg, a.keys.PrevTab):
			a.active = (a.active + Tab(len(a.tabs)) - 1) % Tab(len(a.tabs))
			return a, nil
		}
		for i, b := range a.keys.GotoTabs {
			if key.Matches(msg, b) && i < len(a.tabs) {
				a.active = Tab(i)
				return a, nil
			}
		}

		_, cmd := current.Update(msg)
		return a, cmd
	}

	// Results of store calls and other async messages; each view picks its own
	cmds := make([]tea.Cmd, 0, len(a.tabs))
	for _, t := range a.tabs {
		_, cmd := t.Update(msg)
		cmds = append(cmds, cmd)
	}
	return a, tea.Batch(cmds...)
}

func (a *App) View() string {
	var b strings.Builder

	b.WriteString(a.styles.TitleBar.Render(
		a.styles.Title.Render("Мой Ежедневник") + "  " + a.styles.TitleMuted.Render("Организуй свою жизнь"),
	))
	b.WriteString("\n\n")
	b.WriteString(a.renderTabs())
	b.WriteString("\n\n")
	b.WriteString(a.tabs[a.active].View())

	return styles.CenterView(b.String(), a.width, a.height)
}

func (a *App) renderTabs() string {
	var tabs []string
	for i, title := range tabTitles {
		label := string(rune('1'+i)) + " " + title
		if Tab(i) == a.active {
			tabs = append(tabs, a.styles.TabActive.Render(label))
		} else {
			tabs = append(tabs, a.styles.TabInactive.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}
