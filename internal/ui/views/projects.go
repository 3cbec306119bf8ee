package views

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tgienger/organizer/internal/models"
	"github.com/tgienger/organizer/internal/ui/styles"
)

// Project is an entry of the static project catalogue
type Project struct {
	Name     string
	Progress int // percent
	Tasks    int
	Color    models.Color
}

// Template is a starting point offered next to the projects
type Template struct {
	Name  string
	Color models.Color
}

// Catalogue is what the projects tab shows. No collection backs it.
var Catalogue = []Project{
	{Name: "Запуск продукта", Progress: 75, Tasks: 12, Color: models.ColorPurple},
	{Name: "Разработка сайта", Progress: 45, Tasks: 8, Color: models.ColorPink},
	{Name: "Маркетинговая кампания", Progress: 90, Tasks: 15, Color: models.ColorOrange},
	{Name: "Обучение команды", Progress: 30, Tasks: 6, Color: models.ColorBlue},
	{Name: "Редизайн бренда", Progress: 60, Tasks: 10, Color: models.ColorGreen},
}

// Templates lists the project templates
var Templates = []Template{
	{Name: "Чек-лист", Color: models.ColorPurple},
	{Name: "Таблица", Color: models.ColorPink},
	{Name: "База данных", Color: models.ColorOrange},
	{Name: "Галерея", Color: models.ColorBlue},
}

type projectItem struct {
	project Project
}

func (i projectItem) Title() string { return i.project.Name }
func (i projectItem) Description() string {
	return fmt.Sprintf("%d задач · прогресс %d%%", i.project.Tasks, i.project.Progress)
}
func (i projectItem) FilterValue() string { return i.project.Name }

// progressBar renders a bar of width cells filled to percent
func progressBar(percent, width int, color lipgloss.Color) string {
	percent = clamp(percent, 0, 100)
	filled := percent * width / 100
	return lipgloss.NewStyle().Foreground(color).Render(strings.Repeat("█", filled)) +
		lipgloss.NewStyle().Foreground(styles.Current.Border).Render(strings.Repeat("░", width-filled))
}

type projectDelegate struct {
	styles *styles.Styles
	width  int
}

func (d projectDelegate) Height() int                               { return 3 }
func (d projectDelegate) Spacing() int                              { return 1 }
func (d projectDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }

func (d projectDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	p, ok := item.(projectItem)
	if !ok {
		return
	}

	selected := index == m.Index()
	width := max(d.width-4, 20)

	var titleStyle, descStyle lipgloss.Style
	if selected {
		titleStyle = d.styles.ListSelected.Width(width)
		descStyle = d.styles.ListSelected.Foreground(styles.Current.ForegroundDim).Width(width)
	} else {
		titleStyle = d.styles.ListItem.Width(width)
		descStyle = d.styles.ListItem.Foreground(styles.Current.ForegroundDim).Width(width)
	}

	title := titleStyle.Render(colorDot(p.project.Color) + " " + p.Title())
	desc := descStyle.Render(p.Description())
	bar := d.styles.ListItem.Render(progressBar(p.project.Progress, clamp(width-8, 10, 40), styles.ColorOf(p.project.Color)))

	fmt.Fprintf(w, "%s\n%s\n%s", title, desc, bar)
}

// ProjectListView shows the project catalogue and templates
type ProjectListView struct {
	list     list.Model
	delegate *projectDelegate
	styles   *styles.Styles
	width    int
	height   int
}

// NewProjectListView creates the projects tab
func NewProjectListView() *ProjectListView {
	s := styles.NewStyles()

	delegate := &projectDelegate{styles: s, width: 80}

	items := make([]list.Item, len(Catalogue))
	for i, p := range Catalogue {
		items[i] = projectItem{project: p}
	}

	l := list.New(items, delegate, 0, 0)
	l.Title = "Проекты и шаблоны"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.Styles.Title = s.Title
	l.SetShowHelp(false)
	// quitting and tab switching belong to the app
	l.DisableQuitKeybindings()

	return &ProjectListView{
		list:     l,
		delegate: delegate,
		styles:   s,
	}
}

// Init does nothing, the catalogue is static
func (v *ProjectListView) Init() tea.Cmd {
	return nil
}

// Capturing reports whether the filter prompt takes the keystrokes
func (v *ProjectListView) Capturing() bool {
	return v.list.FilterState() == list.Filtering
}

// Update handles messages
func (v *ProjectListView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		// Use content width (capped at MaxWidth) for internal layout
		contentWidth := styles.ContentWidth(msg.Width)
		v.delegate.width = contentWidth
		v.list.SetSize(contentWidth-4, max(msg.Height-6, 4))
		return v, nil
	}

	// keys plus the list's own filter messages
	var cmd tea.Cmd
	v.list, cmd = v.list.Update(msg)
	return v, cmd
}

// View renders the catalogue
func (v *ProjectListView) View() string {
	s := v.styles

	var chips []string
	for _, t := range Templates {
		chips = append(chips, s.Button.BorderForeground(styles.ColorOf(t.Color)).Render(t.Name))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		v.list.View(),
		s.Title.Render("Шаблоны"),
		lipgloss.JoinHorizontal(lipgloss.Top, chips...),
		helpLine(s, "↑↓", "select", "/", "filter", "esc", "clear filter"),
	)
}
