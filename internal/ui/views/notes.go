package views

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tgienger/organizer/internal/models"
	"github.com/tgienger/organizer/internal/syncstore"
	"github.com/tgienger/organizer/internal/ui/keys"
	"github.com/tgienger/organizer/internal/ui/styles"
)

const (
	noteFieldTitle = iota
	noteFieldContent
	noteFieldNotebook
	noteFieldColor
)

// noteDateLayout is how note cards show their creation date
const noteDateLayout = "02.01.2006"

// NoteListView shows the notes collection as cards
type NoteListView struct {
	store  *syncstore.NoteStore
	styles *styles.Styles
	keys   keys.KeyMap

	width  int
	height int

	notes   []models.Note
	loaded  bool
	cursor  int
	scrollY int

	creating bool
	form     *form
	status   status
}

type notesLoadedMsg struct {
	notes   []models.Note
	created bool
	err     error // set when a created record could not be re-fetched
}

type notesFailedMsg struct {
	err error
}

// NewNoteListView creates the notes tab
func NewNoteListView(store *syncstore.NoteStore) *NoteListView {
	s := styles.NewStyles()
	km := keys.DefaultKeyMap()

	f := newForm("Новая заметка", s, km).
		addInput("Title", "Note title", 200).
		addArea("Content", "Note content", 5000).
		addChoice("Notebook", models.Notebooks, 0, nil).
		addChoice("Color", colorNames(), 0, renderColorChoice)

	return &NoteListView{
		store:  store,
		styles: s,
		keys:   km,
		form:   f,
	}
}

// Init loads the collection
func (v *NoteListView) Init() tea.Cmd {
	return v.refresh
}

// Capturing reports whether keystrokes are text input
func (v *NoteListView) Capturing() bool {
	return v.creating
}

func (v *NoteListView) refresh() tea.Msg {
	if err := v.store.Refresh(context.Background()); err != nil {
		return notesFailedMsg{err: err}
	}
	return notesLoadedMsg{notes: v.store.List()}
}

func (v *NoteListView) createNote(draft models.NoteDraft) tea.Cmd {
	return func() tea.Msg {
		err := v.store.Create(context.Background(), draft)
		if err != nil && !syncstore.Stored(err) {
			return notesFailedMsg{err: err}
		}
		return notesLoadedMsg{notes: v.store.List(), created: true, err: err}
	}
}

// Update handles messages
func (v *NoteListView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		v.form.setWidth(clamp(styles.ContentWidth(v.width)-10, 20, 50))
		return v, nil

	case notesLoadedMsg:
		v.notes = msg.notes
		v.loaded = true
		v.status = status{}
		if msg.created {
			v.creating = false
			v.form.clear()
			v.status = status{text: "Note created"}
			if msg.err != nil {
				v.status = status{text: "Note created, refresh failed: " + msg.err.Error(), failed: true}
			}
			// newest first, so the new note is on top
			v.cursor = 0
		}
		v.cursor = clamp(v.cursor, 0, max(len(v.notes)-1, 0))
		v.ensureVisible()
		return v, nil

	case notesFailedMsg:
		v.status = status{text: msg.err.Error(), failed: true}
		return v, nil

	case tea.KeyMsg:
		if v.creating {
			return v.updateCreating(msg)
		}

		switch {
		case key.Matches(msg, v.keys.Up):
			if v.cursor > 0 {
				v.cursor--
				v.ensureVisible()
			}
		case key.Matches(msg, v.keys.Down):
			if v.cursor < len(v.notes)-1 {
				v.cursor++
				v.ensureVisible()
			}
		case key.Matches(msg, v.keys.New):
			v.creating = true
			v.status = status{}
			return v, v.form.open()
		case key.Matches(msg, v.keys.Refresh):
			v.status = status{text: "Refreshing..."}
			return v, v.refresh
		}
	}

	return v, nil
}

func (v *NoteListView) updateCreating(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	res, cmd := v.form.update(msg)
	switch res {
	case formCancel:
		v.creating = false
		v.status = status{}
		return v, nil
	case formSubmit:
		return v, v.createNote(models.NoteDraft{
			Title:    v.form.value(noteFieldTitle),
			Content:  v.form.value(noteFieldContent),
			Notebook: v.form.value(noteFieldNotebook),
			Color:    models.Color(v.form.value(noteFieldColor)),
		})
	}
	return v, cmd
}

// visibleItems is how many cards fit on screen
func (v *NoteListView) visibleItems() int {
	// title + meta + preview + margin
	return max((v.height-6)/4, 1)
}

func (v *NoteListView) ensureVisible() {
	visible := v.visibleItems()
	if v.cursor < v.scrollY {
		v.scrollY = v.cursor
	}
	if v.cursor >= v.scrollY+visible {
		v.scrollY = v.cursor - visible + 1
	}
	v.scrollY = clamp(v.scrollY, 0, max(len(v.notes)-1, 0))
}

// View renders the notes
func (v *NoteListView) View() string {
	if v.creating {
		return lipgloss.JoinVertical(lipgloss.Left,
			centerForm(v.form, v.width, max(v.height-2, 0)),
			v.status.render(v.styles),
		)
	}

	s := v.styles
	var b strings.Builder
	b.WriteString(s.Title.Render("Заметки и блокноты"))
	b.WriteString("\n\n")

	switch {
	case len(v.notes) == 0 && !v.loaded:
		b.WriteString(s.TitleMuted.Render("Loading notes..."))
		b.WriteString("\n")
	case len(v.notes) == 0:
		b.WriteString(s.TitleMuted.Render("No notes. Press 'n' to create one."))
		b.WriteString("\n")
	default:
		end := min(v.scrollY+v.visibleItems(), len(v.notes))
		var items []string
		for i := v.scrollY; i < end; i++ {
			items = append(items, v.renderNote(v.notes[i], i == v.cursor))
		}
		b.WriteString(lipgloss.JoinVertical(lipgloss.Left, items...))
	}

	if st := v.status.render(s); st != "" {
		b.WriteString(st)
		b.WriteString("\n")
	}
	b.WriteString(helpLine(s,
		"↑↓", "select",
		"n", "new",
		"r", "refresh",
	))
	return b.String()
}

func (v *NoteListView) renderNote(note models.Note, selected bool) string {
	s := v.styles
	width := max(styles.ContentWidth(v.width)-4, 20)
	text := width - 4

	meta := note.Notebook
	if !note.Date.IsZero() {
		meta += " · " + note.Date.Local().Format(noteDateLayout)
	}

	lines := []string{
		colorDot(note.Color) + " " + truncate(note.Title, text-2),
		s.TitleMuted.Render(truncate(meta, text)),
	}
	if preview := firstLine(note.Content); preview != "" {
		lines = append(lines, truncate(preview, text))
	}

	style := s.Card
	if selected {
		style = s.CardSelected
	}
	return style.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, lines...)) + "\n"
}
