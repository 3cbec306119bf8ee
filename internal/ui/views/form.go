package views

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tgienger/organizer/internal/ui/keys"
	"github.com/tgienger/organizer/internal/ui/styles"
)

type fieldKind int

const (
	fieldInput fieldKind = iota
	fieldArea
	fieldChoice
)

type formField struct {
	label string
	kind  fieldKind
	input textinput.Model
	area  textarea.Model

	// choice fields
	choices []string
	initial int
	choice  int
	render  func(string) string // optional decoration of a choice
}

// form is the create dialog shared by the tabs: text fields, choice fields
// cycled with ←/→, and a save button as the last focus stop.
type form struct {
	title  string
	fields []*formField
	focus  int // len(fields) = save button
	styles *styles.Styles
	keys   keys.KeyMap
	width  int
}

type formResult int

const (
	formPending formResult = iota
	formSubmit
	formCancel
)

func newForm(title string, s *styles.Styles, km keys.KeyMap) *form {
	return &form{title: title, styles: s, keys: km, width: 50}
}

func (f *form) addInput(label, placeholder string, limit int) *form {
	in := textinput.New()
	in.Placeholder = placeholder
	in.CharLimit = limit
	f.fields = append(f.fields, &formField{label: label, kind: fieldInput, input: in})
	return f
}

func (f *form) addArea(label, placeholder string, limit int) *form {
	ta := textarea.New()
	ta.Placeholder = placeholder
	ta.CharLimit = limit
	ta.SetWidth(f.width)
	ta.SetHeight(3)
	ta.ShowLineNumbers = false
	f.fields = append(f.fields, &formField{label: label, kind: fieldArea, area: ta})
	return f
}

func (f *form) addChoice(label string, choices []string, initial int, render func(string) string) *form {
	f.fields = append(f.fields, &formField{
		label:   label,
		kind:    fieldChoice,
		choices: choices,
		initial: initial,
		choice:  initial,
		render:  render,
	})
	return f
}

// value returns the trimmed text or the selected choice of field i
func (f *form) value(i int) string {
	fld := f.fields[i]
	switch fld.kind {
	case fieldArea:
		return strings.TrimSpace(fld.area.Value())
	case fieldChoice:
		return fld.choices[fld.choice]
	}
	return strings.TrimSpace(fld.input.Value())
}

func (f *form) setValue(i int, val string) {
	switch fld := f.fields[i]; fld.kind {
	case fieldArea:
		fld.area.SetValue(val)
	case fieldInput:
		fld.input.SetValue(val)
	}
}

// clear resets every field. Called once the record has been created, so a
// failed or cancelled submit keeps what was typed.
func (f *form) clear() {
	for _, fld := range f.fields {
		switch fld.kind {
		case fieldInput:
			fld.input.Reset()
		case fieldArea:
			fld.area.Reset()
		case fieldChoice:
			fld.choice = fld.initial
		}
	}
}

// open focuses the first field
func (f *form) open() tea.Cmd {
	f.focus = 0
	f.updateFocus()
	return textinput.Blink
}

func (f *form) setWidth(w int) {
	f.width = w
	for _, fld := range f.fields {
		if fld.kind == fieldArea {
			fld.area.SetWidth(w)
		}
	}
}

func (f *form) cycleFocus(dir int) {
	n := len(f.fields) + 1
	f.focus = (f.focus + dir + n) % n
	f.updateFocus()
}

func (f *form) updateFocus() {
	for i, fld := range f.fields {
		switch fld.kind {
		case fieldInput:
			if i == f.focus {
				fld.input.Focus()
			} else {
				fld.input.Blur()
			}
		case fieldArea:
			if i == f.focus {
				fld.area.Focus()
			} else {
				fld.area.Blur()
			}
		}
	}
}

func (f *form) focused() *formField {
	if f.focus < len(f.fields) {
		return f.fields[f.focus]
	}
	return nil
}

func (f *form) update(msg tea.KeyMsg) (formResult, tea.Cmd) {
	fld := f.focused()

	switch {
	case key.Matches(msg, f.keys.Back):
		return formCancel, nil

	case key.Matches(msg, f.keys.Save):
		return formSubmit, nil

	case key.Matches(msg, f.keys.Tab):
		f.cycleFocus(1)
		return formPending, nil

	case key.Matches(msg, f.keys.PrevTab):
		f.cycleFocus(-1)
		return formPending, nil

	case key.Matches(msg, f.keys.Enter):
		if fld == nil {
			return formSubmit, nil
		}
		// Enter inserts a newline in text areas
		if fld.kind != fieldArea {
			f.cycleFocus(1)
			return formPending, nil
		}
	}

	if fld == nil {
		return formPending, nil
	}

	var cmd tea.Cmd
	switch fld.kind {
	case fieldChoice:
		n := len(fld.choices)
		switch {
		case key.Matches(msg, f.keys.Left):
			fld.choice = (fld.choice + n - 1) % n
		case key.Matches(msg, f.keys.Right), key.Matches(msg, f.keys.Toggle):
			fld.choice = (fld.choice + 1) % n
		}
	case fieldInput:
		fld.input, cmd = fld.input.Update(msg)
	case fieldArea:
		fld.area, cmd = fld.area.Update(msg)
	}
	return formPending, cmd
}

func (f *form) view() string {
	s := f.styles
	rows := []string{s.Title.Render(f.title), ""}

	for i, fld := range f.fields {
		style := s.Input
		if i == f.focus {
			style = s.InputFocused
		}

		rows = append(rows, fld.label+":")
		switch fld.kind {
		case fieldInput:
			rows = append(rows, style.Width(f.width).Render(fld.input.View()))
		case fieldArea:
			rows = append(rows, style.Render(fld.area.View()))
		case fieldChoice:
			var opts []string
			for j, c := range fld.choices {
				label := c
				if fld.render != nil {
					label = fld.render(c)
				}
				if j == fld.choice {
					opts = append(opts, s.ListSelected.Render(label))
				} else {
					opts = append(opts, s.TitleMuted.Render(label))
				}
			}
			rows = append(rows, style.Width(f.width).Render(strings.Join(opts, " ")))
		}
		rows = append(rows, "")
	}

	btn := s.Button
	if f.focused() == nil {
		btn = s.ButtonFocused
	}
	rows = append(rows,
		btn.Render(" Save "),
		"",
		s.TitleMuted.Render("Tab: next • ←→: choose • Ctrl+S: save • Esc: cancel"),
	)

	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}
