package views

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/tgienger/organizer/internal/models"
	"github.com/tgienger/organizer/internal/ui/styles"
)

// clamp returns val clamped between minVal and maxVal
func clamp(val, minVal, maxVal int) int {
	if val < minVal {
		return minVal
	}
	if val > maxVal {
		return maxVal
	}
	return val
}

// truncate shortens s to fit width terminal cells
func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return runewidth.Truncate(s, width, "…")
}

// firstLine returns the first non-empty line of s
func firstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return ""
}

func colorDot(c models.Color) string {
	return lipgloss.NewStyle().Foreground(styles.ColorOf(c)).Render("●")
}

// colorNames lists the palette as strings for choice fields
func colorNames() []string {
	names := make([]string, len(models.Palette))
	for i, c := range models.Palette {
		names[i] = string(c)
	}
	return names
}

func renderColorChoice(name string) string {
	return colorDot(models.Color(name)) + " " + name
}

// status is the muted line under a view reporting the last operation
type status struct {
	text   string
	failed bool
}

func (st status) render(s *styles.Styles) string {
	if st.text == "" {
		return ""
	}
	if st.failed {
		return s.StatusError.Render(st.text)
	}
	return s.StatusBar.Render(st.text)
}

// helpLine renders "key desc • key desc" pairs
func helpLine(s *styles.Styles, pairs ...string) string {
	var parts []string
	for i := 0; i+1 < len(pairs); i += 2 {
		parts = append(parts, s.HelpKey.Render(pairs[i])+" "+s.HelpDesc.Render(pairs[i+1]))
	}
	return s.Help.Render(strings.Join(parts, " • "))
}

// centerForm places a form in the middle of the content area
func centerForm(f *form, width, height int) string {
	return lipgloss.Place(styles.ContentWidth(width), height,
		lipgloss.Center, lipgloss.Center,
		f.view(),
	)
}
