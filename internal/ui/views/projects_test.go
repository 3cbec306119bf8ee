package views

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tgienger/organizer/internal/ui/styles"
)

func TestCatalogue(t *testing.T) {
	require.Len(t, Catalogue, 5)
	require.Len(t, Templates, 4)

	v := NewProjectListView()
	v.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	assert.Len(t, v.list.Items(), len(Catalogue))

	out := v.View()
	assert.Contains(t, out, "Запуск продукта")
	assert.Contains(t, out, "12 задач · прогресс 75%")
	assert.Contains(t, out, "Галерея")

	assert.False(t, v.Capturing())
	v.Update(press("/"))
	assert.True(t, v.Capturing())
}

func TestProgressBar(t *testing.T) {
	bar := progressBar(75, 20, styles.Current.Primary)
	assert.Equal(t, 20, lipgloss.Width(bar))
	assert.Equal(t, 10, lipgloss.Width(progressBar(130, 10, styles.Current.Primary)))
}
