package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/ecclabs/wcost/internal/tui/theme"
)

// RenderStatusBar renders the bottom status bar.
func RenderStatusBar(width int, scanAge string, refreshing bool) string {
	t := theme.Active

	style := lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Width(width)

	left := " [?]help  [r]escan  [q]uit"
	right := ""
	if refreshing {
		right = "Rescanning... "
	} else if scanAge != "" {
		right = fmt.Sprintf("Scan: %s ", scanAge)
	}

	// Pad middle
	padding := width - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 0 {
		padding = 0
	}

	bar := left
	for i := 0; i < padding; i++ {
		bar += " "
	}
	bar += right

	return style.Render(bar)
}
