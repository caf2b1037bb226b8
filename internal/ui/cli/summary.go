package cli

import (
	"fmt"
	"strings"
	"time"

	"refdoc/internal/core/ports"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#3B82F6")).
			Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#64748B")).
			Width(12)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FBBF24")).
			Bold(true)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#64748B")).
			Italic(true)
)

// formatSummary renders a build result for the terminal.
func formatSummary(result ports.BuildResult) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("refdoc build") + "\n")

	row := func(label, value string) {
		b.WriteString(labelStyle.Render(label) + value + "\n")
	}
	row("output", result.OutputDir)
	row("files", fmt.Sprintf("%d", result.Files))
	row("symbols", fmt.Sprintf("%d documented, %d ignored", result.Documents, result.Ignored))
	pages := fmt.Sprintf("%d written, %d unchanged", result.PagesWritten, result.PagesSkipped)
	if result.PagesRemoved > 0 {
		pages += fmt.Sprintf(", %d removed", result.PagesRemoved)
	}
	row("pages", successStyle.Render(pages))
	if result.Unlinkable > 0 {
		row("unlinked", warningStyle.Render(fmt.Sprintf("%d see-also references", result.Unlinkable)))
	}
	row("duration", result.Duration.Round(time.Millisecond).String())

	for _, w := range result.Warnings {
		b.WriteString(warningStyle.Render("warning: ") + w + "\n")
	}
	return b.String()
}
