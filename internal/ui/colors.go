package ui

import "github.com/charmbracelet/lipgloss"

// Theme names the colors the TUI draws with.
type Theme struct {
	Accent  string // titles, step numbers and keyword chips
	OnChip  string
	Danger  string
	Caution string
	Muted   string
}

var defaultTheme = Theme{
	Accent:  "#E07A5F",
	OnChip:  "#FFF8F0",
	Danger:  "#D62828",
	Caution: "#F2A541",
	Muted:   "#8D8D8D",
}

var styles = newPalette(defaultTheme)

// palette holds the rendered styles for a [Theme].
type palette struct {
	title lipgloss.Style
	err   lipgloss.Style
	warn  lipgloss.Style
	help  lipgloss.Style
	chip  lipgloss.Style
	step  lipgloss.Style
}

func newPalette(t Theme) palette {
	fg := func(c string) lipgloss.Style { return lipgloss.NewStyle().Foreground(lipgloss.Color(c)) }

	return palette{
		title: fg(t.Accent).Bold(true).MarginBottom(1),
		err:   fg(t.Danger).Bold(true),
		warn:  fg(t.Caution),
		help:  fg(t.Muted).Italic(true),
		chip:  fg(t.OnChip).Background(lipgloss.Color(t.Accent)).Padding(0, 1),
		step:  fg(t.Accent).Bold(true),
	}
}
