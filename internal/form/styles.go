package form

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	categoryStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	labelStyle    = lipgloss.NewStyle().Faint(true)
	selectedStyle = lipgloss.NewStyle().Bold(true).Reverse(true)
	mutedStyle    = lipgloss.NewStyle().Faint(true)
	helpStyle     = lipgloss.NewStyle().Faint(true)
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)

	statusStyles = map[string]lipgloss.Style{
		"true":           lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		"confirmed":      lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		"false":          lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		"finding":        lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		"not_applicable": lipgloss.NewStyle().Faint(true),
	}

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("8")).
			Padding(0, 1)
)

// statusBadge renders a status as a fixed-width badge.
func statusBadge(label string) string {
	style, ok := statusStyles[label]
	if !ok {
		style = mutedStyle
	}
	return style.Render("[" + label + "]")
}
