package tui

import "github.com/charmbracelet/lipgloss"

var titleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("39")).
	PaddingBottom(1)

var sectionStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("240")).
	Padding(0, 1)

var headingStyle = lipgloss.NewStyle().Bold(true).PaddingBottom(1)

var generateButtonStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("231")).
	Background(lipgloss.Color("27")).
	Padding(0, 2)

var sendButtonStyle = generateButtonStyle.Background(lipgloss.Color("28"))

var disabledButtonStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("250")).
	Background(lipgloss.Color("240")).
	Padding(0, 2)

var (
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("34"))
	failureStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("160"))
)

var alertStyle = lipgloss.NewStyle().
	Border(lipgloss.ThickBorder()).
	BorderForeground(lipgloss.Color("160")).
	Padding(0, 1)

var footerStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("241")).
	PaddingTop(1)

func button(label string, enabled bool, style lipgloss.Style) string {
	if !enabled {
		return disabledButtonStyle.Render(label)
	}
	return style.Render(label)
}
