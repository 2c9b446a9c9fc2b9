package tui

import (
	"strings"

	"recap/internal/model"
)

func (m *AppModel) emailSection() string {
	var b strings.Builder
	b.WriteString(headingStyle.Render("3. Share via Email"))
	b.WriteString("\n")
	b.WriteString(m.recipientsInput.View())
	b.WriteString("\n\n")

	label := "Send Email"
	if m.state.Sending() {
		label = m.spinner.View() + " Sending..."
	}
	b.WriteString(button(label, m.state.CanSend(), sendButtonStyle))

	if status := statusLine(m.state.Status()); status != "" {
		b.WriteString("\n")
		b.WriteString(status)
	}
	return b.String()
}

func statusLine(s model.DispatchStatus) string {
	switch s.Kind {
	case model.StatusSuccess:
		return successStyle.Render(s.Message)
	case model.StatusFailure:
		return failureStyle.Render(s.Message)
	default:
		return ""
	}
}
