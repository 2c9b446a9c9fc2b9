package tui

import (
	"fmt"
	"strings"
)

func (m *AppModel) transcriptSection() string {
	var b strings.Builder
	b.WriteString(headingStyle.Render("1. Add Transcript"))
	b.WriteString("\n")

	if f := m.state.File(); f != nil {
		fmt.Fprintf(&b, "File: %s", f.Name)
		b.WriteString(mutedStyle.Render("  (sent instead of the text below)"))
	} else {
		b.WriteString(mutedStyle.Render("No file selected. ctrl+o picks a .txt transcript"))
	}
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("— OR —"))
	b.WriteString("\n")
	b.WriteString(m.transcriptArea.View())
	b.WriteString("\n\n")

	label := "Generate Summary"
	if m.state.Summarizing() {
		label = m.spinner.View() + " Processing..."
	}
	b.WriteString(button(label, m.state.CanSummarize(), generateButtonStyle))
	if m.state.SummarizeFailed() {
		b.WriteString("  ")
		b.WriteString(failureStyle.Render("Last attempt failed. ctrl+g to retry"))
	}
	return b.String()
}

func pickerView(picker string) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Pick a transcript (.txt)"))
	b.WriteString("\n")
	b.WriteString(picker)
	b.WriteString("\n")
	b.WriteString(footerStyle.Render("enter: select  esc: back  ctrl+c: quit"))
	return b.String()
}

func alertView(msg string) string {
	return alertStyle.Render(msg + "\n" + mutedStyle.Render("press any key"))
}
