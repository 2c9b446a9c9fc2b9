package tui

import "strings"

func (m *AppModel) summarySection() string {
	var b strings.Builder
	b.WriteString(headingStyle.Render("2. Summary"))
	b.WriteString("\n")
	b.WriteString(m.summaryArea.View())
	return b.String()
}

func mainFooter(hasSummary bool) string {
	if !hasSummary {
		return footerStyle.Render("ctrl+o: pick file  ctrl+x: clear file  ctrl+g: generate  ctrl+c: quit")
	}
	return footerStyle.Render("tab: next field  ctrl+o: pick file  ctrl+x: clear file  ctrl+g: generate  ctrl+s: send  ctrl+r: use suggestion  ctrl+c: quit")
}
