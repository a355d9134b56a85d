package paper

import (
	"fmt"
	"strings"
	"time"
)

// FormatText renders a paper as plain text for preview and handoff to the
// export component. Page layout is the exporter's concern, not ours.
func FormatText(p Paper) string {
	var b strings.Builder
	rule := strings.Repeat("=", 60)

	b.WriteString(rule + "\n")
	b.WriteString(center(fmt.Sprintf("QUESTION PAPER - %s", p.SetName), 60) + "\n")
	b.WriteString(rule + "\n")

	for _, section := range p.Sections {
		b.WriteString("\n" + section.Label + "\n")
		b.WriteString(strings.Repeat("-", len(section.Label)) + "\n\n")
		for _, q := range section.Questions {
			b.WriteString(fmt.Sprintf("Q%d. %s [%d marks]\n\n", q.Number, q.Text, q.Marks))
		}
	}

	b.WriteString("\n" + rule + "\n")
	b.WriteString(fmt.Sprintf("Generated on %s\n", time.Now().Format("2006-01-02 15:04")))
	return b.String()
}

func center(s string, width int) string {
	if len(s) >= width {
		return s
	}
	pad := (width - len(s)) / 2
	return strings.Repeat(" ", pad) + s
}
