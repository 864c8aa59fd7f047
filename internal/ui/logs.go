package ui

import (
	"strings"

	"github.com/five82/rolodex/internal/logtail"
)

// renderLogs renders the log viewport or the reason it is empty.
func (m Model) renderLogs() string {
	styles := m.theme.Styles()
	if m.logErr != nil {
		return styles.DangerText.Render("Log unavailable: ") +
			styles.MutedText.Render(truncateMiddle(m.config.LogFile, max(8, m.width/2)))
	}
	return m.logViewport.View()
}

// formatLogs renders parsed log entries one per line.
func (m Model) formatLogs(entries []logtail.Entry) string {
	styles := m.theme.Styles()
	if len(entries) == 0 {
		return styles.FaintText.Render("No log entries yet")
	}

	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Raw != "" {
			lines = append(lines, styles.Text.Render(e.Raw))
			continue
		}
		var b strings.Builder
		if !e.Time.IsZero() {
			b.WriteString(styles.FaintText.Render(e.Time.Format("15:04:05")))
			b.WriteString(" ")
		}
		b.WriteString(styles.LevelStyle(e.Level).Render(padRight(e.Level, 5)))
		b.WriteString(" ")
		b.WriteString(styles.Text.Render(e.Msg))
		for _, a := range e.Attrs {
			b.WriteString(" ")
			b.WriteString(styles.MutedText.Render(a.Key + "="))
			b.WriteString(styles.Text.Render(a.Value))
		}
		lines = append(lines, b.String())
	}
	return strings.Join(lines, "\n")
}
