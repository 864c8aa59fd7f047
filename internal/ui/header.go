package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// renderMain renders the full UI.
func (m Model) renderMain() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderCommandBar())
	b.WriteString("\n")
	b.WriteString(m.renderContent())

	return b.String()
}

// renderContent renders the area below the header for the current screen.
func (m Model) renderContent() string {
	h := m.bodyHeight()
	switch m.screen {
	case ScreenLogs:
		return m.renderLogs()
	case ScreenDetail:
		return m.renderDetail(m.width, h)
	}
	if !m.twoPane {
		return m.renderList(m.width, h)
	}
	listWidth := min(ListPaneMaxWidth, m.width*2/5)
	return lipgloss.JoinHorizontal(lipgloss.Top,
		m.renderList(listWidth, h),
		m.renderDetail(m.width-listWidth, h),
	)
}

// renderHeader renders the status bar: title, result count, search state and
// query health.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)
	compact := m.width < LayoutCompactWidth
	query := m.browser.QueryState()

	parts := []string{bg.Render("rolodex", styles.Logo)}

	countLabel := "Contacts:"
	if compact {
		countLabel = "#"
	}
	parts = append(parts,
		bg.Render(countLabel, styles.MutedText)+bg.Space()+
			bg.Render(fmt.Sprintf("%d", len(m.rows)), styles.Text))

	switch {
	case query.IsSearchResultView:
		parts = append(parts,
			bg.Render("Results for", styles.MutedText)+bg.Space()+
				bg.Render(fmt.Sprintf("%q", truncate(query.SearchTerm, 24)), styles.AccentText))
	case m.searching:
		m.search.Width = max(8, min(32, m.width/3))
		parts = append(parts, m.search.View())
	case query.SearchTerm != "":
		parts = append(parts, bg.Render("/"+truncate(query.SearchTerm, 24), styles.AccentText))
	}

	if !m.snapshot.LastUpdated.IsZero() && !compact {
		parts = append(parts, bg.Render(m.snapshot.LastUpdated.Format("15:04:05"), styles.MutedText))
	}

	if m.snapshot.IsDegraded() {
		parts = append(parts, bg.Render("DEGRADED", styles.WarningText.Bold(true)))
	}
	if m.snapshot.LastError != nil {
		maxErr := 60
		if compact {
			maxErr = 24
		}
		parts = append(parts,
			bg.Render("ERROR", styles.DangerText.Bold(true))+bg.Space()+
				bg.Render(truncate(m.snapshot.LastError.Error(), maxErr), styles.DangerText))
	}
	if stats := m.browser.LoaderStats(); stats.Paused {
		parts = append(parts, bg.Render("images paused", styles.FaintText))
	}

	return styles.Header.Width(m.width).MaxHeight(headerHeight).Render(bg.Join(parts, "  "))
}

// renderCommandBar renders the key hints for the current screen.
func (m Model) renderCommandBar() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	type cmd struct{ key, desc string }
	var commands []cmd

	switch {
	case m.searching:
		commands = []cmd{
			{"enter", "Done"},
			{"esc", "Clear"},
		}
	case m.screen == ScreenLogs:
		commands = []cmd{
			{"j/k", "Scroll"},
			{"r", "Reload"},
			{"esc", "Back"},
			{"?", "More"},
		}
	case m.screen == ScreenDetail:
		commands = []cmd{
			{"esc", "Back"},
			{"l", "Logs"},
			{"?", "More"},
		}
	default:
		commands = []cmd{
			{"j/k", "Navigate"},
			{"enter", "Open"},
		}
		if !m.browser.QueryState().IsSearchResultView {
			commands = append(commands, cmd{"/", "Search"})
		}
		commands = append(commands,
			cmd{"[/]", "Letter"},
			cmd{"l", "Logs"},
			cmd{"?", "More"},
		)
	}

	colon := bg.Sep(":")
	sep := bg.Spaces(2)

	segments := make([]string, 0, len(commands)+1)
	for _, c := range commands {
		segments = append(segments,
			bg.Render(c.key, styles.AccentText)+colon+bg.Render(c.desc, styles.MutedText))
	}

	segments = append(segments,
		bg.Render("T", styles.AccentText)+colon+bg.Render(m.theme.Name, styles.FaintText))

	return styles.Footer.Width(m.width).MaxHeight(commandBarHeight).Render(strings.Join(segments, sep))
}
