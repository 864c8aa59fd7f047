package ui

import (
	"image"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/five82/rolodex/internal/imageloader"
	"github.com/five82/rolodex/internal/listbind"
)

const (
	gutterWidth   = 2 // section letter column
	avatarWidth   = 2
	secondaryNote = " · matched details"
)

// renderList renders the visible rows into a width x height block.
func (m Model) renderList(width, height int) string {
	bgColor := m.theme.Background
	styles := m.theme.Styles().WithBackground(bgColor)
	bg := NewBgStyle(bgColor)

	if len(m.rows) == 0 {
		msg := "No contacts"
		if term := m.browser.QueryState().SearchTerm; term != "" {
			msg = "No contacts match " + truncate(term, max(1, width-20))
		}
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
			styles.FaintText.Render(msg),
			lipgloss.WithWhitespaceBackground(lipgloss.Color(bgColor)))
	}

	sections := m.browser.Sections()
	lines := make([]string, 0, height)
	for i := 0; i < height && m.offset+i < len(m.rows); i++ {
		idx := m.offset + i

		gutter := ""
		if len(sections) > 0 {
			s := m.browser.SectionForPosition(idx)
			if i == 0 || m.browser.PositionForSection(s) == idx {
				gutter = strings.TrimSpace(sections[s])
			}
		}

		lines = append(lines, m.renderRow(rowView{
			row:      m.rows[idx],
			cursor:   idx == m.cursor,
			selected: m.isSelected(idx),
			gutter:   gutter,
			thumb:    m.thumbs[imageloader.Slot(i)],
		}, width))
	}
	for len(lines) < height {
		lines = append(lines, bg.FillLine("", width))
	}
	return strings.Join(lines, "\n")
}

// isSelected reports whether row idx is the one shown in the detail pane.
func (m Model) isSelected(idx int) bool {
	return m.twoPane && m.detailURI != "" && m.selection.Index == idx
}

type rowView struct {
	row      listbind.Row
	cursor   bool
	selected bool
	gutter   string
	thumb    image.Image
}

// renderRow renders one list line: section gutter, avatar, name with the
// search match highlighted, and a note when the match was not in the name.
func (m Model) renderRow(v rowView, width int) string {
	bgColor := m.theme.Background
	switch {
	case v.cursor:
		bgColor = m.theme.SelectionBg
	case v.selected:
		bgColor = m.theme.FocusBg
	}
	styles := m.theme.Styles().WithBackground(bgColor)
	bg := NewBgStyle(bgColor)

	nameStyle := styles.Text
	if v.cursor {
		nameStyle = nameStyle.Foreground(lipgloss.Color(m.theme.SelectionText))
	}

	gutter := bg.Spaces(gutterWidth)
	if v.gutter != "" {
		gutter = bg.Render(padRight(truncate(v.gutter, gutterWidth), gutterWidth), styles.SectionText)
	}

	name := v.row.Record.DisplayName
	if strings.TrimSpace(name) == "" {
		name = "(no name)"
	}

	nameWidth := width - gutterWidth - avatarWidth - 2
	note := ""
	if v.row.ShowSecondary && nameWidth-ansi.StringWidth(secondaryNote) >= 8 {
		note = secondaryNote
		nameWidth -= ansi.StringWidth(note)
	}

	visible := truncate(name, max(1, nameWidth))
	var text string
	if v.row.HasHighlight {
		limit := len([]rune(visible))
		if visible != name {
			limit-- // ellipsis
		}
		text = bg.RenderSpan(visible, v.row.Highlight.Start, min(v.row.Highlight.End, limit), nameStyle, styles.HighlightText)
	} else {
		text = bg.Render(visible, nameStyle)
	}
	if note != "" {
		text += bg.Render(note, styles.FaintText)
	}

	line := gutter + m.avatar(v.thumb, name) + bg.Space() + text
	return bg.FillLine(line, width)
}
