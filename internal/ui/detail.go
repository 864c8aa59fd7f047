package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// renderDetail renders the contact detail pane into a width x height block.
func (m Model) renderDetail(width, height int) string {
	bgColor := m.theme.Surface
	styles := m.theme.Styles().WithBackground(bgColor)
	bg := NewBgStyle(bgColor)
	place := func(s string) string {
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, s,
			lipgloss.WithWhitespaceBackground(lipgloss.Color(bgColor)))
	}

	switch {
	case m.detailURI == "":
		return place(styles.FaintText.Render("No contact selected"))
	case m.detailErr != nil:
		return place(styles.DangerText.Render(truncate(m.detailErr.Error(), max(1, width-4))))
	case m.detail.ID == 0:
		return place(styles.MutedText.Render("Loading..."))
	}

	d := m.detail
	fieldWidth := max(1, width-PortraitSize-4)
	label := func(l string) string {
		return bg.Render(padRight(l, 6), styles.MutedText)
	}

	fields := []string{
		bg.Render(truncate(d.DisplayName, fieldWidth), styles.Text.Bold(true)),
	}
	if d.Organization != "" {
		fields = append(fields, bg.Render(truncate(d.Organization, fieldWidth), styles.MutedText))
	}
	fields = append(fields, "")
	if d.Phone != "" {
		fields = append(fields, label("Phone")+bg.Space()+bg.Render(truncate(d.Phone, max(1, fieldWidth-7)), styles.Text))
	}
	if d.Email != "" {
		fields = append(fields, label("Email")+bg.Space()+bg.Render(truncate(d.Email, max(1, fieldWidth-7)), styles.AccentText))
	}
	if d.Note != "" {
		fields = append(fields, "", bg.Render("Note", styles.MutedText))
		wrapped := lipgloss.NewStyle().
			Background(lipgloss.Color(bgColor)).
			Foreground(lipgloss.Color(m.theme.Text)).
			Width(fieldWidth).
			Render(d.Note)
		fields = append(fields, strings.Split(wrapped, "\n")...)
	}

	portrait := strings.Join(m.portrait(m.detailImage, d.DisplayName, PortraitSize), "\n")
	body := lipgloss.JoinHorizontal(lipgloss.Top,
		portrait,
		bg.Spaces(2),
		strings.Join(fields, "\n"),
	)

	return lipgloss.NewStyle().
		Background(lipgloss.Color(bgColor)).
		Padding(1, 1).
		Width(width).
		Height(height).
		MaxHeight(height).
		Render(body)
}
