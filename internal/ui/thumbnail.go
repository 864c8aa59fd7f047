package ui

import (
	"fmt"
	"image"
	"strings"
	"unicode"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/image/draw"
)

// renderBlocks draws img into cols x rows terminal cells. Each cell is an
// upper half block carrying two vertically stacked pixels, so the image is
// scaled to cols x 2*rows first.
func renderBlocks(img image.Image, cols, rows int) []string {
	if img == nil || cols <= 0 || rows <= 0 || img.Bounds().Empty() {
		return nil
	}
	dst := image.NewRGBA(image.Rect(0, 0, cols, rows*2))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)

	lines := make([]string, rows)
	for y := range rows {
		var b strings.Builder
		for x := range cols {
			top := dst.RGBAAt(x, 2*y)
			bottom := dst.RGBAAt(x, 2*y+1)
			b.WriteString(lipgloss.NewStyle().
				Foreground(lipgloss.Color(hexColor(top.R, top.G, top.B))).
				Background(lipgloss.Color(hexColor(bottom.R, bottom.G, bottom.B))).
				Render("▀"))
		}
		lines[y] = b.String()
	}
	return lines
}

func hexColor(r, g, b uint8) string {
	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

// initials returns up to two upper-case letters for a display name.
func initials(name string) string {
	var out []rune
	for _, word := range strings.Fields(name) {
		for _, r := range word {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				out = append(out, unicode.ToUpper(r))
				break
			}
		}
		if len(out) == 2 {
			break
		}
	}
	if len(out) == 0 {
		return "?"
	}
	return string(out)
}

// isPlaceholder reports whether img stands for "no photo".
func isPlaceholder(img image.Image) bool {
	return img == nil || img == Placeholder()
}

// avatar renders the one-line list thumbnail: two cells of photo or the
// contact's initials.
func (m Model) avatar(img image.Image, name string) string {
	if !isPlaceholder(img) {
		if lines := renderBlocks(img, 2, 1); len(lines) == 1 {
			return lines[0]
		}
	}
	return lipgloss.NewStyle().
		Background(lipgloss.Color(m.theme.AvatarBg)).
		Foreground(lipgloss.Color(m.theme.AvatarText)).
		Bold(true).
		Width(2).
		Render(truncate(initials(name), 2))
}

// portrait renders the detail pane thumbnail as a size x size/2 block.
func (m Model) portrait(img image.Image, name string, size int) []string {
	if size < 2 {
		size = 2
	}
	rows := size / 2
	if !isPlaceholder(img) {
		if lines := renderBlocks(img, size, rows); lines != nil {
			return lines
		}
	}
	box := lipgloss.NewStyle().
		Background(lipgloss.Color(m.theme.AvatarBg)).
		Foreground(lipgloss.Color(m.theme.AvatarText)).
		Bold(true).
		Width(size).
		Height(rows).
		Align(lipgloss.Center, lipgloss.Center).
		Render(initials(name))
	return strings.Split(box, "\n")
}
