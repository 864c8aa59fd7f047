package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme defines colors and styles for the UI.
type Theme struct {
	Name string

	// Base colors
	Background string // List and outermost background
	Surface    string // Header, command bar and detail pane
	FocusBg    string // Contact shown in the detail pane

	// List colors
	SelectionBg   string // Cursor row background
	SelectionText string // Cursor row text
	Highlight     string // Search match in a contact name
	SectionLetter string // Alphabet gutter

	// Avatar colors, used when a contact has no photo
	AvatarBg   string
	AvatarText string

	// Text colors
	Text    string
	Muted   string
	Faint   string
	Accent  string
	Success string
	Warning string
	Danger  string
	Info    string
}

// Styles returns Lipgloss styles for this theme.
func (t Theme) Styles() Styles {
	return Styles{
		// Text styles
		Text: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Text)),

		MutedText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Muted)),

		FaintText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Faint)),

		AccentText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Accent)),

		SuccessText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Success)).
			Bold(true),

		WarningText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Warning)),

		DangerText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Danger)).
			Bold(true),

		InfoText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Info)),

		HighlightText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Highlight)).
			Bold(true).
			Underline(true),

		SectionText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.SectionLetter)).
			Bold(true),

		// Component styles
		Header: lipgloss.NewStyle().
			Background(lipgloss.Color(t.Surface)).
			Foreground(lipgloss.Color(t.Text)).
			Padding(0, 1),

		Footer: lipgloss.NewStyle().
			Background(lipgloss.Color(t.Surface)).
			Foreground(lipgloss.Color(t.Muted)).
			Padding(0, 1),

		Logo: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Warning)).
			Bold(true),
	}
}

// Styles contains pre-built Lipgloss styles for the theme.
type Styles struct {
	// Text
	Text          lipgloss.Style
	MutedText     lipgloss.Style
	FaintText     lipgloss.Style
	AccentText    lipgloss.Style
	SuccessText   lipgloss.Style
	WarningText   lipgloss.Style
	DangerText    lipgloss.Style
	InfoText      lipgloss.Style
	HighlightText lipgloss.Style
	SectionText   lipgloss.Style

	// Components
	Header lipgloss.Style
	Footer lipgloss.Style
	Logo   lipgloss.Style
}

// WithBackground returns a copy of Styles with all text styles having the specified background.
// This ensures styled text has explicit backgrounds instead of transparent/inherit.
func (s Styles) WithBackground(bgColor string) Styles {
	bg := lipgloss.Color(bgColor)

	return Styles{
		Text:          s.Text.Background(bg),
		MutedText:     s.MutedText.Background(bg),
		FaintText:     s.FaintText.Background(bg),
		AccentText:    s.AccentText.Background(bg),
		SuccessText:   s.SuccessText.Background(bg),
		WarningText:   s.WarningText.Background(bg),
		DangerText:    s.DangerText.Background(bg),
		InfoText:      s.InfoText.Background(bg),
		HighlightText: s.HighlightText.Background(bg),
		SectionText:   s.SectionText.Background(bg),

		Header: s.Header.Background(bg),
		Footer: s.Footer.Background(bg),
		Logo:   s.Logo.Background(bg),
	}
}

// LevelStyle returns the style for a log level name.
func (s Styles) LevelStyle(level string) lipgloss.Style {
	switch level {
	case "INFO":
		return s.SuccessText
	case "WARN":
		return s.WarningText
	case "ERROR":
		return s.DangerText
	case "DEBUG":
		return s.InfoText
	default:
		return s.Text
	}
}

// Theme definitions

var themes = map[string]Theme{
	"Nightfox": nightfoxTheme(),
	"Kanagawa": kanagawaTheme(),
	"Slate":    slateTheme(),
}

var themeOrder = []string{"Nightfox", "Kanagawa", "Slate"}

// GetTheme returns a theme by name.
func GetTheme(name string) Theme {
	if t, ok := themes[name]; ok {
		return t
	}
	return nightfoxTheme()
}

// NextTheme returns the next theme name in the cycle.
func NextTheme(current string) string {
	for i, name := range themeOrder {
		if name == current {
			return themeOrder[(i+1)%len(themeOrder)]
		}
	}
	return themeOrder[0]
}

// ThemeNames returns available theme names.
func ThemeNames() []string {
	return themeOrder
}

func nightfoxTheme() Theme {
	// Nightfox palette: https://github.com/EdenEast/nightfox.nvim
	return Theme{
		Name: "Nightfox",

		Background: "#131a24", // bg0
		Surface:    "#192330", // bg1
		FocusBg:    "#29394f", // bg3

		SelectionBg:   "#2b3b51", // sel0
		SelectionText: "#dfdfe0", // fg0
		Highlight:     "#f4a261", // orange
		SectionLetter: "#9d79d6", // magenta

		AvatarBg:   "#39506d", // bg4
		AvatarText: "#d67ad2", // pink

		Text:    "#cdcecf", // fg1
		Muted:   "#aeafb0", // fg2
		Faint:   "#71839b", // fg3
		Accent:  "#719cd6", // blue
		Success: "#81b29a", // green
		Warning: "#dbc074", // yellow
		Danger:  "#c94f6d", // red
		Info:    "#63cdcf", // cyan
	}
}

func kanagawaTheme() Theme {
	// Kanagawa palette: https://github.com/rebelot/kanagawa.nvim
	return Theme{
		Name: "Kanagawa",

		Background: "#1F1F28", // sumiInk3
		Surface:    "#16161D", // sumiInk0
		FocusBg:    "#223249", // waveBlue1

		SelectionBg:   "#2D4F67", // waveBlue2
		SelectionText: "#DCD7BA", // fujiWhite
		Highlight:     "#FF9E3B", // roninYellow
		SectionLetter: "#957FB8", // oniViolet

		AvatarBg:   "#363646", // sumiInk5
		AvatarText: "#C0A36E", // boatYellow2

		Text:    "#DCD7BA", // fujiWhite
		Muted:   "#C8C093", // oldWhite
		Faint:   "#727169", // fujiGray
		Accent:  "#7E9CD8", // crystalBlue
		Success: "#98BB6C", // springGreen
		Warning: "#E6C384", // carpYellow
		Danger:  "#E46876", // waveRed
		Info:    "#7AA89F", // waveAqua2
	}
}

func slateTheme() Theme {
	// Tailwind CSS Slate/Sky palette: https://tailwindcss.com/docs/colors
	return Theme{
		Name: "Slate",

		Background: "#0f172a", // slate-900
		Surface:    "#020617", // slate-950
		FocusBg:    "#0c4a6e", // sky-900

		SelectionBg:   "#0284c7", // sky-600
		SelectionText: "#f8fafc", // slate-50
		Highlight:     "#fde047", // yellow-300
		SectionLetter: "#2dd4bf", // teal-400

		AvatarBg:   "#334155", // slate-700
		AvatarText: "#e2e8f0", // slate-200

		Text:    "#f1f5f9", // slate-100
		Muted:   "#94a3b8", // slate-400
		Faint:   "#64748b", // slate-500
		Accent:  "#38bdf8", // sky-400
		Success: "#4ade80", // green-400
		Warning: "#fbbf24", // amber-400
		Danger:  "#f87171", // red-400
		Info:    "#a5b4fc", // indigo-300
	}
}
