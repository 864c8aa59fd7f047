package ui

import "testing"

func TestGetThemeFallsBack(t *testing.T) {
	if got := GetTheme("Kanagawa").Name; got != "Kanagawa" {
		t.Fatalf("GetTheme(Kanagawa).Name = %q, want Kanagawa", got)
	}
	if got := GetTheme("Dracula").Name; got != "Nightfox" {
		t.Fatalf("GetTheme(unknown).Name = %q, want Nightfox", got)
	}
}

func TestThemeNames(t *testing.T) {
	names := ThemeNames()
	if len(names) != 3 {
		t.Fatalf("ThemeNames() returned %d names, want 3", len(names))
	}
	for _, name := range names {
		if got := GetTheme(name).Name; got != name {
			t.Fatalf("GetTheme(%q).Name = %q", name, got)
		}
	}
}

func TestNextTheme(t *testing.T) {
	cases := map[string]string{
		"Nightfox": "Kanagawa",
		"Kanagawa": "Slate",
		"Slate":    "Nightfox",
		"unknown":  "Nightfox",
	}
	for in, want := range cases {
		if got := NextTheme(in); got != want {
			t.Fatalf("NextTheme(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestLevelStyle(t *testing.T) {
	th := GetTheme("Nightfox")
	styles := th.Styles()
	if got := styles.LevelStyle("ERROR").GetForeground(); got != styles.DangerText.GetForeground() {
		t.Fatalf("LevelStyle(ERROR) foreground = %v, want %v", got, styles.DangerText.GetForeground())
	}
	if got := styles.LevelStyle("TRACE").GetForeground(); got != styles.Text.GetForeground() {
		t.Fatalf("LevelStyle(unknown) foreground = %v, want %v", got, styles.Text.GetForeground())
	}
}

func TestThemesDefineContactColors(t *testing.T) {
	for _, name := range ThemeNames() {
		th := GetTheme(name)
		for field, color := range map[string]string{
			"Highlight":     th.Highlight,
			"SectionLetter": th.SectionLetter,
			"AvatarBg":      th.AvatarBg,
			"AvatarText":    th.AvatarText,
			"FocusBg":       th.FocusBg,
		} {
			if color == "" {
				t.Fatalf("%s.%s is empty", name, field)
			}
		}
		if th.SectionLetter == th.Accent {
			t.Fatalf("%s section letters use the accent color %s", name, th.Accent)
		}
		if th.FocusBg == th.SelectionBg {
			t.Fatalf("%s detail-pane row and cursor share background %s", name, th.FocusBg)
		}
	}
}
