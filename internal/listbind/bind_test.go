package listbind

import (
	"testing"

	"github.com/five82/rolodex/internal/contacts"
)

func TestHighlightRange(t *testing.T) {
	tests := []struct {
		name, term string
		want       Range
		ok         bool
	}{
		{"Carla", "arl", Range{1, 4}, true},
		{"Carla", "ARL", Range{1, 4}, true},
		{"Carla", "c", Range{0, 1}, true},
		{"Anna Banana", "an", Range{0, 2}, true},
		{"Zoë Ödegaard", "öde", Range{4, 7}, true},
		{"Carla", "", Range{}, false},
		{"Carla", "xyz", Range{}, false},
		{"Al", "Alice", Range{}, false},
	}
	for _, tt := range tests {
		got, ok := HighlightRange(tt.name, tt.term)
		if ok != tt.ok || got != tt.want {
			t.Fatalf("HighlightRange(%q, %q) = %v, %v, want %v, %v", tt.name, tt.term, got, ok, tt.want, tt.ok)
		}
		if ok && got.Len() != len([]rune(tt.term)) {
			t.Fatalf("HighlightRange(%q, %q) length = %d, want %d", tt.name, tt.term, got.Len(), len([]rune(tt.term)))
		}
	}
}

func TestBind_SearchScenario(t *testing.T) {
	filtered := []contacts.Record{{ID: 3, DisplayName: "Carla", SortKey: "CARLA", PhotoRef: "/p/carla.png"}}

	rows := Bind(filtered, "arl")
	if len(rows) != 1 {
		t.Fatalf("len(rows) = %d, want 1", len(rows))
	}
	row := rows[0]
	if row.Index != 0 || !row.HasHighlight || row.Highlight != (Range{1, 4}) {
		t.Fatalf("row = %+v, want index 0 highlighting [1,4)", row)
	}
	if row.ShowSecondary {
		t.Fatalf("ShowSecondary = true, want hidden when the name matches")
	}
	if row.PhotoRef() != "/p/carla.png" {
		t.Fatalf("PhotoRef = %q, want %q", row.PhotoRef(), "/p/carla.png")
	}
}

func TestBind_SecondaryLine(t *testing.T) {
	records := []contacts.Record{{DisplayName: "Alice"}, {DisplayName: "Bob"}}

	for _, row := range Bind(records, "") {
		if row.ShowSecondary || row.HasHighlight {
			t.Fatalf("row %d = %+v, want no highlight or secondary without a term", row.Index, row)
		}
	}

	rows := Bind(records, "ali")
	if rows[0].ShowSecondary {
		t.Fatalf("Alice ShowSecondary = true, want hidden")
	}
	if !rows[1].ShowSecondary || rows[1].HasHighlight {
		t.Fatalf("Bob row = %+v, want secondary shown without highlight", rows[1])
	}
}
