package listbind

import (
	"slices"
	"testing"
)

func TestIndexer_Sections(t *testing.T) {
	x := NewIndexer("CBAB")
	if got, want := x.Sections(), []string{"A", "B", "C"}; !slices.Equal(got, want) {
		t.Fatalf("Sections = %v, want %v", got, want)
	}
	if got := NewIndexer("").Sections(); len(got) != len([]rune(DefaultAlphabet)) {
		t.Fatalf("default Sections = %d buckets, want %d", len(got), len([]rune(DefaultAlphabet)))
	}
}

func TestIndexer_PositionForSection(t *testing.T) {
	x := NewIndexer("ABCDE")
	x.SetSortKeys([]string{"ALICE", "ANNA", "BOB", "ÉLODIE", "EVE"})

	tests := []struct {
		section int
		want    int
	}{
		{0, 0}, // A
		{1, 2}, // B
		{2, 3}, // C empty, falls through to E
		{3, 3}, // D empty
		{4, 3}, // E, diacritics ignored
		{-1, 0},
		{99, 3},
	}
	for _, tt := range tests {
		if got := x.PositionForSection(tt.section); got != tt.want {
			t.Fatalf("PositionForSection(%d) = %d, want %d", tt.section, got, tt.want)
		}
	}
}

func TestIndexer_SectionForPosition(t *testing.T) {
	x := NewIndexer("ABCDE")
	x.SetSortKeys([]string{"ALICE", "ANNA", "BOB", "ÉLODIE", "EVE"})

	want := []int{0, 0, 1, 4, 4}
	for p, w := range want {
		if got := x.SectionForPosition(p); got != w {
			t.Fatalf("SectionForPosition(%d) = %d, want %d", p, got, w)
		}
	}
	if got := x.SectionForPosition(-5); got != 0 {
		t.Fatalf("SectionForPosition(-5) = %d, want 0", got)
	}
	if got := x.SectionForPosition(100); got != 4 {
		t.Fatalf("SectionForPosition(100) = %d, want 4", got)
	}
}

func TestIndexer_InverseProperty(t *testing.T) {
	x := NewIndexer(DefaultAlphabet)
	keys := []string{"42 CLUB", "ADA", "ADAM", "CARLA", "CARLOS", "MIA", "ZED"}
	x.SetSortKeys(keys)

	nonEmpty := map[string]bool{" ": true, "A": true, "C": true, "M": true, "Z": true}
	for s, label := range x.Sections() {
		pos := x.PositionForSection(s)
		back := x.SectionForPosition(pos)
		if nonEmpty[label] && back != s {
			t.Fatalf("section %q: SectionForPosition(PositionForSection) = %d, want %d", label, back, s)
		}
		if !nonEmpty[label] && pos < x.Len() && back <= s {
			t.Fatalf("empty section %q: round trip = %d, want a later non-empty section", label, back)
		}
		if pos < x.Len() {
			if first := x.PositionForSection(back); first != pos {
				t.Fatalf("section %q: position %d not the first row of section %d (%d)", label, pos, back, first)
			}
		}
	}
}

func TestIndexer_EmptyAndRebuild(t *testing.T) {
	x := NewIndexer("AB")
	x.SetSortKeys(nil)
	if x.PositionForSection(1) != 0 || x.SectionForPosition(0) != 0 {
		t.Fatalf("empty indexer lookups should return 0")
	}
	x.SetSortKeys([]string{"BEA"})
	if got := x.PositionForSection(0); got != 0 {
		t.Fatalf("PositionForSection(A) = %d, want 0", got)
	}
	if got := x.SectionForPosition(0); got != 1 {
		t.Fatalf("SectionForPosition(0) = %d, want 1 (B)", got)
	}
}

func TestIndexer_SectionForLetter(t *testing.T) {
	x := NewIndexer("ABC")
	if got := x.SectionForLetter("b"); got != 1 {
		t.Fatalf("SectionForLetter(b) = %d, want 1", got)
	}
	if got := x.SectionForLetter("z"); got != -1 {
		t.Fatalf("SectionForLetter(z) = %d, want -1", got)
	}
}

func TestIndexer_PositionsStayOrderedOnUnsortedKeys(t *testing.T) {
	x := NewIndexer("ABLZ")
	// Byte order puts Ł after Z.
	x.SetSortKeys([]string{"ADAM", "ZED", "ŁUCJA"})

	for s, want := range []int{0, 1, 1, 1} {
		if got := x.PositionForSection(s); got != want {
			t.Fatalf("PositionForSection(%d) = %d, want %d", s, got, want)
		}
	}
	for p, want := range []int{0, 3, 3} {
		if got := x.SectionForPosition(p); got != want {
			t.Fatalf("SectionForPosition(%d) = %d, want %d", p, got, want)
		}
	}
}

func TestIndexer_StrokedLettersFileUnderBaseLetter(t *testing.T) {
	x := NewIndexer("ALOZ")
	x.SetSortKeys([]string{"ADAM", "LARS", "ŁUKASZ", "ØRJAN", "OSCAR", "ZED"})

	for p, want := range []string{"A", "L", "L", "O", "O", "Z"} {
		if got := x.Sections()[x.SectionForPosition(p)]; got != want {
			t.Fatalf("SectionForPosition(%d) = %q, want %q", p, got, want)
		}
	}
}
