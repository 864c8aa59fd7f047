package listbind

import (
	"unicode"

	"github.com/five82/rolodex/internal/contacts"
)

// Range is a half-open span of rune offsets into a display name.
type Range struct {
	Start int
	End   int
}

// Len returns the number of runes covered.
func (r Range) Len() int { return r.End - r.Start }

// Row is one bound list position.
type Row struct {
	Index  int
	Record contacts.Record

	// Highlight is the first case-insensitive occurrence of the search
	// term in the display name. Only meaningful when HasHighlight is set.
	Highlight    Range
	HasHighlight bool

	// ShowSecondary is true when a term is active but the display name
	// does not contain it, meaning the provider matched on something else.
	ShowSecondary bool
}

// PhotoRef is the key to hand to the image loader.
func (r Row) PhotoRef() string { return r.Record.PhotoRef }

// HighlightRange finds the first case-insensitive occurrence of term in
// name. Offsets are in runes and the length always equals the rune length
// of term.
func HighlightRange(name, term string) (Range, bool) {
	if term == "" {
		return Range{}, false
	}
	hay := foldRunes(name)
	needle := foldRunes(term)
	if len(needle) > len(hay) {
		return Range{}, false
	}
outer:
	for i := 0; i+len(needle) <= len(hay); i++ {
		for j, r := range needle {
			if hay[i+j] != r {
				continue outer
			}
		}
		return Range{Start: i, End: i + len(needle)}, true
	}
	return Range{}, false
}

// foldRunes lower-cases rune by rune so offsets line up with the original.
func foldRunes(s string) []rune {
	rs := []rune(s)
	for i, r := range rs {
		rs[i] = unicode.ToLower(r)
	}
	return rs
}

// Bind maps records to rows for the given search term.
func Bind(records []contacts.Record, term string) []Row {
	rows := make([]Row, len(records))
	for i, rec := range records {
		row := Row{Index: i, Record: rec}
		if term != "" {
			row.Highlight, row.HasHighlight = HighlightRange(rec.DisplayName, term)
			row.ShowSecondary = !row.HasHighlight
		}
		rows[i] = row
	}
	return rows
}
