package contacts

import (
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
	"zombiezen.com/go/sqlite"
)

// SortCollation is the SQLite collation name that orders sort keys the
// same way NewCollator does.
const SortCollation = "rolodex_sort"

// NewCollator returns the collator that defines contact order: case and
// diacritics are ignored, so "Łucja" files between "Lars" and "Lydia".
// A Collator is not safe for concurrent use; each caller needs its own.
func NewCollator() *collate.Collator {
	return collate.New(language.Und, collate.IgnoreCase, collate.IgnoreDiacritics)
}

// registerCollation installs SortCollation on conn. The connection owns its
// collator; SQLite only invokes it from the goroutine using conn.
func registerCollation(conn *sqlite.Conn) error {
	c := NewCollator()
	return conn.SetCollation(SortCollation, func(a, b string) int {
		return c.CompareString(a, b)
	})
}
