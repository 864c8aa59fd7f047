package listbind

import (
	"sort"
	"unicode/utf8"

	"golang.org/x/text/collate"

	"github.com/five82/rolodex/internal/contacts"
)

// DefaultAlphabet is the bucket list used when none is configured. The
// leading space collects names that start with digits or punctuation.
const DefaultAlphabet = " ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// Indexer maps alphabet buckets to row positions in a sorted sequence.
// Letters compare with case and diacritics ignored. The table is rebuilt
// by SetSortKeys; lookups are binary searches over it. An Indexer is not
// safe for concurrent use.
type Indexer struct {
	collator  *collate.Collator
	sections  []string
	positions []int
	count     int
}

// NewIndexer builds an indexer over alphabet. Each rune is one bucket;
// duplicates are dropped and buckets are put in collation order.
func NewIndexer(alphabet string) *Indexer {
	if alphabet == "" {
		alphabet = DefaultAlphabet
	}
	c := contacts.NewCollator()

	seen := make(map[string]bool)
	var sections []string
	for _, r := range alphabet {
		s := string(r)
		if seen[s] {
			continue
		}
		seen[s] = true
		sections = append(sections, s)
	}
	c.SortStrings(sections)

	return &Indexer{
		collator:  c,
		sections:  sections,
		positions: make([]int, len(sections)),
	}
}

// Sections returns the bucket labels in order.
func (x *Indexer) Sections() []string {
	return append([]string(nil), x.sections...)
}

// SetSortKeys rebuilds the table from the sort keys of the current rows,
// which must already be in contacts.SortCollation order. Each row is filed
// under its bucket in one pass; a row that would file before its
// predecessor's bucket stays in the predecessor's bucket so positions are
// always nondecreasing.
func (x *Indexer) SetSortKeys(keys []string) {
	x.count = len(keys)
	buckets := make([]int, len(keys))
	cur := 0
	for i, k := range keys {
		cur = max(cur, x.bucketOf(k))
		buckets[i] = cur
	}
	for s := range x.sections {
		x.positions[s] = sort.SearchInts(buckets, s)
	}
}

// bucketOf returns the last section whose label collates at or before the
// first rune of key. Keys that sort before every label go in section 0.
func (x *Indexer) bucketOf(key string) int {
	r, size := utf8.DecodeRuneInString(key)
	if size == 0 || r == utf8.RuneError {
		return 0
	}
	first := string(r)
	n := sort.Search(len(x.sections), func(i int) bool {
		return x.collator.CompareString(x.sections[i], first) > 0
	})
	return max(0, n-1)
}

// Len returns the number of rows indexed.
func (x *Indexer) Len() int { return x.count }

// PositionForSection returns the first row whose sort key starts in or
// after bucket s. Empty buckets fall through to the next non-empty one;
// buckets past the last row return Len().
func (x *Indexer) PositionForSection(s int) int {
	if len(x.sections) == 0 {
		return 0
	}
	s = max(0, min(s, len(x.sections)-1))
	return x.positions[s]
}

// SectionForPosition returns the bucket containing row p: the last bucket
// whose first row is at or before p.
func (x *Indexer) SectionForPosition(p int) int {
	if len(x.sections) == 0 || x.count == 0 {
		return 0
	}
	p = max(0, min(p, x.count-1))
	s := sort.Search(len(x.positions), func(i int) bool {
		return x.positions[i] > p
	})
	return max(0, s-1)
}

// SectionForLetter returns the bucket index whose label collates equal to
// letter, or -1.
func (x *Indexer) SectionForLetter(letter string) int {
	for i, s := range x.sections {
		if x.collator.CompareString(s, letter) == 0 {
			return i
		}
	}
	return -1
}
