package contacts

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// URI identifies a contact the way the detail presenter addresses it.
type URI string

const lookupURIPrefix = "content://contacts/lookup/"

// Record is an immutable snapshot of one contacts row. A fresh slice of
// records is materialized for every query; nothing holds a cursor into the
// store while rows are being bound.
type Record struct {
	ID          int64
	LookupKey   string
	DisplayName string
	PhotoRef    string
	SortKey     string
}

// URI returns the lookup URI for the record. The lookup key survives row
// id changes in the store, the id speeds up the lookup.
func (r Record) URI() URI {
	return URI(fmt.Sprintf("%s%s/%d", lookupURIPrefix, url.PathEscape(r.LookupKey), r.ID))
}

// ParseURI splits a lookup URI back into its lookup key and id.
func ParseURI(u URI) (lookupKey string, id int64, err error) {
	rest, ok := strings.CutPrefix(string(u), lookupURIPrefix)
	if !ok {
		return "", 0, fmt.Errorf("not a contact uri: %q", u)
	}
	slash := strings.LastIndex(rest, "/")
	if slash <= 0 {
		return "", 0, fmt.Errorf("contact uri %q missing id", u)
	}
	key, err := url.PathUnescape(rest[:slash])
	if err != nil {
		return "", 0, fmt.Errorf("contact uri %q: %w", u, err)
	}
	id, err = strconv.ParseInt(rest[slash+1:], 10, 64)
	if err != nil {
		return "", 0, fmt.Errorf("contact uri %q: bad id: %w", u, err)
	}
	return key, id, nil
}

// Detail carries the fields shown in the detail pane.
type Detail struct {
	Record
	Phone        string
	Email        string
	Organization string
	Note         string
}

// SortKey derives the sort key stored alongside a display name: diacritics
// are stripped and letters upper-cased so "Élodie" files under E.
func SortKey(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, strings.TrimSpace(name))
	if err != nil {
		folded = strings.TrimSpace(name)
	}
	return strings.ToUpper(folded)
}
