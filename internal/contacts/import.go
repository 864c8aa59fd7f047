package contacts

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// Entry is one contact in an import document.
type Entry struct {
	LookupKey    string `yaml:"lookup_key"`
	Name         string `yaml:"name"`
	Photo        string `yaml:"photo"`
	SortKey      string `yaml:"sort_key"`
	Hidden       bool   `yaml:"hidden"`
	Phone        string `yaml:"phone"`
	Email        string `yaml:"email"`
	Organization string `yaml:"organization"`
	Note         string `yaml:"note"`
}

type importDoc struct {
	Contacts []Entry `yaml:"contacts"`
}

// Import reads a YAML document of the form
//
//	contacts:
//	  - name: Alice Adams
//	    photo: ~/photos/alice.png
//
// and upserts every entry into store. Entries without a lookup key get one
// derived from the name. It returns the number of entries written.
func Import(ctx context.Context, store *Store, r io.Reader) (int, error) {
	var doc importDoc
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return 0, nil
		}
		return 0, fmt.Errorf("parse contacts: %w", err)
	}

	entries := make([]Entry, 0, len(doc.Contacts))
	seen := make(map[string]int, len(doc.Contacts))
	for i, e := range doc.Contacts {
		e.Name = strings.TrimSpace(e.Name)
		e.LookupKey = strings.TrimSpace(e.LookupKey)
		if e.LookupKey == "" {
			e.LookupKey = deriveLookupKey(e.Name)
		}
		if e.LookupKey == "" {
			return 0, fmt.Errorf("contact %d: name or lookup_key required", i+1)
		}
		if prev, ok := seen[e.LookupKey]; ok {
			return 0, fmt.Errorf("contact %d: duplicate lookup_key %q (first at %d)", i+1, e.LookupKey, prev)
		}
		seen[e.LookupKey] = i + 1
		entries = append(entries, e)
	}

	if err := store.Upsert(ctx, entries); err != nil {
		return 0, err
	}
	return len(entries), nil
}

func deriveLookupKey(name string) string {
	key := strings.ToLower(SortKey(name))
	return strings.Join(strings.Fields(key), "-")
}
