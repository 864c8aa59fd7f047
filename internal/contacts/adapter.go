package contacts

import (
	"context"
	"log/slog"
)

// Source is the queryable provider behind an Adapter. *Store implements it.
type Source interface {
	Query(ctx context.Context, term string) ([]Record, error)
	Lookup(ctx context.Context, id int64) (Detail, error)
}

// Adapter exposes a Source as a stable record sequence. A failed query is
// not fatal: it is logged and degrades to an empty result.
type Adapter struct {
	source Source
	logger *slog.Logger
}

// NewAdapter wraps source. A nil logger discards output.
func NewAdapter(source Source, logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Adapter{source: source, logger: logger}
}

// Query returns the records for term. The returned slice is never nil. When
// the provider fails the slice is empty and err carries the cause for
// status reporting only; callers must not treat it as fatal.
func (a *Adapter) Query(ctx context.Context, term string) (records []Record, err error) {
	records, err = a.source.Query(ctx, term)
	if err != nil {
		a.logger.Warn("contacts query failed", "term", term, "error", err)
		return []Record{}, err
	}
	if records == nil {
		records = []Record{}
	}
	return records, nil
}

// Lookup returns the detail fields for id.
func (a *Adapter) Lookup(ctx context.Context, id int64) (Detail, error) {
	detail, err := a.source.Lookup(ctx, id)
	if err != nil {
		a.logger.Debug("contacts lookup failed", "id", id, "error", err)
		return Detail{}, err
	}
	return detail, nil
}
