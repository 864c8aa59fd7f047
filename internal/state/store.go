package state

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/five82/rolodex/internal/contacts"
)

// Snapshot is the latest query result available to the list.
type Snapshot struct {
	Term                string
	Records             []contacts.Record
	Version             uint64 // bumped whenever Term or Records change
	LastUpdated         time.Time
	LastError           error
	ConsecutiveFailures int // Number of consecutive failed queries
}

// IsDegraded returns true when queries have failed repeatedly.
func (s Snapshot) IsDegraded() bool {
	return s.ConsecutiveFailures >= 2
}

// Store coordinates concurrent updates to the snapshot.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
}

// Update records the result of querying term. When err is non-nil and term
// is the one already stored, the previous records are kept and only the
// error is recorded. A failed query for a new term stores an empty result
// so the list never shows rows for a term that is no longer active.
func (s *Store) Update(term string, records []contacts.Record, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot.LastUpdated = time.Now()
	if err != nil {
		s.snapshot.LastError = err
		s.snapshot.ConsecutiveFailures++
		if term == s.snapshot.Term && s.snapshot.Version > 0 {
			return
		}
		records = nil
	} else {
		s.snapshot.LastError = nil
		s.snapshot.ConsecutiveFailures = 0
	}

	if s.snapshot.Version > 0 && term == s.snapshot.Term && slices.Equal(records, s.snapshot.Records) {
		return
	}
	s.snapshot.Term = term
	s.snapshot.Records = cloneRecords(records)
	s.snapshot.Version++
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	snap.Records = cloneRecords(s.snapshot.Records)
	if s.snapshot.LastError != nil {
		snap.LastError = fmt.Errorf("%w", s.snapshot.LastError)
	}
	return snap
}

// Version returns the current version without copying records.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot.Version
}

func cloneRecords(records []contacts.Record) []contacts.Record {
	if len(records) == 0 {
		return []contacts.Record{}
	}
	dup := make([]contacts.Record, len(records))
	copy(dup, records)
	return dup
}
