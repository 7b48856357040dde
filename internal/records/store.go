package records

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

var ErrEmptyID = errors.New("records: record id required")

// API abstracts the remote call-records endpoints the store depends on.
// The concrete implementation lives in internal/upstream.
type API interface {
	ListCalls(ctx context.Context) ([]CallRecord, error)
	CreateCall(ctx context.Context, draft CallRecord, att *Attachment) (CallRecord, error)
	UpdateCall(ctx context.Context, id string, draft CallRecord, att *Attachment) (CallRecord, error)
	DeleteCall(ctx context.Context, id string) error
}

// Store owns the authoritative in-memory collection of persisted records.
//
// The collection is replaced wholesale by FetchAll and mutated only through
// the four verbs below. Overlapping operations are not serialized against
// each other: the later-completing one wins, and callers needing strict
// ordering must sequence their own calls.
type Store struct {
	api API
	log *slog.Logger

	mu   sync.RWMutex
	recs []CallRecord
}

func NewStore(api API, log *slog.Logger) *Store {
	if log == nil {
		log = slog.Default()
	}
	return &Store{api: api, log: log}
}

// FetchAll replaces the collection with the server's current snapshot.
// Safe to call repeatedly; a failed fetch leaves the prior collection
// untouched and reports the error to the caller.
func (s *Store) FetchAll(ctx context.Context) ([]CallRecord, error) {
	recs, err := s.api.ListCalls(ctx)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.recs = recs
	s.mu.Unlock()
	return s.Snapshot(), nil
}

// Snapshot returns a copy of the current collection. Callers may freely
// filter, sort, or hold the slice without affecting the store.
func (s *Store) Snapshot() []CallRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]CallRecord, len(s.recs))
	copy(out, s.recs)
	return out
}

// Len reports the current collection size.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.recs)
}

// Create submits a draft and refetches the collection so server-assigned
// fields (id, normalized values) stay authoritative. A failed refetch after
// a successful create is logged but does not fail the operation; the next
// fetch heals the snapshot.
func (s *Store) Create(ctx context.Context, draft CallRecord, att *Attachment) (CallRecord, error) {
	created, err := s.api.CreateCall(ctx, draft, att)
	if err != nil {
		return CallRecord{}, err
	}
	if _, err := s.FetchAll(ctx); err != nil {
		s.log.Warn("refetch after create failed", "record_id", created.ID, "err", err)
	}
	return created, nil
}

// Update replaces the record with the given id, then refetches.
func (s *Store) Update(ctx context.Context, id string, draft CallRecord, att *Attachment) (CallRecord, error) {
	if id == "" {
		return CallRecord{}, ErrEmptyID
	}
	updated, err := s.api.UpdateCall(ctx, id, draft, att)
	if err != nil {
		return CallRecord{}, err
	}
	if _, err := s.FetchAll(ctx); err != nil {
		s.log.Warn("refetch after update failed", "record_id", id, "err", err)
	}
	return updated, nil
}

// Delete removes the record on the server, then drops it locally by id
// filter. Ids are unique, so at most one row disappears; no refetch needed.
func (s *Store) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrEmptyID
	}
	if err := s.api.DeleteCall(ctx, id); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.recs[:0]
	for _, r := range s.recs {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	s.recs = kept
	return nil
}
