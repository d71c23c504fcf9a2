package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/user/tootube/internal/model"
)

// DocumentBackend persists one whole JSON document as an opaque byte blob.
// Load returns (nil, nil) when no document has been written yet.
type DocumentBackend interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, doc []byte) error
	Ping(ctx context.Context) error
	Close() error
}

// Store owns the four collections as one consistency unit. Every read and
// every load→mutate→save cycle runs under a single mutex, so no operation
// ever observes a partially applied mutation from another — the whole-document
// read-modify-write pattern is a lost-update race without this serialization
// point.
type Store struct {
	mu      sync.Mutex
	backend DocumentBackend
}

// New creates a store over the given document backend.
func New(backend DocumentBackend) *Store {
	return &Store{backend: backend}
}

// load decodes the current snapshot. A missing, unreadable or corrupt
// document yields the empty snapshot rather than an error.
func (s *Store) load(ctx context.Context) *model.Snapshot {
	raw, err := s.backend.Load(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Snapshot unreadable, starting from empty")
		return model.NewSnapshot()
	}
	if len(raw) == 0 {
		return model.NewSnapshot()
	}
	snap := model.NewSnapshot()
	if err := json.Unmarshal(raw, snap); err != nil {
		log.Warn().Err(err).Msg("Snapshot corrupt, starting from empty")
		return model.NewSnapshot()
	}
	return snap
}

// View runs fn against the current snapshot without persisting anything.
// The snapshot is freshly decoded and private to fn.
func (s *Store) View(ctx context.Context, fn func(*model.Snapshot) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.load(ctx))
}

// Update runs one load→mutate→save cycle. fn mutates the snapshot in place;
// if it returns an error nothing is persisted. A failed save leaves the
// previously persisted document intact and is returned to the caller.
func (s *Store) Update(ctx context.Context, fn func(*model.Snapshot) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.load(ctx)
	if err := fn(snap); err != nil {
		return err
	}
	raw, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if err := s.backend.Save(ctx, raw); err != nil {
		return fmt.Errorf("failed to persist snapshot: %w", err)
	}
	return nil
}

// Ping checks backend connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.backend.Ping(ctx)
}

// Close releases the backend.
func (s *Store) Close() error {
	return s.backend.Close()
}
