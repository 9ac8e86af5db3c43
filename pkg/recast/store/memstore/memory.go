package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/cognicore/recast/pkg/recast/internalerr"
	"github.com/cognicore/recast/pkg/recast/recipe"
	"github.com/cognicore/recast/pkg/recast/store"
)

// Store is an in-memory implementation of store.Store for tests.
type Store struct {
	mu       sync.RWMutex
	runs     map[string]store.Run
	verdicts map[verdictKey]store.Verdict
}

type verdictKey struct {
	kind string
	term string
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		runs:     make(map[string]store.Run),
		verdicts: make(map[verdictKey]store.Verdict),
	}
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// SaveRun stores a run, replacing any run with the same ID.
func (s *Store) SaveRun(ctx context.Context, r store.Run) error {
	if r.ID == "" {
		return fmt.Errorf("save run: empty id: %w", internalerr.ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[r.ID] = copyRun(r)
	return nil
}

// GetRun returns a run by ID.
func (s *Store) GetRun(ctx context.Context, id string) (store.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.runs[id]
	if !ok {
		return store.Run{}, fmt.Errorf("run %s: %w", id, internalerr.ErrNotFound)
	}
	return copyRun(r), nil
}

// ListRuns returns up to limit runs, newest ID first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]store.Run, error) {
	if limit <= 0 {
		limit = 10
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.runs))
	for id := range s.runs {
		ids = append(ids, id)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(ids)))
	if len(ids) > limit {
		ids = ids[:limit]
	}
	out := make([]store.Run, 0, len(ids))
	for _, id := range ids {
		out = append(out, copyRun(s.runs[id]))
	}
	return out, nil
}

// GetVerdict returns a stored verdict.
func (s *Store) GetVerdict(ctx context.Context, kind, term string) (store.Verdict, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.verdicts[verdictKey{kind, term}]
	return v, ok, nil
}

// PutVerdict stores a verdict.
func (s *Store) PutVerdict(ctx context.Context, v store.Verdict) error {
	if v.UpdatedAt.IsZero() {
		v.UpdatedAt = time.Now()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.verdicts[verdictKey{v.Kind, v.Term}] = v
	return nil
}

// Verdicts returns the number of stored verdicts.
func (s *Store) Verdicts() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.verdicts)
}

func copyRun(r store.Run) store.Run {
	r.Ingredients = append([]string(nil), r.Ingredients...)
	r.Instructions = append([]string(nil), r.Instructions...)
	r.Substitutions = append([]recipe.Substitution(nil), r.Substitutions...)
	r.Notes = append([]string(nil), r.Notes...)
	return r
}
