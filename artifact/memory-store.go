package artifact

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/relloyd/country-metrics/stream"
)

// MemoryStore keeps artifacts in process memory; used by serve mode without a filesystem and by tests.
type MemoryStore struct {
	mu     sync.Mutex
	tables map[string]stream.Table
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tables: make(map[string]stream.Table)}
}

func (s *MemoryStore) Write(_ context.Context, location string, t stream.Table) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables[location] = copyTable(t)
	return nil
}

func (s *MemoryStore) Read(_ context.Context, location string) (stream.Table, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tables[location]
	if !ok {
		return stream.Table{}, errors.Wrapf(ErrArtifactNotFound, "memory %q", location)
	}
	return copyTable(t), nil
}

func (s *MemoryStore) Delete(_ context.Context, location string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tables[location]; !ok {
		return errors.Wrapf(ErrArtifactNotFound, "memory %q", location)
	}
	delete(s.tables, location)
	return nil
}

func (s *MemoryStore) String() string {
	return "memory"
}

// copyTable stops callers mutating stored rows.
func copyTable(t stream.Table) stream.Table {
	c := stream.NewTable(t.Header)
	for _, row := range t.Rows {
		c.AppendRow(append([]string(nil), row...))
	}
	return c
}
