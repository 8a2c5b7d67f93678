package memory

import (
	"context"
	"sync"

	"github.com/recordhub/recordhub-cli/internal/core/domain"
	"github.com/recordhub/recordhub-cli/internal/core/ports/driven"
)

// Ensure CursorStore implements the interface.
var _ driven.CursorStore = (*CursorStore)(nil)

// CursorStore is an in-memory implementation of driven.CursorStore.
type CursorStore struct {
	mu      sync.RWMutex
	cursors map[string]domain.Cursor
}

// NewCursorStore creates a new in-memory cursor store.
func NewCursorStore() *CursorStore {
	return &CursorStore{
		cursors: make(map[string]domain.Cursor),
	}
}

// Save stores or updates a cursor.
func (s *CursorStore) Save(_ context.Context, cursor domain.Cursor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cursors[cursor.SourceID] = cursor
	return nil
}

// Get retrieves the cursor for a source.
func (s *CursorStore) Get(_ context.Context, sourceID string) (*domain.Cursor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cursor, ok := s.cursors[sourceID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &cursor, nil
}

// Delete removes the cursor for a source.
func (s *CursorStore) Delete(_ context.Context, sourceID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.cursors, sourceID)
	return nil
}
