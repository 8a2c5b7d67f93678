package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/recordhub/recordhub-cli/internal/core/domain"
	"github.com/recordhub/recordhub-cli/internal/core/ports/driven"
)

// Ensure ContentSink implements the interface.
var _ driven.ContentSink = (*ContentSink)(nil)

// ContentSink is an in-memory implementation of driven.ContentSink.
// It keeps the latest content block per record GUID.
type ContentSink struct {
	mu     sync.RWMutex
	blocks map[string]string
}

// NewContentSink creates a new in-memory content sink.
func NewContentSink() *ContentSink {
	return &ContentSink{
		blocks: make(map[string]string),
	}
}

// InsertContent writes first-time content for a record.
func (s *ContentSink) InsertContent(_ context.Context, block string, recordGUID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.blocks[recordGUID]; ok {
		return fmt.Errorf("record %s: %w", recordGUID, domain.ErrAlreadyExists)
	}
	s.blocks[recordGUID] = block
	return nil
}

// ReplaceContent swaps a record's content for the new block.
func (s *ContentSink) ReplaceContent(_ context.Context, block string, recordGUID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blocks[recordGUID] = block
	return nil
}

// Content returns the stored block for a record and whether one exists.
func (s *ContentSink) Content(recordGUID string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	block, ok := s.blocks[recordGUID]
	return block, ok
}

// Len returns the number of records with content.
func (s *ContentSink) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blocks)
}
