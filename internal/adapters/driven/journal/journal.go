// Package journal provides JournalSink implementations. The logger sink
// prints a run's change log for interactive use; the memory sink retains
// events for tests and the status surface.
package journal

import (
	"context"
	"sync"

	"github.com/recordhub/recordhub-cli/internal/core/domain"
	"github.com/recordhub/recordhub-cli/internal/core/ports/driven"
	"github.com/recordhub/recordhub-cli/internal/logger"
)

// Ensure the sinks implement the interface.
var (
	_ driven.JournalSink = (*LoggerSink)(nil)
	_ driven.JournalSink = (*MemorySink)(nil)
)

// LoggerSink writes change events through the application logger.
// Major changes log at info, minor ones at debug.
type LoggerSink struct{}

// NewLoggerSink creates a logger-backed journal sink.
func NewLoggerSink() *LoggerSink {
	return &LoggerSink{}
}

// Write logs the run's events in append order.
func (s *LoggerSink) Write(_ context.Context, sourceID string, events []domain.ChangeEvent) error {
	for _, event := range events {
		if event.Major {
			logger.Info("[%s] %s: %s", sourceID, event.Verb, event.Title)
		} else {
			logger.Debug("[%s] %s: %s", sourceID, event.Verb, event.Title)
		}
		for _, excerpt := range event.Excerpts {
			logger.Debug("[%s]   %s", sourceID, excerpt)
		}
	}
	return nil
}

// MemorySink retains every written event, grouped by source.
type MemorySink struct {
	mu     sync.RWMutex
	events map[string][]domain.ChangeEvent
}

// NewMemorySink creates an in-memory journal sink.
func NewMemorySink() *MemorySink {
	return &MemorySink{
		events: make(map[string][]domain.ChangeEvent),
	}
}

// Write appends the run's events for the source.
func (s *MemorySink) Write(_ context.Context, sourceID string, events []domain.ChangeEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[sourceID] = append(s.events[sourceID], events...)
	return nil
}

// Events returns every event written for a source, in write order.
func (s *MemorySink) Events(sourceID string) []domain.ChangeEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.ChangeEvent, len(s.events[sourceID]))
	copy(result, s.events[sourceID])
	return result
}
