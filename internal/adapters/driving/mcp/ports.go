package mcp

import (
	"context"

	"github.com/recordhub/recordhub-cli/internal/core/domain"
	"github.com/recordhub/recordhub-cli/internal/core/ports/driving"
)

// JournalReader lists persisted change journal events.
type JournalReader interface {
	ListEvents(ctx context.Context, sourceID string, limit int) ([]domain.ChangeEvent, error)
}

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Sync runs and reports on synchronisation.
	Sync driving.SyncService

	// Source manages source configurations.
	Source driving.SourceService

	// Journal reads persisted change events.
	Journal JournalReader
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Sync == nil {
		return ErrMissingSyncService
	}
	// Source and Journal are optional
	return nil
}
