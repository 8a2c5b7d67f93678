package driving

import (
	"context"

	"github.com/recordhub/recordhub-cli/internal/core/domain"
)

// SourceService manages source configurations.
type SourceService interface {
	// Add validates and stores a new source, returning its generated ID.
	Add(ctx context.Context, source domain.Source) (string, error)

	// Get retrieves a source by ID.
	Get(ctx context.Context, id string) (*domain.Source, error)

	// List returns all configured sources.
	List(ctx context.Context) ([]domain.Source, error)

	// Remove deletes a source and its cursor.
	Remove(ctx context.Context, id string) error
}
