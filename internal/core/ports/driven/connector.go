package driven

import (
	"context"
	"time"

	"github.com/recordhub/recordhub-cli/internal/core/domain"
)

// SourceConnector is the per-source capability set the sync engine is
// parameterized with. Each source type (readwise, tracker, contacts)
// implements this interface; the engine itself stays generic.
type SourceConnector interface {
	// Type returns the connector type identifier.
	Type() string

	// SourceID returns the configured source ID.
	SourceID() string

	// Fetch walks the remote API's page sequence since the given watermark
	// and returns the flat stream of raw items in emission order.
	//
	// Rate-limit responses are retried transparently and never surfaced.
	// Any other API failure returns the items collected so far together
	// with an error wrapping domain.ErrSourceUnavailable; partial results
	// are valid input for reconciliation. A nil since means full backfill.
	// Page order carries no timestamp guarantee.
	Fetch(ctx context.Context, since *time.Time) ([]domain.RawItem, error)

	// Rules returns the source's classification rules (exclusion predicate
	// and the no-content-without-children switch).
	Rules() domain.SourceRules

	// Normalize maps a parent item and its fresh child count onto the
	// record payload written to the local store.
	Normalize(parent domain.RawItem, childCount int) domain.RecordFields

	// RenderContent converts a parent's children into one formatted
	// content block. Returns empty when there is no summary and no
	// children; the caller then skips the content write. Output is
	// deterministic for identical input, children keep emission order.
	RenderContent(parent domain.RawItem, children []domain.RawItem) string

	// Close releases resources.
	Close() error
}

// ConnectorBuilder creates a SourceConnector from a Source.
type ConnectorBuilder func(source domain.Source) (SourceConnector, error)

// ConnectorFactory creates connectors from source configuration.
// It maintains a registry of connector types and their builders.
type ConnectorFactory interface {
	// Create returns a SourceConnector for the given source.
	// Returns domain.ErrUnsupportedType if the source type is unknown.
	Create(ctx context.Context, source domain.Source) (SourceConnector, error)

	// Register adds a connector builder for the given type.
	Register(connectorType string, builder ConnectorBuilder)

	// SupportedTypes returns all registered connector types.
	SupportedTypes() []string
}
