package contacts

import (
	"context"
	"strings"
	"time"

	"github.com/recordhub/recordhub-cli/internal/core/domain"
	"github.com/recordhub/recordhub-cli/internal/core/ports/driven"
)

// ConnectorType identifies this connector in the registry.
const ConnectorType = "contacts"

// Ensure Connector implements the interface.
var _ driven.SourceConnector = (*Connector)(nil)

// Connector syncs Google contacts.
type Connector struct {
	sourceID   string
	sourceName string
	excluded   map[string]bool
	client     *Client
}

// New creates a contacts connector for the given source.
// The optional "base_url" config key overrides the API endpoint.
func New(source domain.Source) (*Connector, error) {
	client, err := NewClient(context.Background(), source.Token, source.Config["base_url"])
	if err != nil {
		return nil, err
	}

	excluded := make(map[string]bool, len(source.ExcludeCategories))
	for _, c := range source.ExcludeCategories {
		excluded[strings.ToLower(c)] = true
	}

	return &Connector{
		sourceID:   source.ID,
		sourceName: source.Name,
		excluded:   excluded,
		client:     client,
	}, nil
}

// Builder adapts New to the connector factory.
func Builder(source domain.Source) (driven.SourceConnector, error) {
	return New(source)
}

// Type returns the connector type identifier.
func (c *Connector) Type() string {
	return ConnectorType
}

// SourceID returns the source identifier.
func (c *Connector) SourceID() string {
	return c.sourceID
}

// Fetch returns contacts updated since the watermark with their details.
func (c *Connector) Fetch(ctx context.Context, since *time.Time) ([]domain.RawItem, error) {
	return c.client.FetchAll(ctx, since)
}

// Rules keep contacts without any email or phone entry; the name alone is
// worth mirroring.
func (c *Connector) Rules() domain.SourceRules {
	return domain.SourceRules{
		RequireChildren: false,
		Exclude: func(parent domain.RawItem) bool {
			return c.excluded[strings.ToLower(parent.Category)]
		},
	}
}

// Normalize maps a contact onto record fields. The contact's updated_at
// timestamp is mirrored so a rename or edited detail shows up as an
// update even when the number of entries is unchanged.
func (c *Connector) Normalize(parent domain.RawItem, childCount int) domain.RecordFields {
	title := parent.Title
	if title == "" {
		title = "Unnamed contact"
	}
	return domain.RecordFields{
		ExternalID: domain.ExternalID(c.sourceName, parent.ID),
		Title:      title,
		Source:     c.sourceName,
		Category:   parent.Category,
		ChildCount: childCount,
		CapturedAt: parent.UpdatedAt,
		UpdatedAt:  domain.ChangeMarker(parent.UpdatedAt),
	}
}

// RenderContent renders the contact's organization line followed by its
// email and phone entries, blockquoted with the entry type as annotation.
func (c *Connector) RenderContent(parent domain.RawItem, children []domain.RawItem) string {
	var parts []string

	if parent.Summary != "" {
		parts = append(parts, "## Organization\n", parent.Summary, "")
	}

	if len(children) > 0 {
		parts = append(parts, "## Details\n")
		for _, child := range children {
			parts = append(parts, "> "+child.Body)
			if child.Note != "" {
				parts = append(parts, "", "**Note:** "+child.Note)
			}
			parts = append(parts, "")
		}
	}

	return strings.Join(parts, "\n")
}

// Close releases resources.
func (c *Connector) Close() error {
	return nil
}
