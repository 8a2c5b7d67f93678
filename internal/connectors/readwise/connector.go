package readwise

import (
	"context"
	"strings"
	"time"

	"github.com/recordhub/recordhub-cli/internal/core/domain"
	"github.com/recordhub/recordhub-cli/internal/core/ports/driven"
)

// ConnectorType identifies this connector in the registry.
const ConnectorType = "readwise"

// Ensure Connector implements the interface.
var _ driven.SourceConnector = (*Connector)(nil)

// RSS feed items are too noisy to mirror; excluded unless the source
// configures its own category list.
var defaultExcludedCategories = []string{"rss"}

// Connector syncs Readwise Reader documents and highlights.
type Connector struct {
	sourceID   string
	sourceName string
	excluded   map[string]bool
	client     *Client
}

// New creates a Readwise connector for the given source.
// The optional "base_url" config key overrides the API endpoint.
func New(source domain.Source) *Connector {
	categories := source.ExcludeCategories
	if len(categories) == 0 {
		categories = defaultExcludedCategories
	}
	excluded := make(map[string]bool, len(categories))
	for _, c := range categories {
		excluded[strings.ToLower(c)] = true
	}

	return &Connector{
		sourceID:   source.ID,
		sourceName: source.Name,
		excluded:   excluded,
		client:     NewClient(source.Token, source.Config["base_url"]),
	}
}

// Builder adapts New to the connector factory.
func Builder(source domain.Source) (driven.SourceConnector, error) {
	return New(source), nil
}

// Type returns the connector type identifier.
func (c *Connector) Type() string {
	return ConnectorType
}

// SourceID returns the source identifier.
func (c *Connector) SourceID() string {
	return c.sourceID
}

// Fetch returns all Reader items updated since the watermark.
func (c *Connector) Fetch(ctx context.Context, since *time.Time) ([]domain.RawItem, error) {
	return c.client.FetchAll(ctx, since)
}

// Rules excludes configured categories and drops documents without
// highlights; a document with nothing highlighted has no content worth a
// record.
func (c *Connector) Rules() domain.SourceRules {
	return domain.SourceRules{
		RequireChildren: true,
		Exclude: func(parent domain.RawItem) bool {
			return c.excluded[strings.ToLower(parent.Category)]
		},
	}
}

// Normalize maps a Reader document onto record fields. No updated_at
// marker is set: a Reader document only meaningfully changes when it
// gains highlights, so the child count alone drives updates.
func (c *Connector) Normalize(parent domain.RawItem, childCount int) domain.RecordFields {
	title := parent.Title
	if title == "" {
		title = "Untitled"
	}
	return domain.RecordFields{
		ExternalID: domain.ExternalID(c.sourceName, parent.ID),
		Title:      title,
		Source:     c.sourceName,
		Author:     parent.Author,
		URL:        parent.URL,
		Category:   parent.Category,
		ChildCount: childCount,
		CapturedAt: parent.CreatedAt,
	}
}

// RenderContent renders the document summary followed by its highlights.
// Highlights are blockquoted in API order; a highlight's note follows it as
// a bold annotation. Returns empty when there is nothing to render.
func (c *Connector) RenderContent(parent domain.RawItem, children []domain.RawItem) string {
	var parts []string

	if parent.Summary != "" {
		parts = append(parts, "## Summary\n", parent.Summary, "")
	}

	if len(children) > 0 {
		parts = append(parts, "## Highlights\n")
		for _, child := range children {
			parts = append(parts, blockquote(child.Body))
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

func blockquote(text string) string {
	if text == "" {
		return ""
	}
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = "> " + line
	}
	return strings.Join(lines, "\n")
}
