package tracker

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/recordhub/recordhub-cli/internal/core/domain"
	"github.com/recordhub/recordhub-cli/internal/core/ports/driven"
)

// ConnectorType identifies this connector in the registry.
const ConnectorType = "tracker"

// Ensure Connector implements the interface.
var _ driven.SourceConnector = (*Connector)(nil)

// Connector syncs issues and their comments from one repository.
type Connector struct {
	sourceID   string
	sourceName string
	excluded   map[string]bool
	client     *Client
}

// New creates a tracker connector. The source config must carry "owner"
// and "repo"; the optional "base_url" key overrides the API endpoint.
func New(source domain.Source) (*Connector, error) {
	owner := source.Config["owner"]
	repo := source.Config["repo"]
	if owner == "" || repo == "" {
		return nil, fmt.Errorf("%w: tracker source needs owner and repo", domain.ErrInvalidInput)
	}

	client, err := NewClient(source.Token, owner, repo, source.Config["base_url"])
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

// Fetch returns the issues updated since the watermark with their comments.
func (c *Connector) Fetch(ctx context.Context, since *time.Time) ([]domain.RawItem, error) {
	return c.client.FetchAll(ctx, since)
}

// Rules excludes configured categories. Issues without comments still make
// records; the issue body alone is worth mirroring.
func (c *Connector) Rules() domain.SourceRules {
	return domain.SourceRules{
		RequireChildren: false,
		Exclude: func(parent domain.RawItem) bool {
			return c.excluded[strings.ToLower(parent.Category)]
		},
	}
}

// Normalize maps an issue onto record fields. The issue's open/closed
// state and its updated_at timestamp are mirrored so a state transition
// or edit shows up as an update even when no comment was added.
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
		State:      parent.Extra["state"],
		ChildCount: childCount,
		CapturedAt: parent.CreatedAt,
		UpdatedAt:  domain.ChangeMarker(parent.UpdatedAt),
	}
}

// RenderContent renders the issue body followed by its comments,
// blockquoted in listing order with the commenter named under each quote.
func (c *Connector) RenderContent(parent domain.RawItem, children []domain.RawItem) string {
	var parts []string

	if parent.Summary != "" {
		parts = append(parts, "## Description\n", parent.Summary, "")
	}

	if len(children) > 0 {
		parts = append(parts, "## Comments\n")
		for _, child := range children {
			parts = append(parts, blockquote(child.Body))
			if child.Author != "" {
				parts = append(parts, "", "**Note:** comment by "+child.Author)
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
