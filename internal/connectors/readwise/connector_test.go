package readwise

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recordhub/recordhub-cli/internal/core/domain"
)

func newTestConnector() *Connector {
	return New(domain.Source{
		ID:         "src-1",
		Type:       "readwise",
		Name:       "Readwise",
		Collection: "Captures",
		Token:      "secret",
	})
}

func TestConnector_Rules(t *testing.T) {
	rules := newTestConnector().Rules()

	assert.True(t, rules.RequireChildren)
	assert.True(t, rules.Excluded(domain.RawItem{ID: "feed-1", Category: "rss"}))
	assert.True(t, rules.Excluded(domain.RawItem{ID: "feed-2", Category: "RSS"}))
	assert.False(t, rules.Excluded(domain.RawItem{ID: "doc-1", Category: "article"}))
}

func TestConnector_Rules_CustomExclusions(t *testing.T) {
	conn := New(domain.Source{
		ID:                "src-1",
		Name:              "Readwise",
		Token:             "secret",
		ExcludeCategories: []string{"tweet"},
	})
	rules := conn.Rules()

	assert.True(t, rules.Excluded(domain.RawItem{Category: "tweet"}))
	// The default rss exclusion is replaced, not extended.
	assert.False(t, rules.Excluded(domain.RawItem{Category: "rss"}))
}

func TestConnector_Normalize(t *testing.T) {
	captured := time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC)
	parent := domain.RawItem{
		ID:        "doc-1",
		Title:     "A Long Read",
		Author:    "Someone",
		URL:       "https://example.com/read",
		Category:  "article",
		CreatedAt: captured,
	}

	fields := newTestConnector().Normalize(parent, 3)

	assert.Equal(t, "Readwise:doc-1", fields.ExternalID)
	assert.Equal(t, "A Long Read", fields.Title)
	assert.Equal(t, "Readwise", fields.Source)
	assert.Equal(t, "Someone", fields.Author)
	assert.Equal(t, 3, fields.ChildCount)
	assert.Equal(t, captured, fields.CapturedAt)
	assert.Empty(t, fields.UpdatedAt)
}

func TestConnector_Normalize_UntitledFallback(t *testing.T) {
	fields := newTestConnector().Normalize(domain.RawItem{ID: "doc-1"}, 0)
	assert.Equal(t, "Untitled", fields.Title)
}

func TestConnector_RenderContent(t *testing.T) {
	parent := domain.RawItem{ID: "doc-1", Summary: "What the piece says."}
	children := []domain.RawItem{
		{ID: "h-1", ParentID: "doc-1", Body: "first line\nsecond line"},
		{ID: "h-2", ParentID: "doc-1", Body: "plain highlight", Note: "my thought"},
	}

	content := newTestConnector().RenderContent(parent, children)

	expected := "## Summary\n" +
		"\n" +
		"What the piece says.\n" +
		"\n" +
		"## Highlights\n" +
		"\n" +
		"> first line\n" +
		"> second line\n" +
		"\n" +
		"> plain highlight\n" +
		"\n" +
		"**Note:** my thought\n"
	assert.Equal(t, expected, content)
}

func TestConnector_RenderContent_NoSummary(t *testing.T) {
	children := []domain.RawItem{{ID: "h-1", ParentID: "doc-1", Body: "only highlight"}}

	content := newTestConnector().RenderContent(domain.RawItem{ID: "doc-1"}, children)

	assert.Equal(t, "## Highlights\n\n> only highlight\n", content)
}

func TestConnector_RenderContent_Empty(t *testing.T) {
	assert.Empty(t, newTestConnector().RenderContent(domain.RawItem{ID: "doc-1"}, nil))
}

func TestConnector_RenderContent_Deterministic(t *testing.T) {
	parent := domain.RawItem{ID: "doc-1", Summary: "s"}
	children := []domain.RawItem{
		{ID: "h-1", ParentID: "doc-1", Body: "a"},
		{ID: "h-2", ParentID: "doc-1", Body: "b"},
	}

	conn := newTestConnector()
	first := conn.RenderContent(parent, children)
	second := conn.RenderContent(parent, children)
	require.Equal(t, first, second)
}
