package mcp

import (
	"context"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recordhub/recordhub-cli/internal/core/domain"
)

func readRequest(uri string) *mcp.ReadResourceRequest {
	return &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{URI: uri},
	}
}

func TestServer_handleSourcesResource(t *testing.T) {
	ctx := context.Background()

	t.Run("lists sources as JSON", func(t *testing.T) {
		mockSources := &mockSourceService{
			sources: []domain.Source{
				{ID: "src-1", Type: "readwise", Name: "Readwise", Collection: "Highlights"},
			},
		}
		server, err := NewServer(&Ports{Sync: &mockSyncService{}, Source: mockSources})
		require.NoError(t, err)

		result, err := server.handleSourcesResource(ctx, readRequest(uriScheme+"sources"))

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Contains(t, result.Contents[0].Text, "src-1")
		assert.Contains(t, result.Contents[0].Text, "Highlights")
	})

	t.Run("nil source service yields empty array", func(t *testing.T) {
		server, err := NewServer(&Ports{Sync: &mockSyncService{}})
		require.NoError(t, err)

		result, err := server.handleSourcesResource(ctx, readRequest(uriScheme+"sources"))

		require.NoError(t, err)
		assert.Equal(t, "[]", result.Contents[0].Text)
	})
}

func TestServer_handleJournalResource(t *testing.T) {
	ctx := context.Background()

	journal := &mockJournalReader{events: []domain.ChangeEvent{
		{Verb: domain.VerbCreated, Title: "Book A", Major: true, Excerpts: []string{"first"}},
	}}
	server, err := NewServer(&Ports{Sync: &mockSyncService{}, Journal: journal})
	require.NoError(t, err)

	result, err := server.handleJournalResource(ctx, readRequest(uriScheme+"sources/src-1/journal"))

	require.NoError(t, err)
	require.Len(t, result.Contents, 1)
	assert.Contains(t, result.Contents[0].Text, "Book A")
	assert.Contains(t, result.Contents[0].Text, "created")
}

func TestExtractSourceID(t *testing.T) {
	tests := []struct {
		uri  string
		want string
	}{
		{uriScheme + "sources/src-1/journal", "src-1"},
		{uriScheme + "sources/src-1/other", ""},
		{uriScheme + "sources//journal", ""},
		{uriScheme + "sources/a/b/journal", ""},
		{"http://example.com/sources/src-1/journal", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, extractSourceID(tt.uri), tt.uri)
	}
}
