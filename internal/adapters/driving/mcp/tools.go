package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/recordhub/recordhub-cli/internal/core/domain"
)

// SyncInput is the input schema for the sync_source tool.
type SyncInput struct {
	SourceID string `json:"source_id" jsonschema:"the ID of the source to synchronise"`
	Full     bool   `json:"full,omitempty" jsonschema:"ignore the stored cursor and fetch everything"`
}

// SyncOutput is the output schema for the sync_source tool.
type SyncOutput struct {
	Created int    `json:"created"`
	Updated int    `json:"updated"`
	Skipped int    `json:"skipped"`
	Summary string `json:"summary"`
}

// StatusInput is the input schema for the sync_status tool.
type StatusInput struct {
	SourceID string `json:"source_id" jsonschema:"the ID of the source to inspect"`
}

// StatusOutput is the output schema for the sync_status tool.
type StatusOutput struct {
	SourceID         string `json:"source_id"`
	Running          bool   `json:"running"`
	Phase            string `json:"phase"`
	ParentsProcessed int    `json:"parents_processed"`
	ErrorCount       int    `json:"error_count"`
	LastSummary      string `json:"last_summary,omitempty"`
}

// ListSourcesInput is the input schema for the list_sources tool.
type ListSourcesInput struct{}

// SourceOutput describes one configured source.
type SourceOutput struct {
	ID         string `json:"id"`
	Type       string `json:"type"`
	Name       string `json:"name"`
	Collection string `json:"collection"`
	Interval   string `json:"interval,omitempty"`
}

// ListSourcesOutput is the output schema for the list_sources tool.
type ListSourcesOutput struct {
	Sources []SourceOutput `json:"sources"`
	Count   int            `json:"count"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "sync_source",
		Description: "Synchronise one source and report what changed",
	}, s.handleSync)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "sync_status",
		Description: "Report the sync status of a source",
	}, s.handleStatus)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_sources",
		Description: "List all configured sources",
	}, s.handleListSources)
}

// handleSync handles the sync_source tool invocation.
func (s *Server) handleSync(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SyncInput,
) (*mcp.CallToolResult, SyncOutput, error) {
	summary, err := s.ports.Sync.Sync(ctx, input.SourceID, domain.SyncOptions{ForceFull: input.Full})
	if err != nil {
		return nil, SyncOutput{}, err
	}

	return nil, SyncOutput{
		Created: summary.Created,
		Updated: summary.Updated,
		Skipped: summary.Skipped,
		Summary: summary.Line(),
	}, nil
}

// handleStatus handles the sync_status tool invocation.
func (s *Server) handleStatus(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input StatusInput,
) (*mcp.CallToolResult, StatusOutput, error) {
	status, err := s.ports.Sync.Status(ctx, input.SourceID)
	if err != nil {
		return nil, StatusOutput{}, err
	}

	return nil, StatusOutput{
		SourceID:         status.SourceID,
		Running:          status.Running,
		Phase:            status.Phase,
		ParentsProcessed: status.ParentsProcessed,
		ErrorCount:       status.ErrorCount,
		LastSummary:      status.LastSummary,
	}, nil
}

// handleListSources handles the list_sources tool invocation.
func (s *Server) handleListSources(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ListSourcesInput,
) (*mcp.CallToolResult, ListSourcesOutput, error) {
	if s.ports.Source == nil {
		return nil, ListSourcesOutput{Sources: []SourceOutput{}}, nil
	}

	sources, err := s.ports.Source.List(ctx)
	if err != nil {
		return nil, ListSourcesOutput{}, err
	}

	output := ListSourcesOutput{
		Sources: make([]SourceOutput, len(sources)),
		Count:   len(sources),
	}
	for i, src := range sources {
		interval := ""
		if src.Interval > 0 {
			interval = src.Interval.String()
		}
		output.Sources[i] = SourceOutput{
			ID:         src.ID,
			Type:       src.Type,
			Name:       src.Name,
			Collection: src.Collection,
			Interval:   interval,
		}
	}

	return nil, output, nil
}
