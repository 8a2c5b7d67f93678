package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// uriScheme is the custom URI scheme for RecordHub resources.
	uriScheme = "recordhub://"

	// journalLimit bounds how many journal events a resource read returns.
	journalLimit = 50
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	// Static resource for listing sources.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "sources",
		Name:        "sources",
		Description: "List of all configured sync sources",
		MIMEType:    "application/json",
	}, s.handleSourcesResource)

	// Template for per-source change journals.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "sources/{sourceId}/journal",
		Name:        "source-journal",
		Description: "Recent change journal events for a specific source",
		MIMEType:    "application/json",
	}, s.handleJournalResource)
}

// handleSourcesResource returns a list of all configured sources.
func (s *Server) handleSourcesResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Source == nil {
		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     "[]",
			}},
		}, nil
	}

	sources, err := s.ports.Source.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing sources: %w", err)
	}

	// Build simplified source list.
	type sourceInfo struct {
		ID         string `json:"id"`
		Name       string `json:"name"`
		Type       string `json:"type"`
		Collection string `json:"collection"`
	}

	infos := make([]sourceInfo, len(sources))
	for i, src := range sources {
		infos[i] = sourceInfo{
			ID:         src.ID,
			Name:       src.Name,
			Type:       src.Type,
			Collection: src.Collection,
		}
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling sources: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// handleJournalResource returns recent change events for a specific source.
func (s *Server) handleJournalResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Journal == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	// Extract sourceId from URI: recordhub://sources/{sourceId}/journal
	sourceID := extractSourceID(req.Params.URI)
	if sourceID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	events, err := s.ports.Journal.ListEvents(ctx, sourceID, journalLimit)
	if err != nil {
		return nil, fmt.Errorf("listing journal events: %w", err)
	}

	// Build simplified event list.
	type eventInfo struct {
		Verb     string   `json:"verb"`
		Title    string   `json:"title"`
		Major    bool     `json:"major"`
		Excerpts []string `json:"excerpts,omitempty"`
	}

	infos := make([]eventInfo, len(events))
	for i := range events {
		infos[i] = eventInfo{
			Verb:     string(events[i].Verb),
			Title:    events[i].Title,
			Major:    events[i].Major,
			Excerpts: events[i].Excerpts,
		}
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling journal events: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractSourceID extracts the source ID from a URI like
// recordhub://sources/{sourceId}/journal.
func extractSourceID(uri string) string {
	rest, found := strings.CutPrefix(uri, uriScheme+"sources/")
	if !found {
		return ""
	}
	sourceID, found := strings.CutSuffix(rest, "/journal")
	if !found || strings.Contains(sourceID, "/") {
		return ""
	}
	return sourceID
}
