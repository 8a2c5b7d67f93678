// Package mcp provides an MCP (Model Context Protocol) server adapter for
// RecordHub. It lets AI assistants trigger syncs and inspect sources and
// their change journals.
package mcp

import "errors"

// ErrMissingSyncService is returned when the sync service is not provided.
var ErrMissingSyncService = errors.New("mcp: sync service is required")
