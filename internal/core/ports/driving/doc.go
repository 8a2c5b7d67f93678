// Package driving defines the interfaces the outside world uses to drive
// the core.
//
// These are the "driving" or "primary" ports in hexagonal architecture.
// CLI commands and the MCP server depend on these interfaces; core services
// implement them.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, connector, or service package
package driving
