// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - SourceConnector: Fetches and normalizes items from a remote source
//   - ConnectorFactory: Creates connectors from source configuration
//   - RecordStore: Record collection persistence (the host storage capability)
//   - CursorStore: Sync watermark persistence
//   - ContentSink: Rendered content delivery per record
//   - SourceStore: Source configuration persistence
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - JournalSink: Change journal consumer. Without it, journals are dropped.
//   - TaskStore: Scheduler state. Only needed when the daemon runs.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or connector package
package driven
