// Package domain defines the core business entities for RecordHub.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - RawItem: A source-native item as returned by a remote API
//   - RecordFields: The normalized payload written to a local record
//   - Cursor: The incremental sync watermark for a source
//   - ChangeEvent / Journal: The change log produced by one sync run
//   - Source: A configured sync source
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
