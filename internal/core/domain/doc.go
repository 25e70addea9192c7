// Package domain defines the core business entities for tablesync.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - SourceRecord: A record fetched from the source system
//   - Page: One page of source records plus its continuation cursor
//   - SinkRecord: A normalised row ready to be upserted into the sink
//   - TableMapping: The declarative description of one sync variant
//   - SyncResult: The envelope returned to the caller of a sync invocation
//   - Run: A history entry describing one finished invocation
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
