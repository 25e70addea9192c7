// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - RecordSource: Fetches every record of a source table
//   - SourceFactory: Creates a credential-bearing RecordSource per invocation
//   - RecordSink: Upserts normalised records into a destination table
//   - SinkFactory: Creates a credential-bearing RecordSink per invocation
//   - SecretLookup: Resolves named configuration values
//   - MappingStore: Table mapping configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - RunStore: Sync history. Without it, runs are only logged.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, connector, or driving package
package driven
