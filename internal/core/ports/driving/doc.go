// Package driving defines the interfaces that infrastructure calls INTO core.
//
// These are the "driving" or "primary" ports in hexagonal architecture.
// The HTTP, CLI and MCP adapters depend on these interfaces; core
// services implement them.
package driving
