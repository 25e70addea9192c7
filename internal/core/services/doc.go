// Package services implements the driving port interfaces.
// Services contain the core sync logic and orchestrate
// calls to driven ports (adapters).
//
// A sync invocation runs in four steps:
//
//  1. Resolve the source token, source base id and sink credentials.
//  2. Fetch every page from the source.
//  3. Transform each record according to its table mapping.
//  4. Upsert the rows into the sink on the mapping's conflict key.
//
// Services depend only on the ports, the logger and uuid.
package services
