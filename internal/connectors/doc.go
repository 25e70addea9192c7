// Package connectors holds record source implementations for external
// tabular systems. Each connector implements [driven.SourceFactory] and
// [driven.RecordSource] and is selected by the CLI composition root.
package connectors
