// Package file loads tablesync configuration from a TOML file.
//
// The file describes the HTTP server, the source client, the sink driver,
// where secrets come from, and the table mappings. Mappings from the file
// are merged over the built-in phase-1 and phase-2 mappings by name.
//
// Adapters:
//   - ConfigStore: the loaded configuration, also the MappingStore
//   - Watch: fsnotify-driven reload of the same store
package file
