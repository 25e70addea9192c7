package domain

import (
	"fmt"
	"strings"
)

// Pseudo-fields resolve to record metadata instead of a named source field.
const (
	// FieldRecordID resolves to SourceRecord.ID.
	FieldRecordID = "$id"

	// FieldCreatedTime resolves to SourceRecord.CreatedTime.
	FieldCreatedTime = "$createdTime"
)

// ColumnMapping maps one source field onto one destination column.
type ColumnMapping struct {
	// Column is the destination column name.
	Column string `toml:"column" json:"column"`

	// Field is the source field name, or one of the pseudo-fields.
	Field string `toml:"field" json:"field"`

	// Default is substituted when the source field is absent or empty.
	// Nil means the column is written as null.
	Default any `toml:"default,omitempty" json:"default,omitempty"`
}

// TableMapping describes one sync variant: where records come from,
// where they go, and how each column is derived.
type TableMapping struct {
	// Name identifies the mapping (e.g. "phase-1").
	Name string `toml:"name" json:"name"`

	// BaseID is the literal source container identifier.
	// Used when BaseIDKey is empty or resolves to nothing.
	BaseID string `toml:"base_id,omitempty" json:"base_id,omitempty"`

	// BaseIDKey names a configuration value overriding BaseID.
	BaseIDKey string `toml:"base_id_key,omitempty" json:"base_id_key,omitempty"`

	// SourceTable is the source table name (URL-encoded on the wire).
	SourceTable string `toml:"source_table" json:"source_table"`

	// SinkTable is the destination table name.
	SinkTable string `toml:"sink_table" json:"sink_table"`

	// ConflictKey is the destination column holding SourceRecord.ID.
	ConflictKey string `toml:"conflict_key" json:"conflict_key"`

	// TimestampColumn, when set, receives the transformation time.
	TimestampColumn string `toml:"timestamp_column,omitempty" json:"timestamp_column,omitempty"`

	// IgnoreDuplicates keeps existing rows untouched on conflict.
	IgnoreDuplicates bool `toml:"ignore_duplicates,omitempty" json:"ignore_duplicates,omitempty"`

	// View restricts the source listing to a named view.
	View string `toml:"view,omitempty" json:"view,omitempty"`

	// PageSize requests a page size from the source (0 = source default).
	PageSize int `toml:"page_size,omitempty" json:"page_size,omitempty"`

	// Columns lists the non-key destination columns in write order.
	Columns []ColumnMapping `toml:"columns" json:"columns"`
}

// Validate checks the mapping is usable.
func (m *TableMapping) Validate() error {
	var problems []string
	if strings.TrimSpace(m.Name) == "" {
		problems = append(problems, "name is required")
	}
	if m.SourceTable == "" {
		problems = append(problems, "source_table is required")
	}
	if m.SinkTable == "" {
		problems = append(problems, "sink_table is required")
	}
	if m.ConflictKey == "" {
		problems = append(problems, "conflict_key is required")
	}
	if m.BaseID == "" && m.BaseIDKey == "" {
		problems = append(problems, "one of base_id or base_id_key is required")
	}

	seen := map[string]bool{m.ConflictKey: true}
	if m.TimestampColumn != "" {
		seen[m.TimestampColumn] = true
	}
	for _, c := range m.Columns {
		if c.Column == "" {
			problems = append(problems, "column name is required")
			continue
		}
		if seen[c.Column] {
			problems = append(problems, fmt.Sprintf("duplicate column %q", c.Column))
		}
		seen[c.Column] = true
		if c.Field == "" {
			problems = append(problems, fmt.Sprintf("column %q has no source field", c.Column))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: mapping %q: %s", ErrInvalidInput, m.Name, strings.Join(problems, "; "))
	}
	return nil
}

// ColumnNames returns every destination column in write order:
// the conflict key, the mapped columns, then the timestamp column.
func (m *TableMapping) ColumnNames() []string {
	names := make([]string, 0, len(m.Columns)+2)
	names = append(names, m.ConflictKey)
	for _, c := range m.Columns {
		names = append(names, c.Column)
	}
	if m.TimestampColumn != "" {
		names = append(names, m.TimestampColumn)
	}
	return names
}
