package domain

import "time"

// SourceRecord is a single record fetched from the source system.
// It is immutable once fetched.
type SourceRecord struct {
	// ID is the stable external identifier, unique per source table.
	ID string `json:"id"`

	// CreatedTime is when the record was created in the source system.
	CreatedTime time.Time `json:"createdTime"`

	// Fields maps field names to scalar or list values.
	// The field set is sparse: an absent key means "unset", never an error.
	Fields map[string]any `json:"fields"`
}

// Field returns the value stored under name and whether it was present.
func (r SourceRecord) Field(name string) (any, bool) {
	if r.Fields == nil {
		return nil, false
	}
	v, ok := r.Fields[name]
	return v, ok
}

// Page is one response of the source system's paginated listing.
type Page struct {
	// Records are the records carried by this page, in arrival order.
	Records []SourceRecord `json:"records"`

	// Cursor is the continuation token for the next page.
	// Empty means no further pages exist; it is the sole termination signal.
	Cursor string `json:"offset,omitempty"`
}

// HasMore reports whether the source signalled another page.
func (p Page) HasMore() bool {
	return p.Cursor != ""
}

// SinkRecord is a normalised row keyed by destination column name.
// Every value is a scalar, a list, nil, or a column default.
type SinkRecord map[string]any

// Key returns the conflict-key value of the record.
func (r SinkRecord) Key(column string) string {
	v, _ := r[column].(string)
	return v
}
