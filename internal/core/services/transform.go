package services

import (
	"encoding/json"
	"math"
	"time"

	"github.com/custodia-labs/tablesync/internal/core/domain"
)

// TimestampLayout formats timestamp columns: RFC3339 in UTC with
// millisecond precision.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// RecordTransformer maps source records onto sink rows according to a
// table mapping. It is pure apart from the injected clock.
type RecordTransformer struct {
	now func() time.Time
}

// NewRecordTransformer creates a transformer. A nil clock uses time.Now.
func NewRecordTransformer(now func() time.Time) *RecordTransformer {
	if now == nil {
		now = time.Now
	}
	return &RecordTransformer{now: now}
}

// TransformAll maps every record, preserving order. All rows of one
// call share the same timestamp.
func (t *RecordTransformer) TransformAll(m *domain.TableMapping, records []domain.SourceRecord) []domain.SinkRecord {
	at := t.now()
	rows := make([]domain.SinkRecord, 0, len(records))
	for _, r := range records {
		rows = append(rows, t.Transform(m, r, at))
	}
	return rows
}

// Transform maps one record. The conflict key always carries the record
// ID; every mapped column takes the source value when it is non-empty
// and the column default otherwise.
func (t *RecordTransformer) Transform(m *domain.TableMapping, r domain.SourceRecord, at time.Time) domain.SinkRecord {
	row := make(domain.SinkRecord, len(m.Columns)+2)
	row[m.ConflictKey] = r.ID

	for _, c := range m.Columns {
		v, ok := resolveField(r, c.Field)
		if !ok || isEmpty(v) {
			v = c.Default
		}
		row[c.Column] = v
	}

	if m.TimestampColumn != "" {
		row[m.TimestampColumn] = at.UTC().Format(TimestampLayout)
	}
	return row
}

// resolveField reads a named field or one of the metadata pseudo-fields.
func resolveField(r domain.SourceRecord, field string) (any, bool) {
	switch field {
	case domain.FieldRecordID:
		return r.ID, true
	case domain.FieldCreatedTime:
		if r.CreatedTime.IsZero() {
			return nil, false
		}
		return r.CreatedTime.UTC().Format(TimestampLayout), true
	default:
		return r.Field(field)
	}
}

// isEmpty reports whether a scalar counts as unset: nil, the empty
// string, false, zero or NaN. Lists and objects are never empty, even
// with no elements.
func isEmpty(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return x == ""
	case bool:
		return !x
	case float64:
		return x == 0 || math.IsNaN(x)
	case float32:
		return x == 0 || math.IsNaN(float64(x))
	case int:
		return x == 0
	case int64:
		return x == 0
	case int32:
		return x == 0
	case json.Number:
		f, err := x.Float64()
		return err == nil && f == 0
	default:
		return false
	}
}
