// Package record defines the generic record value exchanged between the
// relation resolver and its storage collaborators. A record is an opaque bag
// of fields identified by (table, uid); the resolver only reads the fields it
// is explicitly told about, so no per-table struct types exist.
package record

import (
	"fmt"
	"strconv"
)

// Record is one row of a table, keyed by its uid. Fields holds raw driver
// values; use String and Int64 to coerce them.
type Record struct {
	Table  string
	UID    int64
	Fields map[string]any
}

// New creates a record for the given table and uid with the supplied fields.
// A nil fields map is replaced with an empty one so callers can always index.
func New(table string, uid int64, fields map[string]any) Record {
	if fields == nil {
		fields = map[string]any{}
	}
	return Record{Table: table, UID: uid, Fields: fields}
}

// Has reports whether the record carries the named field at all.
func (r Record) Has(field string) bool {
	_, ok := r.Fields[field]
	return ok
}

// String returns the named field coerced to a string. Driver values arrive as
// []byte for text columns and as native integer types for numeric ones; nil
// and missing fields coerce to "".
func (r Record) String(field string) string {
	return AsString(r.Fields[field])
}

// Int64 returns the named field coerced to int64, or 0 when the field is
// missing or not numeric.
func (r Record) Int64(field string) int64 {
	v, _ := AsInt64(r.Fields[field])
	return v
}

// Clone returns a deep-enough copy of the record: the field map is copied so
// overlays can rewrite fields without mutating the fetched original.
func (r Record) Clone() Record {
	fields := make(map[string]any, len(r.Fields))
	for k, v := range r.Fields {
		fields[k] = v
	}
	return Record{Table: r.Table, UID: r.UID, Fields: fields}
}

// AsString coerces a raw driver value to a string.
func AsString(v any) string {
	switch value := v.(type) {
	case nil:
		return ""
	case string:
		return value
	case []byte:
		return string(value)
	case int64:
		return strconv.FormatInt(value, 10)
	case int:
		return strconv.Itoa(value)
	case uint64:
		return strconv.FormatUint(value, 10)
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	case bool:
		if value {
			return "1"
		}
		return "0"
	case fmt.Stringer:
		return value.String()
	default:
		return fmt.Sprint(value)
	}
}

// AsInt64 coerces a raw driver value to int64. The second return reports
// whether the value was numeric (or a numeric string).
func AsInt64(v any) (int64, bool) {
	switch value := v.(type) {
	case int64:
		return value, true
	case int:
		return int64(value), true
	case int32:
		return int64(value), true
	case uint64:
		return int64(value), true
	case float64:
		return int64(value), true
	case []byte:
		n, err := strconv.ParseInt(string(value), 10, 64)
		return n, err == nil
	case string:
		n, err := strconv.ParseInt(value, 10, 64)
		return n, err == nil
	default:
		return 0, false
	}
}
