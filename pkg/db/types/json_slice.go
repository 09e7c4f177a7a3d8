package dbtypes

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSONSlice stores a list as a JSON document (jsonb on Postgres, text on
// SQLite). A NULL column scans to an empty slice.
type JSONSlice[T any] []T

func (s *JSONSlice[T]) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*s = JSONSlice[T]{}
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("JSONSlice: unsupported Scan type %T", src)
	}

	if len(raw) == 0 {
		*s = JSONSlice[T]{}
		return nil
	}

	out := JSONSlice[T]{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("JSONSlice: decode: %w", err)
	}
	*s = out
	return nil
}

// Value encodes as a string so the simple query protocol sends it as text
// rather than bytea.
func (s JSONSlice[T]) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	raw, err := json.Marshal([]T(s))
	if err != nil {
		return nil, fmt.Errorf("JSONSlice: encode: %w", err)
	}
	return string(raw), nil
}
