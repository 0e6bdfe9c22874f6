package shared

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
)

// JSONMap is an untyped key/value bag stored as a JSONB column. It implements
// GORM Scanner/Valuer so metadata bags round-trip without per-record schemas;
// any schema validation is the smart-code-specific caller's job.
type JSONMap map[string]interface{}

// Value implements driver.Valuer for JSONB storage
func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner for reading from JSONB
func (m *JSONMap) Scan(value interface{}) error {
	if value == nil {
		*m = JSONMap{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan JSONMap: unsupported type")
	}

	if len(bytes) == 0 {
		*m = JSONMap{}
		return nil
	}

	return json.Unmarshal(bytes, m)
}

// Copy returns a shallow copy of the map, never nil
func (m JSONMap) Copy() JSONMap {
	out := make(JSONMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Merge applies patch on top of m, returning a new map. Keys with a nil
// value in patch are removed, matching merge-patch semantics.
func (m JSONMap) Merge(patch JSONMap) JSONMap {
	out := m.Copy()
	for k, v := range patch {
		if v == nil {
			delete(out, k)
			continue
		}
		out[k] = v
	}
	return out
}
