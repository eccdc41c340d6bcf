package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Metadata represents a JSONB field for storing free-form attributes
type Metadata map[string]any

// Scan implements the sql.Scanner interface for Metadata
func (m *Metadata) Scan(value interface{}) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		*m = make(Metadata)
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("failed to unmarshal JSONB value: %v", value)
	}

	result := make(Metadata)
	err := json.Unmarshal(raw, &result)
	*m = result
	return err
}

// Value implements the driver.Valuer interface for Metadata.
// The JSON is returned as a string so lib/pq sends it as text, not bytea.
func (m Metadata) Value() (driver.Value, error) {
	if m == nil {
		m = make(Metadata)
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}
