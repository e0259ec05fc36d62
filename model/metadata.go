package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"

	"github.com/siherrmann/wbupdate/helper"
)

// Well-known metadata keys of a queued edit.
const (
	MetadataSummary = "summary"
	MetadataTags    = "tags"
	MetadataBot     = "bot"
)

// Metadata holds free-form edit metadata stored as JSONB next to a queued update.
type Metadata map[string]interface{}

// Value implements the driver.Valuer interface for database storage
func (m Metadata) Value() (driver.Value, error) {
	return m.Marshal()
}

// Scan implements the sql.Scanner interface for database retrieval
func (m *Metadata) Scan(value interface{}) error {
	return m.Unmarshal(value)
}

func (m Metadata) Marshal() ([]byte, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m)
}

// Unmarshal converts JSON bytes or Metadata to Metadata
func (m *Metadata) Unmarshal(value interface{}) error {
	if value == nil {
		*m = Metadata{}
		return nil
	}

	if s, ok := value.(Metadata); ok {
		*m = s
		return nil
	}

	b, ok := value.([]byte)
	if !ok {
		return helper.NewError("byte assertion", errors.New("type assertion to []byte failed"))
	}

	return json.Unmarshal(b, m)
}

// Summary returns the edit summary, if any.
func (m Metadata) Summary() string {
	s, _ := m[MetadataSummary].(string)
	return s
}

// Tags returns the change tags. Both []string and decoded []interface{} are accepted.
func (m Metadata) Tags() []string {
	switch tags := m[MetadataTags].(type) {
	case []string:
		return tags
	case []interface{}:
		out := make([]string, 0, len(tags))
		for _, t := range tags {
			if s, ok := t.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func (m Metadata) IsBot() bool {
	b, _ := m[MetadataBot].(bool)
	return b
}
