package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Well-known metadata keys
const (
	MetaPinned      = "pinned"
	MetaLabel       = "label"
	MetaNote        = "note"
	MetaVisitorName = "visitor_name"
)

// Label is a colored tag an operator attaches to a session
type Label struct {
	Text  string `json:"text"`
	Color string `json:"color"`
}

// Metadata is an open map stored as JSONB. Well-known keys have typed accessors.
type Metadata map[string]interface{}

// Scan implements sql.Scanner interface
func (m *Metadata) Scan(value interface{}) error {
	if value == nil {
		*m = Metadata{}
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("unsupported metadata type %T", value)
	}
	result := Metadata{}
	if err := json.Unmarshal(bytes, &result); err != nil {
		return err
	}
	*m = result
	return nil
}

// Value implements driver.Valuer interface
func (m Metadata) Value() (driver.Value, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m)
}

// Clone returns a shallow copy of the map
func (m Metadata) Clone() Metadata {
	out := make(Metadata, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Merge shallow-merges patch into a copy of m. Top-level keys in patch replace
// keys in m wholesale; nested values are not merged.
func (m Metadata) Merge(patch Metadata) Metadata {
	out := m.Clone()
	for k, v := range patch {
		out[k] = v
	}
	return out
}

func (m Metadata) Pinned() bool {
	v, _ := m[MetaPinned].(bool)
	return v
}

func (m Metadata) Note() string {
	v, _ := m[MetaNote].(string)
	return v
}

func (m Metadata) VisitorName() string {
	v, _ := m[MetaVisitorName].(string)
	return v
}

// Label returns the label if one is set. Values decoded from JSON arrive as
// map[string]interface{}, values set in-process as Label.
func (m Metadata) Label() (Label, bool) {
	switch v := m[MetaLabel].(type) {
	case Label:
		return v, true
	case *Label:
		if v == nil {
			return Label{}, false
		}
		return *v, true
	case map[string]interface{}:
		text, _ := v["text"].(string)
		color, _ := v["color"].(string)
		return Label{Text: text, Color: color}, true
	default:
		return Label{}, false
	}
}
