// AngelaMos | 2026
// raw.go

package feature

import (
	"bytes"
	"encoding/json"
	"fmt"
)

type rawKind int

const (
	kindNone rawKind = iota
	kindString
	kindObject
	kindOther
)

// Raw is a tenant features value as stored or submitted: absent, a JSON
// encoded string, an already decoded object, or something else entirely.
type Raw struct {
	kind  rawKind
	text  string
	obj   map[string]any
	other any
}

func RawNone() Raw { return Raw{} }

func RawString(s string) Raw { return Raw{kind: kindString, text: s} }

func RawObject(m map[string]any) Raw {
	if m == nil {
		return Raw{}
	}
	return Raw{kind: kindObject, obj: m}
}

// RawValue wraps an arbitrary decoded value, e.g. a JSON array.
func RawValue(v any) Raw {
	switch t := v.(type) {
	case nil:
		return Raw{}
	case string:
		return RawString(t)
	case map[string]any:
		return RawObject(t)
	default:
		return Raw{kind: kindOther, other: v}
	}
}

// RawNullable wraps a nullable text column.
func RawNullable(s *string) Raw {
	if s == nil {
		return Raw{}
	}
	return RawString(*s)
}

// IsEmpty reports an absent value or an empty string.
func (r Raw) IsEmpty() bool {
	return r.kind == kindNone || (r.kind == kindString && r.text == "")
}

func (r *Raw) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*r = Raw{}
		return nil
	}

	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("decode features: %w", err)
	}

	*r = RawValue(v)
	return nil
}

func (r Raw) MarshalJSON() ([]byte, error) {
	switch r.kind {
	case kindString:
		return json.Marshal(r.text)
	case kindObject:
		return json.Marshal(r.obj)
	case kindOther:
		return json.Marshal(r.other)
	default:
		return []byte("null"), nil
	}
}

// Encode returns the value as it should be written to features_json.
// Strings are stored verbatim; objects are serialized.
func (r Raw) Encode() (*string, error) {
	switch r.kind {
	case kindNone:
		return nil, nil
	case kindString:
		s := r.text
		return &s, nil
	default:
		b, err := r.MarshalJSON()
		if err != nil {
			return nil, fmt.Errorf("encode features: %w", err)
		}
		s := string(b)
		return &s, nil
	}
}
