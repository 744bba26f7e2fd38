// AngelaMos | 2026
// merge.go

// Package feature merges tenant feature JSON with legacy enable_* settings
// into the flag set the application reads.
package feature

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"strings"
)

// Setting is one app_settings row.
type Setting struct {
	Key   string `json:"setting_key"   db:"setting_key"`
	Value string `json:"setting_value" db:"setting_value"`
}

// State is the full outcome of a merge. Merged may hold non-boolean values
// carried over from tenant JSON; Flags never does.
type State struct {
	Base    map[string]any  `json:"base"`
	Toggles map[string]bool `json:"toggles"`
	Merged  map[string]any  `json:"merged"`
	Flags   map[string]bool `json:"flags"`

	// InvalidJSON is set when the tenant features text could not be parsed.
	InvalidJSON bool `json:"invalid_json,omitempty"`
}

// Parse decodes raw tenant features into a map and coerces "true"/"false"
// strings to booleans. Non-object values decode to an empty map. The error
// is only set for unparseable JSON text; the map is still usable.
func Parse(raw Raw) (map[string]any, error) {
	if raw.IsEmpty() {
		return map[string]any{}, nil
	}

	var src map[string]any
	switch raw.kind {
	case kindObject:
		src = raw.obj
	case kindString:
		var v any
		if err := json.Unmarshal([]byte(raw.text), &v); err != nil {
			return map[string]any{}, fmt.Errorf("parse tenant features: %w", err)
		}
		obj, ok := v.(map[string]any)
		if !ok {
			return map[string]any{}, nil
		}
		src = obj
	default:
		return map[string]any{}, nil
	}

	out := make(map[string]any, len(src))
	for k, v := range src {
		out[k] = normalizeValue(v)
	}
	return out, nil
}

// ErrNotObject is returned by Validate for values that are not JSON objects.
var ErrNotObject = errors.New("tenant features must be a JSON object")

// Validate is the strict form of Parse used on writes: the value must be
// empty or decode to a JSON object.
func Validate(raw Raw) error {
	if raw.IsEmpty() {
		return nil
	}

	switch raw.kind {
	case kindObject:
		return nil
	case kindString:
		var obj map[string]any
		if err := json.Unmarshal([]byte(raw.text), &obj); err != nil || obj == nil {
			return ErrNotObject
		}
		return nil
	default:
		return ErrNotObject
	}
}

func normalizeValue(v any) any {
	s, ok := v.(string)
	if !ok {
		return v
	}
	switch strings.ToLower(s) {
	case "true":
		return true
	case "false":
		return false
	default:
		return v
	}
}

// Toggles keeps settings whose key starts with enable_. Only the exact
// string "true" is true.
func Toggles(settings []Setting) map[string]bool {
	out := make(map[string]bool)
	for _, s := range settings {
		if strings.HasPrefix(s.Key, TogglePrefix) {
			out[s.Key] = s.Value == "true"
		}
	}
	return out
}

// Merge resolves tenant features against legacy toggles. Later steps
// override earlier ones: toggles over tenant JSON, aliases over both, and
// combinations last. It never fails; malformed JSON is logged and treated
// as an empty object.
func Merge(raw Raw, settings []Setting) State {
	base, err := Parse(raw)
	if err != nil {
		slog.Warn("invalid tenant features JSON, using empty feature set",
			"error", err,
		)
	}

	toggles := Toggles(settings)

	merged := maps.Clone(base)
	for k, v := range toggles {
		merged[k] = v
	}

	for _, alias := range Aliases {
		value, present := toggles[alias.Toggle]
		if !present {
			continue
		}
		for _, target := range alias.Targets {
			merged[target] = value
		}
	}

	for _, combo := range Combinations {
		present := false
		result := false
		for _, src := range combo.Sources {
			v, ok := toggles[src]
			present = present || ok
			result = result || v
		}
		if present {
			merged[combo.Target] = result
		}
	}

	return State{
		Base:        base,
		Toggles:     toggles,
		Merged:      merged,
		Flags:       Flags(merged),
		InvalidJSON: err != nil,
	}
}

// Flags narrows a merged map to its strictly boolean entries.
func Flags(merged map[string]any) map[string]bool {
	out := make(map[string]bool, len(merged))
	for k, v := range merged {
		if b, ok := v.(bool); ok {
			out[k] = b
		}
	}
	return out
}

// Enabled reports whether name is set to true.
func (s State) Enabled(name string) bool {
	return s.Flags[name]
}
