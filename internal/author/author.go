// Package author canonicalizes the variable author shapes the backend embeds
// in posts and comments into a single comparable reference.
package author

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Ref is the canonical "who created this content" value. Backends embed the
// author as an object ({_id, name}), a bare scalar id, or not at all; every
// shape resolves here. A zero Ref is the unknown author.
type Ref struct {
	ID   string
	Name string
}

// Unknown is the sentinel for content with no resolvable author.
var Unknown = Ref{}

// Known reports whether the reference resolved to an actual author id.
func (r Ref) Known() bool {
	return r.ID != ""
}

// Is compares the reference against an id as strings. An unknown reference
// never matches anything, including an empty id.
func (r Ref) Is(id string) bool {
	if !r.Known() || id == "" {
		return false
	}
	return r.ID == id
}

// Normalize resolves any raw author representation to a Ref. It is total:
// unrecognized or absent input maps to Unknown, never an error.
func Normalize(raw any) Ref {
	switch v := raw.(type) {
	case nil:
		return Unknown
	case Ref:
		return v
	case string:
		return Ref{ID: strings.TrimSpace(v)}
	case json.Number:
		return Ref{ID: v.String()}
	case float64:
		return Ref{ID: formatNumericID(v)}
	case int:
		return Ref{ID: strconv.Itoa(v)}
	case int64:
		return Ref{ID: strconv.FormatInt(v, 10)}
	case map[string]any:
		ref := Ref{ID: scalarID(firstPresent(v, "_id", "id", "userId"))}
		if name, ok := v["name"].(string); ok {
			ref.Name = strings.TrimSpace(name)
		}
		return ref
	default:
		return Unknown
	}
}

// UnmarshalJSON decodes the wire shapes directly, so normalization happens
// once at the ingestion boundary instead of at every comparison site.
func (r *Ref) UnmarshalJSON(data []byte) error {
	decoder := json.NewDecoder(strings.NewReader(string(data)))
	decoder.UseNumber()
	var raw any
	if err := decoder.Decode(&raw); err != nil {
		return fmt.Errorf("decode author: %w", err)
	}
	*r = Normalize(raw)
	return nil
}

// MarshalJSON writes the canonical object form.
func (r Ref) MarshalJSON() ([]byte, error) {
	if !r.Known() {
		return []byte("null"), nil
	}
	return json.Marshal(map[string]string{"_id": r.ID, "name": r.Name})
}

func firstPresent(m map[string]any, keys ...string) any {
	for _, key := range keys {
		if value, ok := m[key]; ok && value != nil {
			return value
		}
	}
	return nil
}

// scalarID stringifies an id-like scalar. Numeric ids must not pick up
// floating point artifacts, or ownership comparisons silently fail.
func scalarID(raw any) string {
	switch v := raw.(type) {
	case string:
		return strings.TrimSpace(v)
	case json.Number:
		return v.String()
	case float64:
		return formatNumericID(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	default:
		return ""
	}
}

func formatNumericID(v float64) string {
	if v == float64(int64(v)) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
