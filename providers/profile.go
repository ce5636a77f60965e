package providers

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Profile is an opaque profile document returned by a provider.
// Field access is explicit and fallible: accessors report whether a value is
// present instead of assuming required fields exist. Providers vary wildly in
// payload shape (Strava nests nothing, TripIt nests the user id under
// "@attributes"), so the document stays untyped and each provider's claim
// mapper pulls out the fields it knows about.
type Profile map[string]any

// ParseProfile decodes a JSON object into a Profile.
// Numbers are preserved as json.Number so integer identifiers (Strava athlete
// IDs) survive the round trip without float formatting artifacts.
func ParseProfile(data []byte) (Profile, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var p Profile
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("failed to decode profile: %w", err)
	}
	return p, nil
}

// String returns the named field as a string, reporting whether it is present.
// Numeric and boolean values are stringified; null and missing fields are absent.
func (p Profile) String(key string) (string, bool) {
	v, ok := p[key]
	if !ok {
		return "", false
	}
	return stringify(v)
}

// Object returns the named field as a nested document.
func (p Profile) Object(key string) (Profile, bool) {
	v, ok := p[key].(map[string]any)
	if !ok {
		return nil, false
	}
	return Profile(v), true
}

// Objects returns the named field as a list of documents. A single object is
// returned as a one-element list; TripIt renders one email address as an
// object and several as an array.
func (p Profile) Objects(key string) ([]Profile, bool) {
	switch v := p[key].(type) {
	case map[string]any:
		return []Profile{Profile(v)}, true
	case []any:
		out := make([]Profile, 0, len(v))
		for _, item := range v {
			obj, ok := item.(map[string]any)
			if !ok {
				continue
			}
			out = append(out, Profile(obj))
		}
		return out, len(out) > 0
	default:
		return nil, false
	}
}

// StringAt walks a path of nested objects and returns the leaf as a string.
func (p Profile) StringAt(path ...string) (string, bool) {
	if len(path) == 0 {
		return "", false
	}
	cur := p
	for _, key := range path[:len(path)-1] {
		next, ok := cur.Object(key)
		if !ok {
			return "", false
		}
		cur = next
	}
	return cur.String(path[len(path)-1])
}

func stringify(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case json.Number:
		return t.String(), true
	case bool:
		if t {
			return "true", true
		}
		return "false", true
	case float64:
		// Profiles parsed through ParseProfile carry json.Number, but a
		// document built by hand may hold raw floats.
		return json.Number(fmt.Sprintf("%v", t)).String(), true
	default:
		return "", false
	}
}
