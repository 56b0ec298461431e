// Package metadata serializes Hex package metadata to the metadata.config
// term format and back, and normalizes the legacy shapes found in older
// packages.
package metadata

import (
	"errors"
	"fmt"
	"sort"

	"github.com/hexreg/hexreg/erlterm"
)

// Metadata is a package metadata mapping. Values are strings, bools, nil,
// int64, float64, []any, map[string]any, or erlterm.Tuple for tuple values
// that survive decoding untouched.
type Metadata map[string]any

// Sentinel errors for metadata decoding.
var (
	// ErrInvalidTerms is returned when metadata.config does not parse as
	// a sequence of data terms.
	ErrInvalidTerms = errors.New("metadata: invalid terms")

	// ErrNotKeyValue is returned when the parsed terms are not 2-tuples.
	ErrNotKeyValue = errors.New("metadata: terms are not key/value pairs")
)

// Encode renders m as metadata.config bytes. Keys are sorted at every level
// so equal input produces identical bytes.
func Encode(m Metadata) ([]byte, error) {
	keys := sortedKeys(m)
	terms := make([]erlterm.Term, 0, len(keys))
	for _, k := range keys {
		v, err := toTerm(m[k])
		if err != nil {
			return nil, fmt.Errorf("metadata: key %q: %w", k, err)
		}
		terms = append(terms, erlterm.Tuple{k, v})
	}
	return erlterm.Format(terms)
}

// Decode parses metadata.config bytes into a Metadata mapping. The input
// must be a sequence of {key, value} tuples; keys may be atoms or binaries.
func Decode(b []byte) (Metadata, error) {
	terms, err := erlterm.Parse(b)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTerms, err)
	}
	m := make(Metadata, len(terms))
	for _, t := range terms {
		tup, ok := t.(erlterm.Tuple)
		if !ok || len(tup) != 2 {
			return nil, ErrNotKeyValue
		}
		key, ok := termKey(tup[0])
		if !ok {
			return nil, ErrNotKeyValue
		}
		m[key] = FromTerm(tup[1])
	}
	return m, nil
}

// FromTerm converts a parsed term to its plain Go value: binaries and
// strings become string, the true/false atoms become bool, the undefined
// and nil atoms become nil, other atoms become their name, lists become
// []any, and tuples stay
// erlterm.Tuple so normalization can tell the legacy shapes apart.
func FromTerm(t erlterm.Term) any {
	switch v := t.(type) {
	case erlterm.Atom:
		switch v {
		case "true":
			return true
		case "false":
			return false
		case "undefined", "nil":
			return nil
		}
		return string(v)
	case erlterm.List:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = FromTerm(e)
		}
		return out
	case erlterm.Tuple:
		out := make(erlterm.Tuple, len(v))
		for i, e := range v {
			out[i] = FromTerm(e)
		}
		return out
	default:
		return v
	}
}

func termKey(t erlterm.Term) (string, bool) {
	switch v := t.(type) {
	case string:
		return v, true
	case erlterm.Atom:
		return string(v), true
	}
	return "", false
}

func toTerm(v any) (erlterm.Term, error) {
	switch val := v.(type) {
	case nil:
		return erlterm.Atom("undefined"), nil
	case bool:
		if val {
			return erlterm.Atom("true"), nil
		}
		return erlterm.Atom("false"), nil
	case string:
		return val, nil
	case int:
		return int64(val), nil
	case int64, float64:
		return val, nil
	case erlterm.Tuple:
		out := make(erlterm.Tuple, len(val))
		for i, e := range val {
			t, err := toTerm(e)
			if err != nil {
				return nil, err
			}
			out[i] = t
		}
		return out, nil
	case []any:
		out := make(erlterm.List, len(val))
		for i, e := range val {
			t, err := toTerm(e)
			if err != nil {
				return nil, err
			}
			out[i] = t
		}
		return out, nil
	case []string:
		out := make(erlterm.List, len(val))
		for i, e := range val {
			out[i] = e
		}
		return out, nil
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make(erlterm.List, 0, len(keys))
		for _, k := range keys {
			t, err := toTerm(val[k])
			if err != nil {
				return nil, err
			}
			out = append(out, erlterm.Tuple{k, t})
		}
		return out, nil
	case Metadata:
		return toTerm(map[string]any(val))
	default:
		return nil, fmt.Errorf("unsupported value type %T", v)
	}
}

func sortedKeys(m Metadata) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
