package metadata

import (
	"path"
	"sort"

	"github.com/hexreg/hexreg/erlterm"
)

// buildToolFiles maps well-known base-directory filenames to the build tool
// they imply.
var buildToolFiles = map[string]string{
	"mix.exs":      "mix",
	"rebar.config": "rebar3",
	"rebar":        "rebar3",
	"Makefile":     "make",
	"Makefile.win": "make",
}

// Normalize rewrites legacy metadata shapes in place and returns m.
//
// requirements accepts two historic forms: a list of sub-proplists each
// carrying a name key, and a list of {name, value} pairs. Both become a
// name-keyed mapping. links and extra are coerced from pair lists to
// mappings. build_tools is inferred from files when absent.
func Normalize(m Metadata) Metadata {
	if req, ok := m["requirements"]; ok {
		m["requirements"] = normalizeRequirements(req)
	}
	if links, ok := m["links"]; ok {
		m["links"] = coerceMap(links)
	}
	if extra, ok := m["extra"]; ok {
		m["extra"] = coerceMap(extra)
	}
	if _, ok := m["build_tools"]; !ok {
		tools := GuessBuildTools(stringList(m["files"]))
		coerced := make([]any, len(tools))
		for i, t := range tools {
			coerced[i] = t
		}
		m["build_tools"] = coerced
	}
	return m
}

// GuessBuildTools infers build tools from base-directory filenames. The
// result is sorted and deduplicated.
func GuessBuildTools(files []string) []string {
	seen := make(map[string]bool)
	for _, f := range files {
		if path.Dir(f) != "." {
			continue
		}
		if tool, ok := buildToolFiles[path.Base(f)]; ok {
			seen[tool] = true
		}
	}
	tools := make([]string, 0, len(seen))
	for t := range seen {
		tools = append(tools, t)
	}
	sort.Strings(tools)
	return tools
}

func normalizeRequirements(v any) any {
	list, ok := v.([]any)
	if !ok {
		return v
	}
	out := make(map[string]any, len(list))
	for _, elem := range list {
		switch e := elem.(type) {
		case []any:
			// Sub-proplist shape: [{"name", N}, {"requirement", R}, ...].
			props, ok := pairMap(e)
			if !ok {
				return v
			}
			name, ok := props["name"].(string)
			if !ok {
				return v
			}
			delete(props, "name")
			out[name] = props
		case erlterm.Tuple:
			// Pair shape: {N, Value} where Value may itself be a pair list.
			if len(e) != 2 {
				return v
			}
			name, ok := e[0].(string)
			if !ok {
				return v
			}
			out[name] = coerceMap(e[1])
		default:
			return v
		}
	}
	return out
}

// coerceMap converts a list of 2-tuples to a mapping; any other value is
// returned unchanged.
func coerceMap(v any) any {
	list, ok := v.([]any)
	if !ok {
		return v
	}
	m, ok := pairMap(list)
	if !ok {
		return v
	}
	return m
}

func pairMap(list []any) (map[string]any, bool) {
	m := make(map[string]any, len(list))
	for _, elem := range list {
		tup, ok := elem.(erlterm.Tuple)
		if !ok || len(tup) != 2 {
			return nil, false
		}
		key, ok := tup[0].(string)
		if !ok {
			return nil, false
		}
		m[key] = coerceMap(tup[1])
	}
	return m, true
}

func stringList(v any) []string {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, e := range list {
		if s, ok := e.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
