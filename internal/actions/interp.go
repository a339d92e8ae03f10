package actions

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"scenarist/pkg/core"
)

var placeholderRe = regexp.MustCompile(`\$\{([^}]+)\}`)

// Interpolate resolves ${name} references in argument values against the
// scenario scope. A string that is exactly one reference keeps the value's
// original type; mixed strings render each reference with %v. References
// prefixed with env. read process environment variables instead. Maps and
// slices are resolved recursively.
func Interpolate(args map[string]any, scope *core.Scope) (map[string]any, error) {
	if len(args) == 0 {
		return args, nil
	}
	out := make(map[string]any, len(args))
	for k, v := range args {
		resolved, err := interpolateValue(v, scope)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", k, err)
		}
		out[k] = resolved
	}
	return out, nil
}

func interpolateValue(v any, scope *core.Scope) (any, error) {
	switch val := v.(type) {
	case string:
		return interpolateString(val, scope)
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, e := range val {
			resolved, err := interpolateValue(e, scope)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", k, err)
			}
			out[k] = resolved
		}
		return out, nil
	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			resolved, err := interpolateValue(e, scope)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			out[i] = resolved
		}
		return out, nil
	default:
		return v, nil
	}
}

func interpolateString(s string, scope *core.Scope) (any, error) {
	matches := placeholderRe.FindAllStringSubmatchIndex(s, -1)
	if len(matches) == 0 {
		return s, nil
	}

	// A string that is a single reference and nothing else yields the
	// referenced value unchanged, so ${count} stays an int.
	if len(matches) == 1 && matches[0][0] == 0 && matches[0][1] == len(s) {
		return lookupRef(s[matches[0][2]:matches[0][3]], scope)
	}

	var b strings.Builder
	last := 0
	for _, m := range matches {
		b.WriteString(s[last:m[0]])
		v, err := lookupRef(s[m[2]:m[3]], scope)
		if err != nil {
			return nil, err
		}
		fmt.Fprintf(&b, "%v", v)
		last = m[1]
	}
	b.WriteString(s[last:])
	return b.String(), nil
}

func lookupRef(name string, scope *core.Scope) (any, error) {
	if envName, ok := strings.CutPrefix(name, "env."); ok {
		return os.Getenv(envName), nil
	}
	if v, ok := scope.Get(name); ok {
		return v, nil
	}
	return nil, fmt.Errorf("unknown reference ${%s}", name)
}
