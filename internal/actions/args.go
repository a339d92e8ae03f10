package actions

import (
	"fmt"
	"time"
)

// Argument readers shared by the builtin actions. YAML hands us
// map[string]any; these narrow values with useful error messages.

func optString(args map[string]any, key string) (string, bool, error) {
	v, ok := args[key]
	if !ok || v == nil {
		return "", false, nil
	}
	s, ok := v.(string)
	if !ok {
		return "", false, fmt.Errorf("%s: expected a string, got %T", key, v)
	}
	return s, true, nil
}

func reqString(args map[string]any, key string) (string, error) {
	s, ok, err := optString(args, key)
	if err != nil {
		return "", err
	}
	if !ok || s == "" {
		return "", fmt.Errorf("%s is required", key)
	}
	return s, nil
}

func optInt(args map[string]any, key string) (int, bool, error) {
	v, ok := args[key]
	if !ok || v == nil {
		return 0, false, nil
	}
	switch n := v.(type) {
	case int:
		return n, true, nil
	case int64:
		return int(n), true, nil
	case float64:
		if n == float64(int(n)) {
			return int(n), true, nil
		}
	}
	return 0, false, fmt.Errorf("%s: expected an integer, got %T", key, v)
}

func optBool(args map[string]any, key string) (bool, bool, error) {
	v, ok := args[key]
	if !ok || v == nil {
		return false, false, nil
	}
	b, ok := v.(bool)
	if !ok {
		return false, false, fmt.Errorf("%s: expected a bool, got %T", key, v)
	}
	return b, true, nil
}

func optDuration(args map[string]any, key string) (time.Duration, bool, error) {
	s, ok, err := optString(args, key)
	if err != nil || !ok {
		return 0, ok, err
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, false, fmt.Errorf("%s: %w", key, err)
	}
	return d, true, nil
}

func optStringSlice(args map[string]any, key string) ([]string, bool, error) {
	v, ok := args[key]
	if !ok || v == nil {
		return nil, false, nil
	}
	raw, ok := v.([]any)
	if !ok {
		return nil, false, fmt.Errorf("%s: expected a list of strings, got %T", key, v)
	}
	out := make([]string, 0, len(raw))
	for i, e := range raw {
		s, ok := e.(string)
		if !ok {
			return nil, false, fmt.Errorf("%s[%d]: expected a string, got %T", key, i, e)
		}
		out = append(out, s)
	}
	return out, true, nil
}

func optStringMap(args map[string]any, key string) (map[string]string, bool, error) {
	v, ok := args[key]
	if !ok || v == nil {
		return nil, false, nil
	}
	raw, ok := v.(map[string]any)
	if !ok {
		return nil, false, fmt.Errorf("%s: expected a string map, got %T", key, v)
	}
	out := make(map[string]string, len(raw))
	for k, e := range raw {
		s, ok := e.(string)
		if !ok {
			return nil, false, fmt.Errorf("%s.%s: expected a string, got %T", key, k, e)
		}
		out[k] = s
	}
	return out, true, nil
}

func optMap(args map[string]any, key string) (map[string]any, bool, error) {
	v, ok := args[key]
	if !ok || v == nil {
		return nil, false, nil
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, false, fmt.Errorf("%s: expected a map, got %T", key, v)
	}
	return m, true, nil
}
