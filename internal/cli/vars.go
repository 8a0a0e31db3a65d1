package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrymomot/sesadapter/pkg/mailer"
)

var errInvalidVar = errors.New("invalid variable, expected key=value")

// parseVars turns repeated key=value flags into template variables.
// Dotted keys build nested maps: user.name=Bob becomes {"user": {"name": "Bob"}}.
// A key cannot be both a value and a map.
func parseVars(pairs []string) (mailer.Vars, error) {
	vars := mailer.Vars{}
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("%w: %q", errInvalidVar, pair)
		}

		parts := strings.Split(key, ".")
		node := map[string]any(vars)
		for _, part := range parts[:len(parts)-1] {
			if part == "" {
				return nil, fmt.Errorf("%w: %q", errInvalidVar, pair)
			}
			existing, exists := node[part]
			child, ok := existing.(map[string]any)
			switch {
			case !exists:
				child = map[string]any{}
				node[part] = child
			case !ok:
				return nil, fmt.Errorf("%w: %q: %s is already a value", errInvalidVar, pair, part)
			}
			node = child
		}

		last := parts[len(parts)-1]
		if last == "" {
			return nil, fmt.Errorf("%w: %q", errInvalidVar, pair)
		}
		if _, nested := node[last].(map[string]any); nested {
			return nil, fmt.Errorf("%w: %q: %s already has nested keys", errInvalidVar, pair, last)
		}
		node[last] = value
	}
	return vars, nil
}

// parseFields is parseVars without nesting, for user fields.
func parseFields(pairs []string) (map[string]string, error) {
	fields := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("%w: %q", errInvalidVar, pair)
		}
		fields[key] = value
	}
	return fields, nil
}
