// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package value

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// UnmarshalYAML decodes a YAML node (used by built-in template definitions)
// into v. Unquoted timestamps become dates.
func (v *Value) UnmarshalYAML(node *yaml.Node) error {
	var raw any
	if err := node.Decode(&raw); err != nil {
		return fmt.Errorf("decode yaml value: %w", err)
	}
	*v = FromAny(normalizeYAML(raw))
	return nil
}

// normalizeYAML converts map[any]any produced for non-string keys into
// string-keyed maps.
func normalizeYAML(x any) any {
	switch t := x.(type) {
	case map[string]any:
		for k, item := range t {
			t[k] = normalizeYAML(item)
		}
		return t
	case map[any]any:
		m := make(map[string]any, len(t))
		for k, item := range t {
			m[fmt.Sprintf("%v", k)] = normalizeYAML(item)
		}
		return m
	case []any:
		for i, item := range t {
			t[i] = normalizeYAML(item)
		}
		return t
	default:
		return x
	}
}
