// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package engine

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"docforge/internal/models"
)

// blockTagRe matches every block opener and closer.
var blockTagRe = regexp.MustCompile(`\{\{(#if|#each|/if|/each)\b[^}]*\}\}`)

// CheckSyntax reports unbalanced or crossed block tags in content. The
// interpreter itself is lenient; this runs before a template is saved.
func CheckSyntax(c models.Content) error {
	for _, part := range []struct {
		name string
		text string
	}{
		{"header", c.Header},
		{"body", c.Body},
		{"footer", c.Footer},
	} {
		if err := checkBlocks(part.text); err != nil {
			return fmt.Errorf("invalid template syntax in %s: %w", part.name, err)
		}
	}
	return nil
}

func checkBlocks(text string) error {
	var stack []string
	for _, m := range blockTagRe.FindAllStringSubmatch(text, -1) {
		switch tag := m[1]; tag {
		case "#if", "#each":
			stack = append(stack, tag[1:])
		default:
			want := tag[1:]
			if len(stack) == 0 {
				return fmt.Errorf("unexpected {{%s}}", tag)
			}
			if top := stack[len(stack)-1]; top != want {
				return fmt.Errorf("{{%s}} closes an open %s block", tag, top)
			}
			stack = stack[:len(stack)-1]
		}
	}
	if len(stack) > 0 {
		return fmt.Errorf("unclosed %s block", stack[len(stack)-1])
	}
	return nil
}

// Placeholders lists the distinct top-level value paths referenced by
// content, excluding loop-scoped {{this.*}} references. Editing tools use
// it to suggest variable declarations.
func Placeholders(c models.Content) []string {
	seen := make(map[string]bool)
	for _, text := range []string{c.Header, c.Body, c.Footer} {
		for _, m := range placeholderRe.FindAllStringSubmatch(text, -1) {
			seen[m[1]] = true
		}
		for _, re := range []*regexp.Regexp{conditionalRe, eachRe} {
			for _, m := range re.FindAllStringSubmatch(text, -1) {
				seen[m[1]] = true
			}
		}
	}

	var paths []string
	for p := range seen {
		if p == "this" || p == "else" || strings.HasPrefix(p, "this.") || strings.HasPrefix(p, "language.") {
			continue
		}
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}
