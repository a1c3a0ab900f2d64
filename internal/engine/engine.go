// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package engine interprets the document templating language. A template
// text is rewritten by a fixed sequence of passes, each a regular
// expression over the raw string:
//
//  1. bilingual branches   {{#if language.ro}}...{{else}}...{{/if}}
//  2. conditional blocks   {{#if path}}...{{/if}}
//  3. iteration blocks     {{#each path}}...{{this.prop|filter}}...{{/each}}
//  4. placeholders         {{path|filter}}
//
// Because the passes run in order over flat text, a conditional or loop
// nested inside an {{#each}} body is not evaluated per element: only
// {{this}} and {{this.prop|filter}} are substituted against the current
// element. Conditionals inside a loop body are decided once, in pass 2,
// against the whole value bag. Placeholders left in a loop body are
// resolved in pass 4 against the whole value bag.
package engine

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"docforge/internal/locale"
	"docforge/internal/models"
	"docforge/internal/value"
)

var (
	// bilingualRe captures the language, the matching branch and the
	// optional else branch.
	bilingualRe = regexp.MustCompile(`\{\{#if\s+language\.(ro|en)\s*\}\}([\s\S]*?)(?:\{\{else\}\}([\s\S]*?))?\{\{/if\}\}`)

	conditionalRe = regexp.MustCompile(`\{\{#if\s+([\w.]+)\s*\}\}([\s\S]*?)\{\{/if\}\}`)

	eachRe = regexp.MustCompile(`\{\{#each\s+([\w.]+)\s*\}\}([\s\S]*?)\{\{/each\}\}`)

	// thisRe matches {{this}}, {{this.prop}} and {{this.prop|filter}}.
	thisRe = regexp.MustCompile(`\{\{\s*this(?:\.([\w.]+))?\s*(?:\|\s*(\w+)\s*)?\}\}`)

	placeholderRe = regexp.MustCompile(`\{\{\s*([\w.]+)\s*(?:\|\s*(\w+)\s*)?\}\}`)
)

// Interpreter renders template content against a value bag. It holds no
// per-call state and is safe for concurrent use.
type Interpreter struct {
	filters *locale.Registry
}

// NewInterpreter creates an interpreter that formats placeholders with the
// given filter registry.
func NewInterpreter(filters *locale.Registry) *Interpreter {
	return &Interpreter{filters: filters}
}

// Render interprets header, body and footer independently against the same
// bag and language and returns header + body + footer.
func (in *Interpreter) Render(c models.Content, bag value.Value, lang locale.Language) (string, error) {
	var out strings.Builder

	for _, part := range []struct {
		name string
		text string
	}{
		{"header", c.Header},
		{"body", c.Body},
		{"footer", c.Footer},
	} {
		if part.text == "" {
			continue
		}
		rendered, err := in.RenderText(part.text, bag, lang)
		if err != nil {
			return "", fmt.Errorf("render %s: %w", part.name, err)
		}
		out.WriteString(rendered)
	}

	return out.String(), nil
}

// RenderText runs the four rewrite passes over a single text.
func (in *Interpreter) RenderText(text string, bag value.Value, lang locale.Language) (string, error) {
	text = resolveBilingual(text, lang)
	text = resolveConditionals(text, bag)

	text, err := in.expandLoops(text, bag, lang)
	if err != nil {
		return "", err
	}

	return in.substitute(text, bag, lang)
}

// resolveBilingual keeps the branch selected by the requested language.
// The decision never looks at the value bag.
func resolveBilingual(text string, lang locale.Language) string {
	return replaceAll(bilingualRe, text, func(g []string) string {
		wantRO := g[1] == "ro"
		if wantRO == lang.IsRomanian() {
			return g[2]
		}
		return g[3]
	})
}

// resolveConditionals emits the inner fragment unchanged when the path is
// truthy and nothing otherwise. There is no else form.
func resolveConditionals(text string, bag value.Value) string {
	return replaceAll(conditionalRe, text, func(g []string) string {
		if value.Resolve(bag, g[1]).Truthy() {
			return g[2]
		}
		return ""
	})
}

// expandLoops repeats each loop body once per element. A path that does
// not resolve to a list emits nothing.
func (in *Interpreter) expandLoops(text string, bag value.Value, lang locale.Language) (string, error) {
	var firstErr error

	out := replaceAll(eachRe, text, func(g []string) string {
		items := value.Resolve(bag, g[1]).Items()
		if len(items) == 0 {
			return ""
		}

		var b strings.Builder
		for _, item := range items {
			b.WriteString(replaceAll(thisRe, g[2], func(tg []string) string {
				v := item
				if tg[1] != "" {
					v = value.Resolve(item, tg[1])
				}
				s, err := in.filters.Apply(v, tg[2], lang)
				if err != nil && firstErr == nil {
					firstErr = fmt.Errorf("each %s: %w", g[1], err)
				}
				return s
			}))
		}
		return b.String()
	})

	if firstErr != nil {
		return "", firstErr
	}
	return out, nil
}

// substitute replaces the remaining placeholders with values resolved
// against the whole bag. Unresolved paths render as the empty string.
func (in *Interpreter) substitute(text string, bag value.Value, lang locale.Language) (string, error) {
	var firstErr error

	out := replaceAll(placeholderRe, text, func(g []string) string {
		v := value.Resolve(bag, g[1])
		if v.IsAbsent() {
			slog.Debug("placeholder unresolved", "path", g[1])
		}
		s, err := in.filters.Apply(v, g[2], lang)
		if err != nil && firstErr == nil {
			firstErr = fmt.Errorf("placeholder %s: %w", g[1], err)
		}
		return s
	})

	if firstErr != nil {
		return "", firstErr
	}
	return out, nil
}

// replaceAll is ReplaceAllStringFunc with access to submatches. Groups
// that did not participate in the match are passed as "".
func replaceAll(re *regexp.Regexp, s string, fn func(groups []string) string) string {
	matches := re.FindAllStringSubmatchIndex(s, -1)
	if len(matches) == 0 {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	last := 0
	for _, loc := range matches {
		b.WriteString(s[last:loc[0]])

		groups := make([]string, len(loc)/2)
		for i := range groups {
			if start := loc[2*i]; start >= 0 {
				groups[i] = s[start:loc[2*i+1]]
			}
		}
		b.WriteString(fn(groups))
		last = loc[1]
	}
	b.WriteString(s[last:])
	return b.String()
}
