// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug derives machine names for categories and templates from
// display names, folding Romanian (and other Latin) diacritics to ASCII.
package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	// nonAlphanumeric matches anything that isn't a letter, digit, space or hyphen.
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9\s-]`)
	// separators collapses runs of whitespace and hyphens into one hyphen.
	separators = regexp.MustCompile(`[\s-]+`)
)

// Generate creates a slug from the given string.
// Example: "Contract de prestări servicii" → "contract-de-prestari-servicii"
func Generate(s string) string {
	result := strings.ToLower(strings.TrimSpace(fold(s)))
	result = nonAlphanumeric.ReplaceAllString(result, "")
	result = separators.ReplaceAllString(result, "-")
	return strings.Trim(result, "-")
}

// fold strips combining marks after canonical decomposition, so ș, ț, ă,
// â and î (including the legacy cedilla forms ş and ţ) become s, t, a, a
// and i.
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
