// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package locale turns resolved values into display text. It owns the
// supported output languages and the filter registry used by placeholders
// such as {{total|currency}} or {{issued_at|date}}.
package locale

import (
	"strings"

	"golang.org/x/text/language"
)

// Language is a resolved document language.
type Language string

const (
	Romanian Language = "ro"
	English  Language = "en"
)

// supported is ordered by preference; the first entry wins ties.
var supported = []language.Tag{language.Romanian, language.English}

var matcher = language.NewMatcher(supported)

// Parse maps a BCP 47 tag ("ro", "ro-RO", "en-US", "EN") to a supported
// language. It returns false when tag is empty or matches nothing.
func Parse(tag string) (Language, bool) {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return "", false
	}
	t, err := language.Parse(tag)
	if err != nil {
		return "", false
	}
	_, idx, conf := matcher.Match(t)
	if conf == language.No {
		return "", false
	}
	if idx == 0 {
		return Romanian, true
	}
	return English, true
}

// Tag returns the x/text tag for l. Unknown values fall back to English.
func (l Language) Tag() language.Tag {
	if l == Romanian {
		return language.Romanian
	}
	return language.English
}

// IsRomanian reports whether l selects the Romanian branch of bilingual
// templates.
func (l Language) IsRomanian() bool {
	return l == Romanian
}
