// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package documents

import (
	"strings"

	"docforge/internal/locale"
	"docforge/internal/models"
)

// resolveLanguage picks the render language. Any explicit tag that does not
// match Romanian renders the default (English) branch; an empty tag falls
// back to the template's language mode, with bilingual templates defaulting
// to Romanian.
func resolveLanguage(tag string, mode models.LanguageMode) locale.Language {
	if tag = strings.TrimSpace(tag); tag != "" {
		if lang, ok := locale.Parse(tag); ok && lang.IsRomanian() {
			return locale.Romanian
		}
		return locale.English
	}
	if mode == models.LanguageModeEN {
		return locale.English
	}
	return locale.Romanian
}
