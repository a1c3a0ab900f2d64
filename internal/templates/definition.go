// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package templates

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"docforge/internal/engine"
	"docforge/internal/models"
)

// normalize fills defaults for optional definition fields. t.Variables is
// copied before defaults are written since it may still alias the
// caller's create params or patch.
func normalize(t *models.Template) {
	t.Name = strings.TrimSpace(t.Name)
	t.NameRO = strings.TrimSpace(t.NameRO)
	if t.Content.Language == "" {
		t.Content.Language = models.LanguageModeRO
	}
	if t.Content.Markup == "" {
		t.Content.Markup = models.MarkupHTML
	}
	if len(t.OutputFormats) == 0 {
		t.OutputFormats = []models.OutputFormat{models.FormatPDF}
	}
	if t.Variables == nil {
		t.Variables = []models.Variable{}
	}
	t.Variables = slices.Clone(t.Variables)
	for i := range t.Variables {
		if t.Variables[i].Type == "" {
			t.Variables[i].Type = models.VariableText
		}
	}
	if t.Sections == nil {
		t.Sections = []models.Section{}
	}
}

// checkDefinition rejects templates that could never render correctly.
func checkDefinition(t *models.Template) error {
	switch {
	case t.Name == "":
		return invalid("name is required")
	case !t.Type.Valid():
		return invalid("unknown template type %q", t.Type)
	case strings.TrimSpace(t.Content.Body) == "":
		return invalid("content body is required")
	}

	switch t.Content.Language {
	case models.LanguageModeRO, models.LanguageModeEN, models.LanguageModeBilingual:
	default:
		return invalid("unknown language mode %q", t.Content.Language)
	}
	switch t.Content.Markup {
	case models.MarkupHTML, models.MarkupMarkdown, models.MarkupText:
	default:
		return invalid("unknown markup %q", t.Content.Markup)
	}

	for _, f := range t.OutputFormats {
		if !f.Valid() {
			return invalid("unknown output format %q", f)
		}
	}

	seen := make(map[string]bool, len(t.Variables))
	for _, v := range t.Variables {
		if v.Name == "" {
			return invalid("variable name is required")
		}
		if seen[v.Name] {
			return invalid("variable %q declared twice", v.Name)
		}
		seen[v.Name] = true
		switch v.Type {
		case models.VariableText, models.VariableNumber, models.VariableCurrency, models.VariableDate,
			models.VariableBoolean, models.VariableList, models.VariableObject:
		default:
			return invalid("variable %q: unknown type %q", v.Name, v.Type)
		}
		if v.Validation != nil && v.Validation.Pattern != "" {
			if _, err := regexp.Compile(v.Validation.Pattern); err != nil {
				return invalid("variable %q: invalid pattern: %v", v.Name, err)
			}
		}
	}

	if err := engine.CheckSyntax(t.Content); err != nil {
		return fmt.Errorf("%w: %v", models.ErrInvalidInput, err)
	}
	return nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{models.ErrInvalidInput}, args...)...)
}
