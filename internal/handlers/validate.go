package handlers

import (
	"strings"
	"unicode/utf8"

	"docforge/internal/models"
)

// Request size limits. Definition rules live in the template manager;
// these only bound what the API accepts.
const (
	maxRequestBytes    = 2 << 20
	maxTemplateNameLen = 200
	maxDescriptionLen  = 2_000
	maxContentLen      = 500_000
	maxChangelogLen    = 1_000
	defaultPageSize    = 50
	maxPageSize        = 200
)

// validateTemplate checks template inputs and returns the first error found.
// A nil content is not checked.
func validateTemplate(name, description string, c *models.Content) string {
	if utf8.RuneCountInString(strings.TrimSpace(name)) > maxTemplateNameLen {
		return "template name is too long (max 200 characters)"
	}
	if utf8.RuneCountInString(description) > maxDescriptionLen {
		return "description is too long (max 2,000 characters)"
	}
	if c != nil {
		n := utf8.RuneCountInString(c.Header) + utf8.RuneCountInString(c.Body) + utf8.RuneCountInString(c.Footer)
		if n > maxContentLen {
			return "template content is too long (max 500,000 characters)"
		}
	}
	return ""
}

// validateChangelog bounds the changelog attached to a publish.
func validateChangelog(s string) string {
	if utf8.RuneCountInString(s) > maxChangelogLen {
		return "changelog is too long (max 1,000 characters)"
	}
	return ""
}
