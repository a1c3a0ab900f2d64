// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"strings"
	"time"

	"docforge/internal/value"
)

// GeneratedDocument is the immutable artifact of one successful render.
type GeneratedDocument struct {
	ID              string       `json:"id"`
	TemplateID      string       `json:"template_id"`
	TemplateVersion int          `json:"template_version"`
	TemplateName    string       `json:"template_name"`
	Format          OutputFormat `json:"format"`
	Content         string       `json:"content"`
	Values          value.Value  `json:"values"`
	Language        string       `json:"language"`
	Size            int64        `json:"size"`
	GeneratedBy     string       `json:"generated_by"`
	TenantID        string       `json:"tenant_id,omitempty"`
	GeneratedAt     time.Time    `json:"generated_at"`
	ExpiresAt       *time.Time   `json:"expires_at,omitempty"`
}

// Expired reports whether the document's expiry has passed at now.
func (d *GeneratedDocument) Expired(now time.Time) bool {
	return d.ExpiresAt != nil && !now.Before(*d.ExpiresAt)
}

// DocumentFilter narrows document listings. Zero fields do not filter.
type DocumentFilter struct {
	TemplateID  string
	GeneratedBy string
	TenantID    string
	From        *time.Time
	To          *time.Time
	Limit       int
	Offset      int
}

// Match reports whether d satisfies every set criterion. From is
// inclusive, To is exclusive.
func (f DocumentFilter) Match(d *GeneratedDocument) bool {
	if f.TemplateID != "" && d.TemplateID != f.TemplateID {
		return false
	}
	if f.GeneratedBy != "" && d.GeneratedBy != f.GeneratedBy {
		return false
	}
	if f.TenantID != "" && d.TenantID != f.TenantID {
		return false
	}
	if f.From != nil && d.GeneratedAt.Before(*f.From) {
		return false
	}
	if f.To != nil && !d.GeneratedAt.Before(*f.To) {
		return false
	}
	return true
}

// Statistics aggregates template and document counts.
type Statistics struct {
	TotalTemplates    int                    `json:"total_templates"`
	TemplatesByType   map[TemplateType]int   `json:"templates_by_type"`
	TemplatesByStatus map[TemplateStatus]int `json:"templates_by_status"`
	SystemTemplates   int                    `json:"system_templates"`
	TotalDocuments    int                    `json:"total_documents"`
	DocumentsByFormat map[OutputFormat]int   `json:"documents_by_format"`
	TotalUsage        int64                  `json:"total_usage"`
	MostUsed          []TemplateUsage        `json:"most_used"`
}

// TemplateUsage is one entry of the most-used ranking.
type TemplateUsage struct {
	TemplateID string `json:"template_id"`
	Name       string `json:"name"`
	UsageCount int64  `json:"usage_count"`
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}
