// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package documents

import (
	"context"
	"fmt"
	"sort"

	"docforge/internal/models"
)

// mostUsedLimit caps the usage ranking in Statistics.
const mostUsedLimit = 5

// Stats aggregates template and document counts. A non-empty tenantID
// scopes both to that tenant.
func (s *Service) Stats(ctx context.Context, tenantID string) (*models.Statistics, error) {
	list, err := s.templates.ListTemplates(ctx, models.TemplateFilter{TenantID: tenantID})
	if err != nil {
		return nil, fmt.Errorf("stats templates: %w", err)
	}
	byFormat, err := s.repo.CountDocumentsByFormat(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("stats documents: %w", err)
	}

	st := &models.Statistics{
		TotalTemplates:    len(list),
		TemplatesByType:   make(map[models.TemplateType]int),
		TemplatesByStatus: make(map[models.TemplateStatus]int),
		DocumentsByFormat: byFormat,
	}
	for _, n := range byFormat {
		st.TotalDocuments += n
	}

	ranked := make([]models.TemplateUsage, 0, len(list))
	for _, t := range list {
		st.TemplatesByType[t.Type]++
		st.TemplatesByStatus[t.Status]++
		if t.IsSystem {
			st.SystemTemplates++
		}
		st.TotalUsage += t.Metadata.UsageCount
		if t.Metadata.UsageCount > 0 {
			ranked = append(ranked, models.TemplateUsage{
				TemplateID: t.ID,
				Name:       t.Name,
				UsageCount: t.Metadata.UsageCount,
			})
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].UsageCount > ranked[j].UsageCount })
	if len(ranked) > mostUsedLimit {
		ranked = ranked[:mostUsedLimit]
	}
	st.MostUsed = ranked
	return st, nil
}
