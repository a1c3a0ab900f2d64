package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"docforge/internal/models"
)

func TestTemplateStoreRoundTrip(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	s := NewTemplateStore(db)

	tmpl := testTemplate(uuid.NewString())
	t.Cleanup(func() { cleanTemplates(t, db, tmpl.ID) })

	first := tmpl.Snapshot(uuid.NewString(), "Initial version", "tester", tmpl.CreatedAt)
	if err := s.InsertTemplate(ctx, tmpl, first); err != nil {
		t.Fatalf("InsertTemplate: %v", err)
	}

	got, err := s.FindTemplate(ctx, tmpl.ID)
	if err != nil || got == nil {
		t.Fatalf("FindTemplate: %v, %v", got, err)
	}
	if got.Content.Body != tmpl.Content.Body || got.Variables[0].Name != "number" || got.Metadata.Tags[0] != "vat" {
		t.Errorf("unexpected template: %+v", got)
	}
	if got.PublishedAt != nil {
		t.Errorf("published_at = %v, want nil", got.PublishedAt)
	}
}

func TestTemplateStoreSaveAppendsVersion(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	s := NewTemplateStore(db)

	tmpl := testTemplate(uuid.NewString())
	t.Cleanup(func() { cleanTemplates(t, db, tmpl.ID) })
	if err := s.InsertTemplate(ctx, tmpl, tmpl.Snapshot(uuid.NewString(), "Initial version", "tester", tmpl.CreatedAt)); err != nil {
		t.Fatalf("InsertTemplate: %v", err)
	}

	if err := s.IncrementUsage(ctx, tmpl.ID); err != nil {
		t.Fatalf("IncrementUsage: %v", err)
	}

	now := time.Now().UTC().Truncate(time.Microsecond)
	tmpl.Status = models.TemplateStatusActive
	tmpl.PublishedAt = &now
	tmpl.Metadata.UsageCount = 0
	if err := s.SaveTemplate(ctx, tmpl, tmpl.Snapshot(uuid.NewString(), "publish", "tester", now)); err != nil {
		t.Fatalf("SaveTemplate: %v", err)
	}

	got, _ := s.FindTemplate(ctx, tmpl.ID)
	if got.Status != models.TemplateStatusActive || got.PublishedAt == nil {
		t.Errorf("status %s published %v", got.Status, got.PublishedAt)
	}
	if got.Metadata.UsageCount != 1 {
		t.Errorf("usage = %d, want 1 (save must not reset it)", got.Metadata.UsageCount)
	}

	versions, err := s.ListVersions(ctx, tmpl.ID)
	if err != nil {
		t.Fatalf("ListVersions: %v", err)
	}
	if len(versions) != 2 || versions[0].Changelog != "Initial version" || versions[1].Changelog != "publish" {
		t.Errorf("versions = %+v", versions)
	}
}

func TestTemplateStoreSaveMissing(t *testing.T) {
	db := testDB(t)
	s := NewTemplateStore(db)

	if err := s.SaveTemplate(context.Background(), testTemplate(""), nil); err == nil {
		t.Error("expected error saving an unknown template")
	}
}

func TestTemplateStoreListAndDelete(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	s := NewTemplateStore(db)
	tenant := uuid.NewString()

	a := testTemplate(tenant)
	b := testTemplate(tenant)
	b.Name = "Store test contract"
	b.NameRO = "Contract 100% test"
	b.Type = models.TemplateTypeContract
	t.Cleanup(func() { cleanTemplates(t, db, a.ID, b.ID) })

	for _, tmpl := range []*models.Template{a, b} {
		if err := s.InsertTemplate(ctx, tmpl, nil); err != nil {
			t.Fatalf("InsertTemplate: %v", err)
		}
	}

	tests := []struct {
		name   string
		filter models.TemplateFilter
		want   int
	}{
		{"tenant", models.TemplateFilter{TenantID: tenant}, 2},
		{"type", models.TemplateFilter{TenantID: tenant, Type: models.TemplateTypeContract}, 1},
		{"search ro", models.TemplateFilter{TenantID: tenant, Search: "100%"}, 1},
		{"search case", models.TemplateFilter{TenantID: tenant, Search: "STORE TEST"}, 2},
		{"status", models.TemplateFilter{TenantID: tenant, Status: models.TemplateStatusActive}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.ListTemplates(ctx, tt.filter)
			if err != nil {
				t.Fatalf("ListTemplates: %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("got %d templates, want %d", len(got), tt.want)
			}
		})
	}

	ok, err := s.DeleteTemplate(ctx, a.ID)
	if err != nil || !ok {
		t.Fatalf("DeleteTemplate = %v, %v", ok, err)
	}
	if ok, _ := s.DeleteTemplate(ctx, a.ID); ok {
		t.Error("second delete reported a deletion")
	}
	if got, _ := s.FindTemplate(ctx, a.ID); got != nil {
		t.Error("template still present after delete")
	}
}
