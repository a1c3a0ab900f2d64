package documents

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"docforge/internal/engine"
	"docforge/internal/locale"
	"docforge/internal/markdown"
	"docforge/internal/models"
	"docforge/internal/store/memory"
	"docforge/internal/templates"
	"docforge/internal/value"
)

// countingRenderer records how often the interpreter runs.
type countingRenderer struct {
	next  Renderer
	mu    sync.Mutex
	calls int
}

func (r *countingRenderer) Render(c models.Content, bag value.Value, lang locale.Language) (string, error) {
	r.mu.Lock()
	r.calls++
	r.mu.Unlock()
	return r.next.Render(c, bag, lang)
}

type fakeArchive struct {
	mu      sync.Mutex
	objects map[string][]byte
	fail    bool
}

func (a *fakeArchive) Put(_ context.Context, key, _ string, body []byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.fail {
		return errors.New("bucket unavailable")
	}
	a.objects[key] = body
	return nil
}

func (a *fakeArchive) Delete(_ context.Context, key string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.objects, key)
	return nil
}

type fakeCache struct {
	mu   sync.Mutex
	docs map[string]*models.GeneratedDocument
	hits int
}

func (c *fakeCache) Get(_ context.Context, id string) (*models.GeneratedDocument, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	d, ok := c.docs[id]
	if ok {
		c.hits++
	}
	return d, ok
}

func (c *fakeCache) Set(_ context.Context, d *models.GeneratedDocument) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.docs[d.ID] = d
}

func (c *fakeCache) Invalidate(_ context.Context, id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.docs, id)
}

type fixture struct {
	svc      *Service
	manager  *templates.Manager
	store    *memory.Store
	renderer *countingRenderer
	now      *time.Time
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	var (
		mu  sync.Mutex
		seq int
	)
	ids := func() string {
		mu.Lock()
		defer mu.Unlock()
		seq++
		return fmt.Sprintf("doc-%03d", seq)
	}
	now := time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	store := memory.New()
	manager := templates.NewManager(store, nil, templates.WithClock(clock))
	renderer := &countingRenderer{next: engine.NewInterpreter(locale.MustRegistry("RON"))}

	opts = append([]Option{WithClock(clock), WithIDGenerator(ids)}, opts...)
	svc := NewService(manager, store, engine.NewValidator(), renderer, nil, opts...)
	return &fixture{svc: svc, manager: manager, store: store, renderer: renderer, now: &now}
}

func (f *fixture) template(t *testing.T, p templates.CreateParams, publish bool) *models.Template {
	t.Helper()
	ctx := context.Background()
	tmpl, err := f.manager.Create(ctx, p, "author")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if publish {
		if tmpl, err = f.manager.Publish(ctx, tmpl.ID, "", "author"); err != nil {
			t.Fatalf("Publish: %v", err)
		}
	}
	return tmpl
}

func invoiceTemplate() templates.CreateParams {
	return templates.CreateParams{
		Name:   "Invoice",
		NameRO: "Factură",
		Type:   models.TemplateTypeInvoice,
		Content: models.Content{
			Body:     "{{#if language.ro}}FACTURA{{else}}INVOICE{{/if}} {{number}}",
			Language: models.LanguageModeBilingual,
		},
		Variables: []models.Variable{
			{Name: "number", Label: "Number", Required: true},
			{Name: "customer.name", Label: "Customer", Required: true},
		},
		OutputFormats: []models.OutputFormat{models.FormatPDF, models.FormatHTML},
	}
}

func invoiceValues() value.Value {
	return value.Map(map[string]value.Value{
		"number":   value.String("001"),
		"customer": value.Map(map[string]value.Value{"name": value.String("ACME SRL")}),
	})
}

func TestRenderDocumentBilingual(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	tmpl := f.template(t, invoiceTemplate(), true)

	tests := []struct {
		lang string
		want string
	}{
		{"ro", "FACTURA 001"},
		{"ro-RO", "FACTURA 001"},
		{"ro-MD", "FACTURA 001"},
		{"mo", "FACTURA 001"},
		{"en", "INVOICE 001"},
		{"de", "INVOICE 001"},
		{"fr-FR", "INVOICE 001"},
		{"xx", "INVOICE 001"},
		{"", "FACTURA 001"},
	}
	for _, tt := range tests {
		t.Run(tt.lang, func(t *testing.T) {
			doc, err := f.svc.RenderDocument(ctx, tmpl.ID, invoiceValues(), RenderOptions{Format: models.FormatPDF, Language: tt.lang}, "u1")
			if err != nil {
				t.Fatalf("RenderDocument: %v", err)
			}
			if doc.Content != tt.want {
				t.Errorf("content = %q, want %q", doc.Content, tt.want)
			}
			if doc.TemplateVersion != tmpl.Version || doc.Format != models.FormatPDF || doc.Size != int64(len(tt.want)) {
				t.Errorf("unexpected document: %+v", doc)
			}
		})
	}
}

func TestRenderDocumentRejectsDraft(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	tmpl := f.template(t, invoiceTemplate(), false)

	_, err := f.svc.RenderDocument(ctx, tmpl.ID, invoiceValues(), RenderOptions{Format: models.FormatPDF}, "u1")
	if !errors.Is(err, models.ErrNotActive) {
		t.Fatalf("expected ErrNotActive, got %v", err)
	}
	if f.renderer.calls != 0 {
		t.Errorf("renderer called %d times", f.renderer.calls)
	}
	docs, _ := f.svc.ListDocuments(ctx, models.DocumentFilter{})
	if len(docs) != 0 {
		t.Errorf("stored %d documents, want 0", len(docs))
	}
}

func TestRenderDocumentMissingVariable(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	tmpl := f.template(t, invoiceTemplate(), true)

	values := value.Map(map[string]value.Value{"number": value.String("001")})
	_, err := f.svc.RenderDocument(ctx, tmpl.ID, values, RenderOptions{Format: models.FormatPDF}, "u1")
	if !errors.Is(err, models.ErrValidationFailed) {
		t.Fatalf("expected ErrValidationFailed, got %v", err)
	}
	var verr *models.ValidationError
	if !errors.As(err, &verr) || verr.Variable != "customer.name" || !verr.Missing {
		t.Errorf("unexpected validation error: %#v", err)
	}
	if f.renderer.calls != 0 {
		t.Errorf("renderer called %d times", f.renderer.calls)
	}

	got, _ := f.manager.GetTemplate(ctx, tmpl.ID)
	if got.Metadata.UsageCount != 0 {
		t.Errorf("usage = %d, want 0", got.Metadata.UsageCount)
	}
}

func TestRenderDocumentErrors(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	tmpl := f.template(t, invoiceTemplate(), true)

	tests := []struct {
		name string
		id   string
		opts RenderOptions
		want error
	}{
		{"unknown template", "missing", RenderOptions{Format: models.FormatPDF}, models.ErrNotFound},
		{"undeclared format", tmpl.ID, RenderOptions{Format: models.FormatDOCX}, models.ErrUnsupportedFormat},
		{"unknown format", tmpl.ID, RenderOptions{Format: "odt"}, models.ErrUnsupportedFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.RenderDocument(ctx, tt.id, invoiceValues(), tt.opts, "u1")
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
	if f.renderer.calls != 0 {
		t.Errorf("renderer called %d times", f.renderer.calls)
	}
}

func TestRenderDocumentDeterministicAndCounted(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	tmpl := f.template(t, invoiceTemplate(), true)
	opts := RenderOptions{Format: models.FormatHTML, Language: "en"}

	first, err := f.svc.RenderDocument(ctx, tmpl.ID, invoiceValues(), opts, "u1")
	if err != nil {
		t.Fatalf("RenderDocument: %v", err)
	}
	second, err := f.svc.RenderDocument(ctx, tmpl.ID, invoiceValues(), opts, "u2")
	if err != nil {
		t.Fatalf("RenderDocument: %v", err)
	}
	if first.Content != second.Content {
		t.Errorf("content differs: %q vs %q", first.Content, second.Content)
	}
	if first.ID == second.ID {
		t.Error("documents share an id")
	}

	got, _ := f.manager.GetTemplate(ctx, tmpl.ID)
	if got.Metadata.UsageCount != 2 {
		t.Errorf("usage = %d, want 2", got.Metadata.UsageCount)
	}

	mine, _ := f.svc.ListDocuments(ctx, models.DocumentFilter{GeneratedBy: "u2"})
	if len(mine) != 1 || mine[0].ID != second.ID {
		t.Errorf("filter by actor returned %v", mine)
	}
}

func TestRenderDocumentAppliesDefaults(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := invoiceTemplate()
	p.Content.Body = "{{number}} {{vat}}%"
	rate := value.Number(19)
	p.Variables = append(p.Variables, models.Variable{Name: "vat", Label: "VAT", Type: models.VariableNumber, Default: &rate})
	tmpl := f.template(t, p, true)

	doc, err := f.svc.RenderDocument(ctx, tmpl.ID, invoiceValues(), RenderOptions{Format: models.FormatPDF}, "u1")
	if err != nil {
		t.Fatalf("RenderDocument: %v", err)
	}
	if doc.Content != "001 19%" {
		t.Errorf("content = %q", doc.Content)
	}
	if !doc.Values.Field("vat").IsAbsent() {
		t.Error("stored values were modified by defaults")
	}
}

func TestPreview(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	tmpl := f.template(t, invoiceTemplate(), false)

	out, err := f.svc.Preview(ctx, tmpl.ID, invoiceValues(), RenderOptions{Language: "en"})
	if err != nil {
		t.Fatalf("Preview: %v", err)
	}
	if out != "INVOICE 001" {
		t.Errorf("preview = %q", out)
	}
	out, err = f.svc.Preview(ctx, tmpl.ID, invoiceValues(), RenderOptions{Language: "de"})
	if err != nil || out != "INVOICE 001" {
		t.Errorf("preview with de = %q, %v", out, err)
	}

	docs, _ := f.svc.ListDocuments(ctx, models.DocumentFilter{})
	got, _ := f.manager.GetTemplate(ctx, tmpl.ID)
	if len(docs) != 0 || got.Metadata.UsageCount != 0 {
		t.Errorf("preview stored %d documents and counted %d uses", len(docs), got.Metadata.UsageCount)
	}
}

func TestLanguageFallsBackToTemplateMode(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := invoiceTemplate()
	p.Content.Language = models.LanguageModeEN
	p.Content.Body = "{{issued|date}}"
	p.Variables = []models.Variable{{Name: "issued", Label: "Issued", Type: models.VariableDate}}
	tmpl := f.template(t, p, true)

	values := value.Map(map[string]value.Value{"issued": value.String("2026-01-31")})
	doc, err := f.svc.RenderDocument(ctx, tmpl.ID, values, RenderOptions{Format: models.FormatHTML}, "u1")
	if err != nil {
		t.Fatalf("RenderDocument: %v", err)
	}
	if doc.Language != string(locale.English) || doc.Content != "1/31/2026" {
		t.Errorf("language %q content %q", doc.Language, doc.Content)
	}
}

func TestMarkdownConvertedForHTML(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, WithMarkdown(markdown.Converter{}))
	p := invoiceTemplate()
	p.Content.Markup = models.MarkupMarkdown
	p.Content.Body = "# {{number}}"
	tmpl := f.template(t, p, true)

	html, err := f.svc.RenderDocument(ctx, tmpl.ID, invoiceValues(), RenderOptions{Format: models.FormatHTML}, "u1")
	if err != nil {
		t.Fatalf("RenderDocument: %v", err)
	}
	if !strings.Contains(html.Content, "<h1") || !strings.Contains(html.Content, "001</h1>") {
		t.Errorf("html = %q", html.Content)
	}

	pdf, err := f.svc.RenderDocument(ctx, tmpl.ID, invoiceValues(), RenderOptions{Format: models.FormatPDF}, "u1")
	if err != nil {
		t.Fatalf("RenderDocument: %v", err)
	}
	if pdf.Content != "# 001" {
		t.Errorf("pdf source = %q, want raw markdown", pdf.Content)
	}
}

func TestCacheAndArchive(t *testing.T) {
	ctx := context.Background()
	archive := &fakeArchive{objects: map[string][]byte{}}
	cache := &fakeCache{docs: map[string]*models.GeneratedDocument{}}
	f := newFixture(t, WithArchive(archive), WithCache(cache))
	tmpl := f.template(t, invoiceTemplate(), true)

	doc, err := f.svc.RenderDocument(ctx, tmpl.ID, invoiceValues(), RenderOptions{Format: models.FormatPDF}, "u1")
	if err != nil {
		t.Fatalf("RenderDocument: %v", err)
	}
	if string(archive.objects["documents/"+doc.ID+".html"]) != doc.Content {
		t.Errorf("archive = %v", archive.objects)
	}

	if _, err := f.svc.GetDocument(ctx, doc.ID); err != nil {
		t.Fatalf("GetDocument: %v", err)
	}
	if cache.hits != 1 {
		t.Errorf("cache hits = %d, want 1", cache.hits)
	}

	if err := f.svc.DeleteDocument(ctx, doc.ID, "u1"); err != nil {
		t.Fatalf("DeleteDocument: %v", err)
	}
	if len(archive.objects) != 0 || len(cache.docs) != 0 {
		t.Errorf("leftovers: archive=%d cache=%d", len(archive.objects), len(cache.docs))
	}
	if _, err := f.svc.GetDocument(ctx, doc.ID); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := f.svc.DeleteDocument(ctx, doc.ID, "u1"); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("second delete: expected ErrNotFound, got %v", err)
	}
}

func TestArchiveFailureKeepsDocument(t *testing.T) {
	ctx := context.Background()
	archive := &fakeArchive{objects: map[string][]byte{}, fail: true}
	f := newFixture(t, WithArchive(archive))
	tmpl := f.template(t, invoiceTemplate(), true)

	doc, err := f.svc.RenderDocument(ctx, tmpl.ID, invoiceValues(), RenderOptions{Format: models.FormatPDF}, "u1")
	if err != nil {
		t.Fatalf("RenderDocument: %v", err)
	}
	if _, err := f.svc.GetDocument(ctx, doc.ID); err != nil {
		t.Errorf("GetDocument: %v", err)
	}
}

func TestPurgeExpired(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, WithTTL(time.Hour))
	tmpl := f.template(t, invoiceTemplate(), true)

	doc, err := f.svc.RenderDocument(ctx, tmpl.ID, invoiceValues(), RenderOptions{Format: models.FormatPDF}, "u1")
	if err != nil {
		t.Fatalf("RenderDocument: %v", err)
	}
	if doc.ExpiresAt == nil || !doc.ExpiresAt.Equal(f.now.Add(time.Hour)) {
		t.Fatalf("expires at %v", doc.ExpiresAt)
	}

	if n, err := f.svc.PurgeExpired(ctx); err != nil || n != 0 {
		t.Fatalf("early purge removed %d (err %v)", n, err)
	}

	*f.now = f.now.Add(2 * time.Hour)
	n, err := f.svc.PurgeExpired(ctx)
	if err != nil || n != 1 {
		t.Fatalf("purge removed %d (err %v), want 1", n, err)
	}
	if _, err := f.svc.GetDocument(ctx, doc.ID); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	if _, err := f.manager.EnsureSystemTemplates(ctx); err != nil {
		t.Fatalf("EnsureSystemTemplates: %v", err)
	}
	tmpl := f.template(t, invoiceTemplate(), true)
	f.template(t, invoiceTemplate(), false)

	for _, format := range []models.OutputFormat{models.FormatPDF, models.FormatPDF, models.FormatHTML} {
		if _, err := f.svc.RenderDocument(ctx, tmpl.ID, invoiceValues(), RenderOptions{Format: format}, "u1"); err != nil {
			t.Fatalf("RenderDocument: %v", err)
		}
	}

	st, err := f.svc.Stats(ctx, "")
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if st.TotalTemplates != 5 || st.SystemTemplates != 3 {
		t.Errorf("templates total=%d system=%d", st.TotalTemplates, st.SystemTemplates)
	}
	if st.TemplatesByStatus[models.TemplateStatusDraft] != 1 || st.TemplatesByType[models.TemplateTypeInvoice] != 3 {
		t.Errorf("by status %v by type %v", st.TemplatesByStatus, st.TemplatesByType)
	}
	if st.TotalDocuments != 3 || st.DocumentsByFormat[models.FormatPDF] != 2 {
		t.Errorf("documents total=%d by format %v", st.TotalDocuments, st.DocumentsByFormat)
	}
	if st.TotalUsage != 3 || len(st.MostUsed) != 1 || st.MostUsed[0].TemplateID != tmpl.ID {
		t.Errorf("usage %d most used %v", st.TotalUsage, st.MostUsed)
	}
}
