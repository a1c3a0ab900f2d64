// store_test.go provides a shared test database helper for all store
// integration tests. Tests are skipped if PostgreSQL is not available.
package store

import (
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"docforge/internal/database"
	"docforge/internal/models"
)

// testDSN returns the PostgreSQL connection string for testing.
// Uses environment variables with defaults matching docker-compose.yml.
func testDSN() string {
	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "docforge")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "docforge")
	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test database and runs migrations.
// If the database is unavailable, the test is skipped.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("pgx", testDSN())
	if err != nil {
		t.Skipf("skipping integration test: cannot open DB: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping integration test: DB not reachable: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// cleanTemplates removes test templates by id. Versions cascade.
func cleanTemplates(t *testing.T, db *sql.DB, ids ...string) {
	t.Helper()
	for _, id := range ids {
		db.Exec("DELETE FROM templates WHERE id = $1", id)
	}
}

// cleanDocuments removes test documents by id.
func cleanDocuments(t *testing.T, db *sql.DB, ids ...string) {
	t.Helper()
	for _, id := range ids {
		db.Exec("DELETE FROM generated_documents WHERE id = $1", id)
	}
}

// testTemplate builds a DRAFT template with a unique tenant so list
// queries only see rows created by the calling test.
func testTemplate(tenant string) *models.Template {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &models.Template{
		ID:     uuid.NewString(),
		Name:   "Store test invoice",
		NameRO: "Factură test",
		Type:   models.TemplateTypeInvoice,
		Status: models.TemplateStatusDraft,
		Content: models.Content{
			Body:     "{{#if language.ro}}FACTURA{{else}}INVOICE{{/if}} {{number}}",
			Language: models.LanguageModeBilingual,
			Markup:   models.MarkupHTML,
		},
		Version:       1,
		Variables:     []models.Variable{{Name: "number", Label: "Number", Type: models.VariableText, Required: true}},
		Sections:      []models.Section{},
		OutputFormats: []models.OutputFormat{models.FormatPDF},
		Metadata:      models.Metadata{Category: "financial", Tags: []string{"vat"}},
		CreatedBy:     "tester",
		TenantID:      tenant,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}
