package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"docforge/internal/slug"
)

// defaultCategories are the template categories every installation starts
// with. The built-in templates reference them by slug.
var defaultCategories = []struct {
	name, nameRO, icon string
}{
	{"Financial", "Financiar", "receipt"},
	{"Legal", "Juridic", "scale"},
	{"Human resources", "Resurse umane", "users"},
	{"Sales", "Vânzări", "shopping-cart"},
	{"Other", "Altele", "folder"},
}

// Seed inserts the default template categories. Existing slugs are left
// alone, so Seed is safe to run on every start.
func Seed(ctx context.Context, db *sql.DB) error {
	inserted := 0
	for i, c := range defaultCategories {
		res, err := db.ExecContext(ctx, `
			INSERT INTO template_categories (id, name, name_ro, slug, icon, sort_order)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT DO NOTHING
		`, uuid.NewString(), c.name, c.nameRO, slug.Generate(c.name), c.icon, i+1)
		if err != nil {
			return fmt.Errorf("seed category %s: %w", c.name, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			inserted++
		}
	}

	if inserted == 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}
	slog.Info("database seeded with default categories", "count", inserted)
	return nil
}
