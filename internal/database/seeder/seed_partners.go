package seeder

import (
	"context"
	"fmt"

	"fluentpro/internal/database"
)

type PartnersSeeder struct{}

func (PartnersSeeder) Name() string { return "partners" }

func (PartnersSeeder) Run(ctx context.Context, db database.DB) error {
	if err := EnsureTableColumns(ctx, db, "partners", "id", "name", "is_active", "created_at"); err != nil {
		return err
	}

	tx, err := db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(context.Background())
	}()

	names := []string{
		"Clients",
		"Senior Management",
		"Suppliers",
		"Colleagues",
		"Prospects",
		"Stakeholders",
	}

	for _, name := range names {
		if _, err := tx.Exec(
			ctx,
			`INSERT INTO partners (id, name, is_active) VALUES (gen_random_uuid(), $1, TRUE) ON CONFLICT (name) DO NOTHING`,
			name,
		); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
