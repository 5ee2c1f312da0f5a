package seeder

import (
	"context"
	"fmt"

	"fluentpro/internal/database"
)

type RolesSeeder struct{}

func (RolesSeeder) Name() string { return "roles" }

func (RolesSeeder) Run(ctx context.Context, db database.DB) error {
	if err := EnsureTableColumns(ctx, db, "roles", "id", "title", "description", "industry_id", "created_by", "embedded_at", "created_at"); err != nil {
		return err
	}

	tx, err := db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(context.Background())
	}()

	items := []struct {
		Title       string
		Description string
		Industry    string
	}{
		{Title: "Relationship Manager", Description: "Manages client portfolios and advises on banking products.", Industry: "Banking & Finance"},
		{Title: "Compliance Officer", Description: "Ensures operations meet regulatory requirements.", Industry: "Banking & Finance"},
		{Title: "Operations Manager", Description: "Oversees vessel schedules, cargo operations and port coordination.", Industry: "Shipping & Logistics"},
		{Title: "Freight Coordinator", Description: "Coordinates shipments, documentation and carrier communication.", Industry: "Shipping & Logistics"},
		{Title: "Property Consultant", Description: "Advises clients on buying, selling and leasing property.", Industry: "Real Estate"},
		{Title: "Leasing Manager", Description: "Manages tenancy agreements and landlord relationships.", Industry: "Real Estate"},
		{Title: "Front Office Manager", Description: "Leads reception operations and guest relations.", Industry: "Hotels & Hospitality"},
		{Title: "Food & Beverage Supervisor", Description: "Supervises restaurant and banquet service teams.", Industry: "Hotels & Hospitality"},
	}

	for _, it := range items {
		if _, err := tx.Exec(
			ctx,
			`INSERT INTO roles (id, title, description, industry_id)
			 SELECT gen_random_uuid(), $1, $2, i.id FROM industries i WHERE i.name = $3
			 ON CONFLICT (lower(title), industry_id) WHERE created_by IS NULL DO NOTHING`,
			it.Title,
			it.Description,
			it.Industry,
		); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
