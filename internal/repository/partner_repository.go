package repository

import (
	"context"

	"fluentpro/internal/database"

	"github.com/google/uuid"
)

type Partner struct {
	ID       uuid.UUID
	Name     string
	IsActive bool
}

type PartnerRepository interface {
	ListActive(ctx context.Context) ([]Partner, error)
	// ActiveSet returns which of the given ids exist and are active.
	ActiveSet(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]bool, error)
}

type PostgresPartnerRepository struct {
	db database.DB
}

func NewPostgresPartnerRepository(db database.DB) *PostgresPartnerRepository {
	return &PostgresPartnerRepository{db: db}
}

func (r *PostgresPartnerRepository) ListActive(ctx context.Context) ([]Partner, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, name, is_active FROM partners WHERE is_active = true ORDER BY name ASC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Partner, 0)
	for rows.Next() {
		var p Partner
		if err := rows.Scan(&p.ID, &p.Name, &p.IsActive); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PostgresPartnerRepository) ActiveSet(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]bool, error) {
	out := make(map[uuid.UUID]bool, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	rows, err := r.db.Query(ctx,
		`SELECT id FROM partners WHERE is_active = true AND id = ANY($1)`,
		ids,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out[id] = true
	}
	return out, rows.Err()
}
