package repository

import (
	"context"
	"database/sql"
	"errors"

	"fluentpro/internal/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var ErrIndustryNotFound = errors.New("industry not found")

type Industry struct {
	ID   uuid.UUID
	Name string
}

type IndustryRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (Industry, error)
	FindByName(ctx context.Context, name string) (Industry, error)
	List(ctx context.Context) ([]Industry, error)
}

type PostgresIndustryRepository struct {
	db database.DB
}

func NewPostgresIndustryRepository(db database.DB) *PostgresIndustryRepository {
	return &PostgresIndustryRepository{db: db}
}

func (r *PostgresIndustryRepository) FindByID(ctx context.Context, id uuid.UUID) (Industry, error) {
	row := r.db.QueryRow(ctx, `SELECT id, name FROM industries WHERE id = $1`, id)
	return scanIndustry(row)
}

func (r *PostgresIndustryRepository) FindByName(ctx context.Context, name string) (Industry, error) {
	row := r.db.QueryRow(ctx, `SELECT id, name FROM industries WHERE lower(name) = lower($1)`, name)
	return scanIndustry(row)
}

func (r *PostgresIndustryRepository) List(ctx context.Context) ([]Industry, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name FROM industries ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Industry, 0)
	for rows.Next() {
		var it Industry
		if err := rows.Scan(&it.ID, &it.Name); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func scanIndustry(row database.Row) (Industry, error) {
	var it Industry
	if err := row.Scan(&it.ID, &it.Name); err != nil {
		if err == sql.ErrNoRows || errors.Is(err, pgx.ErrNoRows) {
			return Industry{}, ErrIndustryNotFound
		}
		return Industry{}, err
	}
	return it, nil
}
