package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"fluentpro/internal/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var ErrRoleNotFound = errors.New("role not found")

type Role struct {
	ID          uuid.UUID
	Title       string
	Description string
	IndustryID  *uuid.UUID
	CreatedBy   *uuid.UUID
	EmbeddedAt  *time.Time
}

type RoleRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (Role, error)
	// FindByIDs returns the subset of ids present in the catalog, keyed by id.
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]Role, error)
	Create(ctx context.Context, role Role) (Role, error)
	// UpsertSystemRole inserts or refreshes a system-seeded role keyed by
	// (title, industry) and returns its id.
	UpsertSystemRole(ctx context.Context, title, description string, industryID *uuid.UUID) (Role, error)
	MarkEmbedded(ctx context.Context, id uuid.UUID, at time.Time) error
}

type PostgresRoleRepository struct {
	db database.DB
}

func NewPostgresRoleRepository(db database.DB) *PostgresRoleRepository {
	return &PostgresRoleRepository{db: db}
}

const roleColumns = `id, title, description, industry_id, created_by, embedded_at`

func (r *PostgresRoleRepository) FindByID(ctx context.Context, id uuid.UUID) (Role, error) {
	row := r.db.QueryRow(ctx, `SELECT `+roleColumns+` FROM roles WHERE id = $1`, id)
	return scanRole(row)
}

func (r *PostgresRoleRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]Role, error) {
	out := make(map[uuid.UUID]Role, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	rows, err := r.db.Query(ctx, `SELECT `+roleColumns+` FROM roles WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var role Role
		if err := rows.Scan(&role.ID, &role.Title, &role.Description, &role.IndustryID, &role.CreatedBy, &role.EmbeddedAt); err != nil {
			return nil, err
		}
		out[role.ID] = role
	}
	return out, rows.Err()
}

func (r *PostgresRoleRepository) Create(ctx context.Context, role Role) (Role, error) {
	if role.ID == uuid.Nil {
		role.ID = uuid.New()
	}
	_, err := r.db.Exec(ctx,
		`INSERT INTO roles (id, title, description, industry_id, created_by)
		 VALUES ($1, $2, $3, $4, $5)`,
		role.ID, role.Title, role.Description, role.IndustryID, role.CreatedBy,
	)
	if err != nil {
		return Role{}, err
	}
	return r.FindByID(ctx, role.ID)
}

func (r *PostgresRoleRepository) UpsertSystemRole(ctx context.Context, title, description string, industryID *uuid.UUID) (Role, error) {
	row := r.db.QueryRow(ctx,
		`INSERT INTO roles (id, title, description, industry_id)
		 VALUES (gen_random_uuid(), $1, $2, $3)
		 ON CONFLICT (lower(title), industry_id) WHERE created_by IS NULL
		 DO UPDATE SET description = EXCLUDED.description
		 RETURNING `+roleColumns,
		title, description, industryID,
	)
	return scanRole(row)
}

func (r *PostgresRoleRepository) MarkEmbedded(ctx context.Context, id uuid.UUID, at time.Time) error {
	affected, err := r.db.Exec(ctx, `UPDATE roles SET embedded_at = $2 WHERE id = $1`, id, at.UTC())
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrRoleNotFound
	}
	return nil
}

func scanRole(row database.Row) (Role, error) {
	var role Role
	if err := row.Scan(&role.ID, &role.Title, &role.Description, &role.IndustryID, &role.CreatedBy, &role.EmbeddedAt); err != nil {
		if err == sql.ErrNoRows || errors.Is(err, pgx.ErrNoRows) {
			return Role{}, ErrRoleNotFound
		}
		return Role{}, err
	}
	return role, nil
}
