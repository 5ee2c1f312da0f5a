package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"fluentpro/internal/database"
	"fluentpro/internal/domain/onboarding"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var (
	ErrProfileNotFound = errors.New("onboarding profile not found")
	ErrVersionConflict = errors.New("profile version conflict")
)

// ProfileRepository persists the onboarding slice of a user. Single-field
// writes are compare-and-set against the profile version; Complete runs its
// check and transition inside one transaction holding the profile row.
type ProfileRepository interface {
	Get(ctx context.Context, userID uuid.UUID) (onboarding.Profile, error)
	SetNativeLanguage(ctx context.Context, userID uuid.UUID, code string, expectedVersion int64) (onboarding.Profile, error)
	SetIndustry(ctx context.Context, userID uuid.UUID, industryID uuid.UUID, expectedVersion int64) (onboarding.Profile, error)
	SetRole(ctx context.Context, userID uuid.UUID, roleID uuid.UUID, expectedVersion int64) (onboarding.Profile, error)
	ReplacePartners(ctx context.Context, userID uuid.UUID, partnerIDs []uuid.UUID, expectedVersion int64) (onboarding.Profile, error)
	Complete(ctx context.Context, userID uuid.UUID, check func(onboarding.Profile) error) (onboarding.Profile, error)
}

type PostgresProfileRepository struct {
	db database.DB
}

func NewPostgresProfileRepository(db database.DB) *PostgresProfileRepository {
	return &PostgresProfileRepository{db: db}
}

type querier interface {
	Exec(ctx context.Context, query string, args ...any) (int64, error)
	Query(ctx context.Context, query string, args ...any) (database.Rows, error)
	QueryRow(ctx context.Context, query string, args ...any) database.Row
}

func (r *PostgresProfileRepository) Get(ctx context.Context, userID uuid.UUID) (onboarding.Profile, error) {
	return getProfile(ctx, r.db, userID, false)
}

func (r *PostgresProfileRepository) SetNativeLanguage(ctx context.Context, userID uuid.UUID, code string, expectedVersion int64) (onboarding.Profile, error) {
	return r.casUpdate(ctx, userID, expectedVersion,
		`UPDATE user_onboarding_profiles
		 SET native_language = $3, version = version + 1, updated_at = now()
		 WHERE user_id = $1 AND version = $2`,
		code,
	)
}

func (r *PostgresProfileRepository) SetIndustry(ctx context.Context, userID uuid.UUID, industryID uuid.UUID, expectedVersion int64) (onboarding.Profile, error) {
	return r.casUpdate(ctx, userID, expectedVersion,
		`UPDATE user_onboarding_profiles
		 SET industry_id = $3, version = version + 1, updated_at = now()
		 WHERE user_id = $1 AND version = $2`,
		industryID,
	)
}

func (r *PostgresProfileRepository) SetRole(ctx context.Context, userID uuid.UUID, roleID uuid.UUID, expectedVersion int64) (onboarding.Profile, error) {
	return r.casUpdate(ctx, userID, expectedVersion,
		`UPDATE user_onboarding_profiles
		 SET role_id = $3, version = version + 1, updated_at = now()
		 WHERE user_id = $1 AND version = $2`,
		roleID,
	)
}

func (r *PostgresProfileRepository) casUpdate(ctx context.Context, userID uuid.UUID, expectedVersion int64, query string, arg any) (onboarding.Profile, error) {
	affected, err := r.db.Exec(ctx, query, userID, expectedVersion, arg)
	if err != nil {
		return onboarding.Profile{}, err
	}
	if affected == 0 {
		return onboarding.Profile{}, r.conflictOrMissing(ctx, userID)
	}
	return getProfile(ctx, r.db, userID, false)
}

func (r *PostgresProfileRepository) ReplacePartners(ctx context.Context, userID uuid.UUID, partnerIDs []uuid.UUID, expectedVersion int64) (onboarding.Profile, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return onboarding.Profile{}, err
	}
	defer func() {
		_ = tx.Rollback(context.Background())
	}()

	affected, err := tx.Exec(ctx,
		`UPDATE user_onboarding_profiles
		 SET version = version + 1, updated_at = now()
		 WHERE user_id = $1 AND version = $2`,
		userID, expectedVersion,
	)
	if err != nil {
		return onboarding.Profile{}, err
	}
	if affected == 0 {
		return onboarding.Profile{}, r.conflictOrMissing(ctx, userID)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM user_partner_selections WHERE user_id = $1`, userID); err != nil {
		return onboarding.Profile{}, err
	}
	for i, pid := range partnerIDs {
		_, err := tx.Exec(ctx,
			`INSERT INTO user_partner_selections (user_id, partner_id, priority) VALUES ($1, $2, $3)`,
			userID, pid, i+1,
		)
		if err != nil {
			return onboarding.Profile{}, err
		}
	}

	profile, err := getProfile(ctx, tx, userID, false)
	if err != nil {
		return onboarding.Profile{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return onboarding.Profile{}, err
	}
	return profile, nil
}

// Complete loads the profile under a row lock, runs check against it, and
// commits the COMPLETED transition only if check returns nil. check must be
// pure: it runs while the row lock is held.
func (r *PostgresProfileRepository) Complete(ctx context.Context, userID uuid.UUID, check func(onboarding.Profile) error) (onboarding.Profile, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return onboarding.Profile{}, err
	}
	defer func() {
		_ = tx.Rollback(context.Background())
	}()

	profile, err := getProfile(ctx, tx, userID, true)
	if err != nil {
		return onboarding.Profile{}, err
	}

	if err := check(profile); err != nil {
		return onboarding.Profile{}, err
	}

	completedAt := time.Now().UTC()
	_, err = tx.Exec(ctx,
		`UPDATE user_onboarding_profiles
		 SET completed_at = $2, version = version + 1, updated_at = now()
		 WHERE user_id = $1`,
		userID, completedAt,
	)
	if err != nil {
		return onboarding.Profile{}, err
	}

	profile, err = getProfile(ctx, tx, userID, false)
	if err != nil {
		return onboarding.Profile{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return onboarding.Profile{}, err
	}
	return profile, nil
}

func (r *PostgresProfileRepository) conflictOrMissing(ctx context.Context, userID uuid.UUID) error {
	var exists bool
	row := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM user_onboarding_profiles WHERE user_id = $1)`, userID)
	if err := row.Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return ErrProfileNotFound
	}
	return ErrVersionConflict
}

func getProfile(ctx context.Context, q querier, userID uuid.UUID, forUpdate bool) (onboarding.Profile, error) {
	query := `SELECT user_id, native_language, industry_id, role_id, completed_at, version, updated_at
		 FROM user_onboarding_profiles
		 WHERE user_id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	var p onboarding.Profile
	row := q.QueryRow(ctx, query, userID)
	if err := row.Scan(&p.UserID, &p.NativeLanguage, &p.IndustryID, &p.RoleID, &p.CompletedAt, &p.Version, &p.UpdatedAt); err != nil {
		if err == sql.ErrNoRows || errors.Is(err, pgx.ErrNoRows) {
			return onboarding.Profile{}, ErrProfileNotFound
		}
		return onboarding.Profile{}, err
	}

	rows, err := q.Query(ctx,
		`SELECT partner_id, priority FROM user_partner_selections WHERE user_id = $1 ORDER BY priority ASC`,
		userID,
	)
	if err != nil {
		return onboarding.Profile{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var sel onboarding.PartnerSelection
		if err := rows.Scan(&sel.PartnerID, &sel.Priority); err != nil {
			return onboarding.Profile{}, err
		}
		p.Partners = append(p.Partners, sel)
	}
	if err := rows.Err(); err != nil {
		return onboarding.Profile{}, err
	}
	return p, nil
}
