package orgs

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

// PGRepository provides PostgreSQL backed persistence.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// Create inserts a new organization.
func (r *PGRepository) Create(ctx context.Context, o Organization) (Organization, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO organizations (name, description, parent_id, created_at, updated_at)
		VALUES ($1, NULLIF($2, ''), $3, NOW(), NOW())
		RETURNING id, created_at, updated_at`,
		o.Name, o.Description, o.ParentID)
	if err := row.Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return Organization{}, ErrDuplicate
		}
		return Organization{}, fmt.Errorf("orgs: insert: %w", err)
	}
	return o, nil
}

// FindByID fetches one organization.
func (r *PGRepository) FindByID(ctx context.Context, id int64) (Organization, error) {
	var o Organization
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, COALESCE(description, ''), parent_id, created_at, updated_at
		FROM organizations WHERE id = $1`, id).
		Scan(&o.ID, &o.Name, &o.Description, &o.ParentID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Organization{}, ErrNotFound
		}
		return Organization{}, fmt.Errorf("orgs: find by id: %w", err)
	}
	return o, nil
}

// FindAll returns all organizations ordered by name.
func (r *PGRepository) FindAll(ctx context.Context) ([]Organization, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, COALESCE(description, ''), parent_id, created_at, updated_at
		FROM organizations ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("orgs: find all: %w", err)
	}
	defer rows.Close()
	var list []Organization
	for rows.Next() {
		var o Organization
		if err := rows.Scan(&o.ID, &o.Name, &o.Description, &o.ParentID, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, fmt.Errorf("orgs: scan row: %w", err)
		}
		list = append(list, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("orgs: iterate rows: %w", err)
	}
	return list, nil
}

// Update persists the mutable fields.
func (r *PGRepository) Update(ctx context.Context, o Organization) (Organization, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE organizations
		SET name = $2, description = NULLIF($3, ''), parent_id = $4, updated_at = NOW()
		WHERE id = $1`,
		o.ID, o.Name, o.Description, o.ParentID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return Organization{}, ErrDuplicate
		}
		return Organization{}, fmt.Errorf("orgs: update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return Organization{}, ErrNotFound
	}
	return r.FindByID(ctx, o.ID)
}

// Delete removes an organization by id.
func (r *PGRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM organizations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("orgs: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

var _ Repository = (*PGRepository)(nil)
