package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskhive/taskhive/internal/platform/db"
)

// PGRepository provides PostgreSQL backed persistence. Every read joins
// the creator's user row so the owning organization is the creator's
// current one, not a snapshot taken at insert time.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const taskColumns = `t.id, t.title, COALESCE(t.description, ''), t.status, t.priority,
	t.due_date, t.assigned_to_id, t.created_by_id, u.organization_id, t.created_at, t.updated_at`

// Create inserts a task and returns it with the creator's organization
// resolved. Insert and read-back run in one transaction so the returned
// row reflects the same snapshot.
func (r *PGRepository) Create(ctx context.Context, t Task) (Task, error) {
	var created Task
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var id int64
		if err := tx.QueryRow(ctx, `
			INSERT INTO tasks (title, description, status, priority, due_date, assigned_to_id, created_by_id, created_at, updated_at)
			VALUES ($1, NULLIF($2, ''), $3, $4, $5, $6, $7, NOW(), NOW())
			RETURNING id`,
			t.Title, t.Description, string(t.Status), t.Priority, optionalTimestamp(t.DueDate), t.AssignedToID, t.CreatedByID).Scan(&id); err != nil {
			return fmt.Errorf("tasks: insert: %w", err)
		}
		row := tx.QueryRow(ctx, `
			SELECT `+taskColumns+`
			FROM tasks t
			JOIN users u ON u.id = t.created_by_id
			WHERE t.id = $1`, id)
		loaded, err := scanTask(row)
		if err != nil {
			return fmt.Errorf("tasks: load created: %w", err)
		}
		created = loaded
		return nil
	})
	if err != nil {
		return Task{}, err
	}
	return created, nil
}

// FindByID fetches one task joined with its creator's organization.
func (r *PGRepository) FindByID(ctx context.Context, id int64) (Task, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+taskColumns+`
		FROM tasks t
		JOIN users u ON u.id = t.created_by_id
		WHERE t.id = $1`, id)
	t, err := scanTask(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Task{}, ErrNotFound
		}
		return Task{}, fmt.Errorf("tasks: find by id: %w", err)
	}
	return t, nil
}

// FindAll returns every task regardless of organization.
func (r *PGRepository) FindAll(ctx context.Context) ([]Task, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+taskColumns+`
		FROM tasks t
		JOIN users u ON u.id = t.created_by_id`)
	if err != nil {
		return nil, fmt.Errorf("tasks: find all: %w", err)
	}
	return collectTasks(rows)
}

// FindByCreatorOrg returns tasks whose creator currently belongs to the
// given organization. A nil orgID selects tasks authored by unaffiliated
// creators.
func (r *PGRepository) FindByCreatorOrg(ctx context.Context, orgID *int64) ([]Task, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if orgID == nil {
		rows, err = r.pool.Query(ctx, `
			SELECT `+taskColumns+`
			FROM tasks t
			JOIN users u ON u.id = t.created_by_id
			WHERE u.organization_id IS NULL`)
	} else {
		rows, err = r.pool.Query(ctx, `
			SELECT `+taskColumns+`
			FROM tasks t
			JOIN users u ON u.id = t.created_by_id
			WHERE u.organization_id = $1`, *orgID)
	}
	if err != nil {
		return nil, fmt.Errorf("tasks: find by creator org: %w", err)
	}
	return collectTasks(rows)
}

// Update persists the mutable fields and returns the stored row.
func (r *PGRepository) Update(ctx context.Context, t Task) (Task, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE tasks
		SET title = $2, description = NULLIF($3, ''), status = $4, priority = $5,
		    due_date = $6, assigned_to_id = $7, updated_at = NOW()
		WHERE id = $1`,
		t.ID, t.Title, t.Description, string(t.Status), t.Priority, optionalTimestamp(t.DueDate), t.AssignedToID)
	if err != nil {
		return Task{}, fmt.Errorf("tasks: update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return Task{}, ErrNotFound
	}
	return r.FindByID(ctx, t.ID)
}

// Delete removes a task by id.
func (r *PGRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("tasks: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanTask(row pgx.Row) (Task, error) {
	var (
		t       Task
		status  string
		dueDate pgtype.Timestamptz
	)
	if err := row.Scan(&t.ID, &t.Title, &t.Description, &status, &t.Priority,
		&dueDate, &t.AssignedToID, &t.CreatedByID, &t.CreatorOrgID, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return Task{}, err
	}
	t.Status = Status(status)
	if dueDate.Valid {
		due := dueDate.Time
		t.DueDate = &due
	}
	return t, nil
}

func collectTasks(rows pgx.Rows) ([]Task, error) {
	defer rows.Close()
	var list []Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("tasks: scan row: %w", err)
		}
		list = append(list, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("tasks: iterate rows: %w", err)
	}
	return list, nil
}

func optionalTimestamp(t *time.Time) pgtype.Timestamptz {
	if t == nil {
		return pgtype.Timestamptz{}
	}
	return pgtype.Timestamptz{Time: *t, Valid: true}
}

var _ Repository = (*PGRepository)(nil)
