package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TimelineParams narrows the audit trail for listing. Zero values mean no
// filtering on that attribute.
type TimelineParams struct {
	From     time.Time
	To       time.Time
	ActorID  *int64
	Resource string
	Action   string
	Offset   int32
	Limit    int32
}

// PGRepository persists and queries audit records in PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// Append inserts one audit record. The table is append-only; nothing in
// the application ever updates or deletes rows.
func (r *PGRepository) Append(ctx context.Context, rec Record) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO audit_logs (action, resource, resource_id, old_values, new_values, actor_id, ip_address, user_agent, details, created_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), $6, NULLIF($7, ''), NULLIF($8, ''), NULLIF($9, ''), $10)`,
		string(rec.Action), rec.Resource, rec.ResourceID, rec.OldValues, rec.NewValues,
		rec.ActorID, rec.IPAddress, rec.UserAgent, rec.Details, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("audit: insert record: %w", err)
	}
	return nil
}

// TimelineWindow returns a page of audit records, newest first.
func (r *PGRepository) TimelineWindow(ctx context.Context, params TimelineParams) ([]Record, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, action, resource, resource_id, COALESCE(old_values, ''), COALESCE(new_values, ''),
		       actor_id, COALESCE(ip_address, ''), COALESCE(user_agent, ''), COALESCE(details, ''), created_at
		FROM audit_logs
		WHERE ($1::timestamptz IS NULL OR created_at >= $1)
		  AND ($2::timestamptz IS NULL OR created_at <= $2)
		  AND ($3::bigint IS NULL OR actor_id = $3)
		  AND ($4::text IS NULL OR resource = $4)
		  AND ($5::text IS NULL OR action = $5)
		ORDER BY created_at DESC, id DESC
		OFFSET $6 LIMIT $7`,
		optionalTime(params.From), optionalTime(params.To), params.ActorID,
		optionalText(params.Resource), optionalText(params.Action),
		params.Offset, params.Limit)
	if err != nil {
		return nil, fmt.Errorf("audit: query timeline: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		var createdAt pgtype.Timestamptz
		if err := rows.Scan(&rec.ID, &rec.Action, &rec.Resource, &rec.ResourceID,
			&rec.OldValues, &rec.NewValues, &rec.ActorID,
			&rec.IPAddress, &rec.UserAgent, &rec.Details, &createdAt); err != nil {
			return nil, fmt.Errorf("audit: scan timeline row: %w", err)
		}
		rec.CreatedAt = createdAt.Time
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("audit: iterate timeline rows: %w", err)
	}
	return records, nil
}

func optionalTime(t time.Time) pgtype.Timestamptz {
	if t.IsZero() {
		return pgtype.Timestamptz{}
	}
	return pgtype.Timestamptz{Time: t, Valid: true}
}

func optionalText(value string) pgtype.Text {
	if value == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: value, Valid: true}
}
