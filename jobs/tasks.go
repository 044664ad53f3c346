package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeSessionsPrune is the task type for expiring stale sessions.
	TaskTypeSessionsPrune = "sessions:prune"
)

// NewSessionsPruneTask constructs an Asynq task.
func NewSessionsPruneTask() *asynq.Task {
	return asynq.NewTask(TaskTypeSessionsPrune, nil)
}

// NewSessionsPruneHandler returns a handler that removes expired session
// rows. Redis entries expire on their own TTL; this keeps the database
// record in step.
func NewSessionsPruneHandler(pool *pgxpool.Pool, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		tag, err := pool.Exec(ctx, `DELETE FROM sessions WHERE expires_at < $1`, time.Now().UTC())
		if err != nil {
			logger.Error("prune sessions", slog.Any("error", err))
			return err
		}
		if tag.RowsAffected() > 0 {
			logger.Info("pruned sessions", slog.Int64("count", tag.RowsAffected()))
		}
		return nil
	}
}
