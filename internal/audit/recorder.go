package audit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Sink is an append-only destination for audit records.
type Sink interface {
	Append(ctx context.Context, rec Record) error
}

// FailureObserver is notified whenever an audit write fails, so lost
// records surface on an operator-visible channel beyond the error log.
type FailureObserver interface {
	ObserveAuditRecord(action string)
	ObserveAuditWriteFailure()
}

// Recorder builds audit records and appends them to the sink. A failed
// append never propagates into the guarded operation's result: the
// recorder logs it at error level, counts it, and returns the error only
// for callers that explicitly care.
type Recorder struct {
	sink     Sink
	logger   *slog.Logger
	observer FailureObserver
}

// NewRecorder constructs a Recorder. The observer may be nil.
func NewRecorder(sink Sink, logger *slog.Logger, observer FailureObserver) *Recorder {
	return &Recorder{sink: sink, logger: logger, observer: observer}
}

// Record serializes the event and appends one immutable record with a
// server-assigned timestamp.
func (r *Recorder) Record(ctx context.Context, ev Event) error {
	if r == nil || r.sink == nil {
		return errors.New("audit: recorder not configured")
	}
	if ev.Action == "" || ev.Resource == "" {
		return errors.New("audit: event requires action and resource")
	}

	rec := Record{
		Action:     ev.Action,
		Resource:   ev.Resource,
		ResourceID: ev.ResourceID,
		ActorID:    ev.ActorID,
		IPAddress:  ev.IPAddress,
		UserAgent:  ev.UserAgent,
		Details:    ev.Details,
		CreatedAt:  time.Now().UTC(),
	}
	var err error
	if rec.OldValues, err = marshalValues(ev.OldValues); err != nil {
		return fmt.Errorf("audit: serialize old values: %w", err)
	}
	if rec.NewValues, err = marshalValues(ev.NewValues); err != nil {
		return fmt.Errorf("audit: serialize new values: %w", err)
	}

	if err := r.sink.Append(ctx, rec); err != nil {
		if r.logger != nil {
			r.logger.Error("audit record lost",
				slog.String("action", string(rec.Action)),
				slog.String("resource", rec.Resource),
				slog.Any("error", err))
		}
		if r.observer != nil {
			r.observer.ObserveAuditWriteFailure()
		}
		return fmt.Errorf("audit: append: %w", err)
	}
	if r.observer != nil {
		r.observer.ObserveAuditRecord(string(rec.Action))
	}
	return nil
}

// RecordAccess tags a successful read of a resource.
func (r *Recorder) RecordAccess(ctx context.Context, actorID int64, resource string, resourceID *int64, meta RequestMeta) error {
	details := fmt.Sprintf("user accessed %s", resource)
	if resourceID != nil {
		details = fmt.Sprintf("user accessed %s with ID %d", resource, *resourceID)
	}
	return r.Record(ctx, Event{
		Action:     ActionRead,
		Resource:   resource,
		ResourceID: resourceID,
		ActorID:    &actorID,
		IPAddress:  meta.IPAddress,
		UserAgent:  meta.UserAgent,
		Details:    details,
	})
}

// RecordPermissionDenied tags a denied attempt at the given action.
func (r *Recorder) RecordPermissionDenied(ctx context.Context, actorID int64, resource, attemptedAction string, meta RequestMeta) error {
	return r.Record(ctx, Event{
		Action:    ActionPermissionDenied,
		Resource:  resource,
		ActorID:   &actorID,
		IPAddress: meta.IPAddress,
		UserAgent: meta.UserAgent,
		Details:   fmt.Sprintf("permission denied for %s on %s", attemptedAction, resource),
	})
}

func marshalValues(v any) (string, error) {
	if v == nil {
		return "", nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
