// Package http exposes the audit trail read endpoint. It lives apart
// from the audit package so the permission middleware can depend on the
// recorder without a cycle.
package http

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/taskhive/taskhive/internal/audit"
	"github.com/taskhive/taskhive/internal/platform/httpx"
	"github.com/taskhive/taskhive/internal/rbac"
)

// Handler serves the audit timeline over HTTP.
type Handler struct {
	logger  *slog.Logger
	service *audit.Service
	rbac    rbac.Middleware
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *audit.Service, guard rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, rbac: guard}
}

// MountRoutes registers audit routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(rbac.PermReadAuditLog))
		r.Get("/", h.handleTimeline)
	})
}

type recordResponse struct {
	ID         int64           `json:"id"`
	Action     string          `json:"action"`
	Resource   string          `json:"resource"`
	ResourceID *int64          `json:"resourceId,omitempty"`
	OldValues  string          `json:"oldValues,omitempty"`
	NewValues  string          `json:"newValues,omitempty"`
	ActorID    *int64          `json:"actorId,omitempty"`
	IPAddress  string          `json:"ipAddress,omitempty"`
	UserAgent  string          `json:"userAgent,omitempty"`
	Details    string          `json:"details,omitempty"`
	CreatedAt  time.Time       `json:"createdAt"`
}

type pagingResponse struct {
	Page     int  `json:"page"`
	PageSize int  `json:"pageSize"`
	HasNext  bool `json:"hasNext"`
	PrevPage int  `json:"prevPage,omitempty"`
	NextPage int  `json:"nextPage,omitempty"`
}

func (h *Handler) handleTimeline(w http.ResponseWriter, r *http.Request) {
	filters, err := parseFilters(r)
	if err != nil {
		httpx.BadRequest(w, err.Error())
		return
	}

	result, err := h.service.Timeline(r.Context(), filters)
	if err != nil {
		h.logger.Error("audit timeline", slog.Any("error", err))
		httpx.Internal(w)
		return
	}

	records := make([]recordResponse, 0, len(result.Records))
	for _, rec := range result.Records {
		records = append(records, recordResponse{
			ID:         rec.ID,
			Action:     string(rec.Action),
			Resource:   rec.Resource,
			ResourceID: rec.ResourceID,
			OldValues:  rec.OldValues,
			NewValues:  rec.NewValues,
			ActorID:    rec.ActorID,
			IPAddress:  rec.IPAddress,
			UserAgent:  rec.UserAgent,
			Details:    rec.Details,
			CreatedAt:  rec.CreatedAt,
		})
	}

	httpx.JSON(w, http.StatusOK, map[string]any{
		"records": records,
		"paging": pagingResponse{
			Page:     result.Paging.Page,
			PageSize: result.Paging.PageSize,
			HasNext:  result.Paging.HasNext,
			PrevPage: result.Paging.PrevPage,
			NextPage: result.Paging.NextPage,
		},
	})
}

func parseFilters(r *http.Request) (audit.TimelineFilters, error) {
	q := r.URL.Query()
	var filters audit.TimelineFilters

	if raw := q.Get("from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filters, errInvalidParam("from")
		}
		filters.From = t
	}
	if raw := q.Get("to"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filters, errInvalidParam("to")
		}
		filters.To = t
	}
	if raw := q.Get("actorId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return filters, errInvalidParam("actorId")
		}
		filters.ActorID = &id
	}
	filters.Resource = q.Get("resource")
	filters.Action = q.Get("action")

	if raw := q.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			return filters, errInvalidParam("page")
		}
		filters.Page = page
	}
	if raw := q.Get("pageSize"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil || size < 1 {
			return filters, errInvalidParam("pageSize")
		}
		filters.PageSize = size
	}
	return filters, nil
}

type paramError string

func errInvalidParam(name string) paramError { return paramError(name) }

func (e paramError) Error() string { return "invalid query parameter: " + string(e) }
