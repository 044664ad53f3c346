package tasks

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/taskhive/taskhive/internal/audit"
	"github.com/taskhive/taskhive/internal/platform/httpx"
	"github.com/taskhive/taskhive/internal/rbac"
)

// Handler exposes the guarded task service over JSON.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	rbac      rbac.Middleware
	validator *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, rbac rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, rbac: rbac, validator: validator.New()}
}

// MountRoutes registers task routes. Each route carries the coarse
// permission guard; row-level checks run inside the service.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(rbac.PermCreateTask))
		r.Post("/", h.create)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(rbac.PermReadTask))
		r.Get("/", h.list)
		r.Get("/{id}", h.get)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(rbac.PermUpdateTask))
		r.Patch("/{id}", h.update)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(rbac.PermDeleteTask))
		r.Delete("/{id}", h.remove)
	})
}

type createTaskRequest struct {
	Title        string     `json:"title" validate:"required,max=200"`
	Description  string     `json:"description" validate:"max=2000"`
	Status       string     `json:"status" validate:"omitempty,oneof=todo in_progress completed"`
	Priority     int        `json:"priority" validate:"omitempty,min=1,max=5"`
	DueDate      *time.Time `json:"dueDate"`
	AssignedToID *int64     `json:"assignedToId"`
}

type updateTaskRequest struct {
	Title        *string    `json:"title" validate:"omitempty,max=200"`
	Description  *string    `json:"description" validate:"omitempty,max=2000"`
	Status       *string    `json:"status" validate:"omitempty,oneof=todo in_progress completed"`
	Priority     *int       `json:"priority" validate:"omitempty,min=1,max=5"`
	DueDate      *time.Time `json:"dueDate"`
	AssignedToID *int64     `json:"assignedToId"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	actor := rbac.IdentityFromContext(r.Context())
	if actor == nil {
		httpx.Forbidden(w, "")
		return
	}
	var req createTaskRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.BadRequest(w, "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.BadRequest(w, err.Error())
		return
	}
	task, err := h.service.Create(r.Context(), CreateInput{
		Title:        req.Title,
		Description:  req.Description,
		Status:       Status(req.Status),
		Priority:     req.Priority,
		DueDate:      req.DueDate,
		AssignedToID: req.AssignedToID,
	}, *actor, requestMeta(r))
	if err != nil {
		h.respondErr(w, err, "create task")
		return
	}
	httpx.JSON(w, http.StatusCreated, task)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	actor := rbac.IdentityFromContext(r.Context())
	if actor == nil {
		httpx.Forbidden(w, "")
		return
	}
	opts := ListOptions{
		OrderByTitle: r.URL.Query().Get("orderBy") == "title",
		Locale:       r.URL.Query().Get("locale"),
	}
	list, err := h.service.ListAll(r.Context(), *actor, opts)
	if err != nil {
		h.respondErr(w, err, "list tasks")
		return
	}
	if list == nil {
		list = []Task{}
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	actor := rbac.IdentityFromContext(r.Context())
	if actor == nil {
		httpx.Forbidden(w, "")
		return
	}
	id, err := taskID(r)
	if err != nil {
		httpx.BadRequest(w, "invalid task id")
		return
	}
	task, err := h.service.GetOne(r.Context(), id, *actor, requestMeta(r))
	if err != nil {
		h.respondErr(w, err, "get task")
		return
	}
	httpx.JSON(w, http.StatusOK, task)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	actor := rbac.IdentityFromContext(r.Context())
	if actor == nil {
		httpx.Forbidden(w, "")
		return
	}
	id, err := taskID(r)
	if err != nil {
		httpx.BadRequest(w, "invalid task id")
		return
	}
	var req updateTaskRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.BadRequest(w, "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.BadRequest(w, err.Error())
		return
	}
	patch := Patch{
		Title:        req.Title,
		Description:  req.Description,
		Priority:     req.Priority,
		DueDate:      req.DueDate,
		AssignedToID: req.AssignedToID,
	}
	if req.Status != nil {
		status := Status(*req.Status)
		patch.Status = &status
	}
	task, err := h.service.Update(r.Context(), id, patch, *actor, requestMeta(r))
	if err != nil {
		h.respondErr(w, err, "update task")
		return
	}
	httpx.JSON(w, http.StatusOK, task)
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	actor := rbac.IdentityFromContext(r.Context())
	if actor == nil {
		httpx.Forbidden(w, "")
		return
	}
	id, err := taskID(r)
	if err != nil {
		httpx.BadRequest(w, "invalid task id")
		return
	}
	if err := h.service.Delete(r.Context(), id, *actor, requestMeta(r)); err != nil {
		h.respondErr(w, err, "delete task")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) respondErr(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.NotFound(w, "task not found")
	case errors.Is(err, ErrForbidden):
		httpx.Forbidden(w, "access denied to this task")
	default:
		if h.logger != nil {
			h.logger.Error(op, slog.Any("error", err))
		}
		httpx.Internal(w)
	}
}

func taskID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func requestMeta(r *http.Request) audit.RequestMeta {
	return audit.RequestMeta{IPAddress: r.RemoteAddr, UserAgent: r.UserAgent()}
}
