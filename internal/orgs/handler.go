package orgs

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/taskhive/taskhive/internal/audit"
	"github.com/taskhive/taskhive/internal/platform/httpx"
	"github.com/taskhive/taskhive/internal/rbac"
)

// Handler manages organization endpoints.
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

// MountRoutes registers organization routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(rbac.PermReadOrganization))
		r.Get("/", h.list)
		r.Get("/{id}", h.get)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(rbac.PermCreateOrganization))
		r.Post("/", h.create)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(rbac.PermUpdateOrganization))
		r.Patch("/{id}", h.update)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(rbac.PermDeleteOrganization))
		r.Delete("/{id}", h.remove)
	})
}

type createOrgRequest struct {
	Name        string `json:"name" validate:"required,max=200"`
	Description string `json:"description" validate:"max=500"`
	ParentID    *int64 `json:"parentId"`
}

type updateOrgRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=200"`
	Description *string `json:"description" validate:"omitempty,max=500"`
	ParentID    *int64  `json:"parentId"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.FindAll(r.Context())
	if err != nil {
		h.respondErr(w, err, "list organizations")
		return
	}
	if list == nil {
		list = []Organization{}
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := orgID(r)
	if err != nil {
		httpx.BadRequest(w, "invalid organization id")
		return
	}
	org, err := h.service.FindOne(r.Context(), id)
	if err != nil {
		h.respondErr(w, err, "get organization")
		return
	}
	httpx.JSON(w, http.StatusOK, org)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	actor := rbac.IdentityFromContext(r.Context())
	if actor == nil {
		httpx.Forbidden(w, "")
		return
	}
	var req createOrgRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.BadRequest(w, "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.BadRequest(w, err.Error())
		return
	}
	org, err := h.service.Create(r.Context(), CreateInput{
		Name:        req.Name,
		Description: req.Description,
		ParentID:    req.ParentID,
	}, *actor, requestMeta(r))
	if err != nil {
		h.respondErr(w, err, "create organization")
		return
	}
	httpx.JSON(w, http.StatusCreated, org)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	actor := rbac.IdentityFromContext(r.Context())
	if actor == nil {
		httpx.Forbidden(w, "")
		return
	}
	id, err := orgID(r)
	if err != nil {
		httpx.BadRequest(w, "invalid organization id")
		return
	}
	var req updateOrgRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.BadRequest(w, "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.BadRequest(w, err.Error())
		return
	}
	org, err := h.service.Update(r.Context(), id, Patch{
		Name:        req.Name,
		Description: req.Description,
		ParentID:    req.ParentID,
	}, *actor, requestMeta(r))
	if err != nil {
		h.respondErr(w, err, "update organization")
		return
	}
	httpx.JSON(w, http.StatusOK, org)
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	actor := rbac.IdentityFromContext(r.Context())
	if actor == nil {
		httpx.Forbidden(w, "")
		return
	}
	id, err := orgID(r)
	if err != nil {
		httpx.BadRequest(w, "invalid organization id")
		return
	}
	if err := h.service.Delete(r.Context(), id, *actor, requestMeta(r)); err != nil {
		h.respondErr(w, err, "delete organization")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) respondErr(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.NotFound(w, "organization not found")
	case errors.Is(err, ErrDuplicate):
		httpx.Conflict(w, "organization name already exists")
	default:
		if h.logger != nil {
			h.logger.Error(op, slog.Any("error", err))
		}
		httpx.Internal(w)
	}
}

func orgID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func requestMeta(r *http.Request) audit.RequestMeta {
	return audit.RequestMeta{IPAddress: r.RemoteAddr, UserAgent: r.UserAgent()}
}
