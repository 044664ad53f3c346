package auth

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/taskhive/taskhive/internal/audit"
	"github.com/taskhive/taskhive/internal/platform/httpx"
	"github.com/taskhive/taskhive/internal/shared"
)

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger         *slog.Logger
	service        *Service
	sessionManager *shared.SessionManager
	csrfManager    *shared.CSRFManager
	recorder       *audit.Recorder
	validator      *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, sessions *shared.SessionManager, csrf *shared.CSRFManager, recorder *audit.Recorder) *Handler {
	return &Handler{
		logger:         logger,
		service:        service,
		sessionManager: sessions,
		csrfManager:    csrf,
		recorder:       recorder,
		validator:      validator.New(),
	}
}

// MountRoutes registers auth routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/login", h.handleLogin)
	r.Post("/logout", h.handleLogout)
	r.Get("/me", h.handleMe)
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type userResponse struct {
	ID             int64  `json:"id"`
	Email          string `json:"email"`
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	Role           string `json:"role"`
	OrganizationID *int64 `json:"organizationId,omitempty"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.BadRequest(w, "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.BadRequest(w, err.Error())
		return
	}

	user, err := h.service.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		httpx.Unauthorized(w, "invalid credentials")
		return
	}

	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		h.logger.Error("login without session middleware")
		httpx.Internal(w)
		return
	}
	sess.SetUser(strconv.FormatInt(user.ID, 10))

	expiresAt := time.Now().Add(h.sessionManager.TTL())
	if err := h.service.RegisterSession(r.Context(), sess.ID, user.ID, expiresAt, r.RemoteAddr, r.UserAgent()); err != nil {
		h.logger.Error("register session", slog.Any("error", err))
	}
	csrfToken, _ := h.csrfManager.EnsureToken(r.Context(), sess)

	_ = h.recorder.Record(r.Context(), audit.Event{
		Action:    audit.ActionLogin,
		Resource:  "user",
		ActorID:   &user.ID,
		IPAddress: r.RemoteAddr,
		UserAgent: r.UserAgent(),
		Details:   "user logged in",
	})

	httpx.JSON(w, http.StatusOK, map[string]any{
		"user":      toUserResponse(user),
		"csrfToken": csrfToken,
	})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if raw := sess.User(); raw != "" {
		if userID, err := strconv.ParseInt(raw, 10, 64); err == nil {
			_ = h.recorder.Record(r.Context(), audit.Event{
				Action:    audit.ActionLogout,
				Resource:  "user",
				ActorID:   &userID,
				IPAddress: r.RemoteAddr,
				UserAgent: r.UserAgent(),
				Details:   "user logged out",
			})
		}
	}
	if err := h.service.RemoveSession(r.Context(), sess.ID); err != nil {
		h.logger.Error("remove session", slog.Any("error", err))
	}
	h.sessionManager.Destroy(sess)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil || sess.User() == "" {
		httpx.Unauthorized(w, "not logged in")
		return
	}
	userID, err := strconv.ParseInt(sess.User(), 10, 64)
	if err != nil {
		httpx.Unauthorized(w, "not logged in")
		return
	}
	user, err := h.service.CurrentUser(r.Context(), userID)
	if err != nil {
		httpx.Unauthorized(w, "not logged in")
		return
	}
	httpx.JSON(w, http.StatusOK, toUserResponse(user))
}

func toUserResponse(u *User) userResponse {
	return userResponse{
		ID:             u.ID,
		Email:          u.Email,
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		Role:           string(u.Role),
		OrganizationID: u.OrganizationID,
	}
}
