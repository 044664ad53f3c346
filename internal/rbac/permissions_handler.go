package rbac

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taskhive/taskhive/internal/platform/httpx"
)

// PermissionsHandler exposes the role permission matrix for clients that
// build their UI around what the actor may do.
type PermissionsHandler struct {
	rbac Middleware
}

// NewPermissionsHandler builds PermissionsHandler instance.
func NewPermissionsHandler(guard Middleware) *PermissionsHandler {
	return &PermissionsHandler{rbac: guard}
}

// MountRoutes registers permission routes.
func (h *PermissionsHandler) MountRoutes(r chi.Router) {
	r.Get("/me", h.myPermissions)
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(PermReadUser))
		r.Get("/", h.listMatrix)
	})
}

func (h *PermissionsHandler) myPermissions(w http.ResponseWriter, r *http.Request) {
	actor := IdentityFromContext(r.Context())
	if actor == nil {
		httpx.Unauthorized(w, "not logged in")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"role":        actor.Role,
		"permissions": PermissionsForRole(actor.Role),
	})
}

func (h *PermissionsHandler) listMatrix(w http.ResponseWriter, r *http.Request) {
	matrix := make(map[Role][]Permission, len(rolePermissions))
	for role := range rolePermissions {
		matrix[role] = PermissionsForRole(role)
	}
	httpx.JSON(w, http.StatusOK, matrix)
}
