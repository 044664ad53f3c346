package rbac

import (
	"log/slog"
	"net/http"

	"github.com/taskhive/taskhive/internal/audit"
)

// Middleware wires coarse permission checks for HTTP handlers. It is the
// first line of defense; row-level organization checks stay in the
// services behind it.
type Middleware struct {
	Recorder *audit.Recorder
	Logger   *slog.Logger
}

// Require ensures the current actor holds every listed permission. A
// missing identity or an insufficient role answers 403; every denial of
// an authenticated actor is audited.
func (m Middleware) Require(perms ...Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(perms) == 0 {
				next.ServeHTTP(w, r)
				return
			}
			actor := IdentityFromContext(r.Context())
			if actor == nil {
				http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
				return
			}
			if HasPermission(actor.Role, perms...) {
				next.ServeHTTP(w, r)
				return
			}
			if m.Logger != nil {
				m.Logger.Warn("permission denied",
					slog.Int64("actor_id", actor.ID),
					slog.String("role", string(actor.Role)),
					slog.String("path", r.URL.Path))
			}
			if m.Recorder != nil {
				meta := audit.RequestMeta{IPAddress: r.RemoteAddr, UserAgent: r.UserAgent()}
				for _, p := range perms {
					if !HasPermission(actor.Role, p) {
						_ = m.Recorder.RecordPermissionDenied(r.Context(), actor.ID, p.Resource(), string(p), meta)
					}
				}
			}
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		})
	}
}
