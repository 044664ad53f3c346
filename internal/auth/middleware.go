package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/taskhive/taskhive/internal/rbac"
	"github.com/taskhive/taskhive/internal/shared"
)

// IdentityLoader resolves the session's user on every request and places
// the actor identity into context. Requests without a valid session pass
// through without identity; permission middleware downstream denies them.
func IdentityLoader(service *Service, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := shared.SessionFromContext(r.Context())
			if sess == nil {
				next.ServeHTTP(w, r)
				return
			}
			raw := strings.TrimSpace(sess.User())
			if raw == "" {
				next.ServeHTTP(w, r)
				return
			}
			userID, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				if logger != nil {
					logger.Error("parse session user id", slog.String("value", raw))
				}
				next.ServeHTTP(w, r)
				return
			}
			user, err := service.CurrentUser(r.Context(), userID)
			if err != nil {
				if !errors.Is(err, shared.ErrNotFound) && logger != nil {
					logger.Error("load session user", slog.Any("error", err))
				}
				next.ServeHTTP(w, r)
				return
			}
			identity := user.Identity()
			ctx := rbac.ContextWithIdentity(r.Context(), &identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
