package users_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskhive/taskhive/internal/rbac"
	"github.com/taskhive/taskhive/internal/users"
	_ "github.com/taskhive/taskhive/testing"
)

type stubRepo struct {
	list []users.User
}

func (s *stubRepo) ListUsers(ctx context.Context) ([]users.User, error) {
	return s.list, nil
}

func newRouter(repo users.RepositoryPort, actor *rbac.Identity) http.Handler {
	handler := users.NewHandler(nil, users.NewService(repo), rbac.Middleware{})
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if actor != nil {
				r = r.WithContext(rbac.ContextWithIdentity(r.Context(), actor))
			}
			next.ServeHTTP(w, r)
		})
	})
	r.Route("/users", handler.MountRoutes)
	return r
}

func TestListUsersVisibleToEveryRole(t *testing.T) {
	repo := &stubRepo{list: []users.User{
		{ID: 1, Email: "owner@taskhive.local", Role: rbac.RoleOwner},
		{ID: 2, Email: "ada@taskhive.local", Role: rbac.RoleAdmin},
	}}

	for _, role := range []rbac.Role{rbac.RoleOwner, rbac.RoleAdmin, rbac.RoleViewer} {
		router := newRouter(repo, &rbac.Identity{ID: 5, Role: role})
		res := httptest.NewRecorder()
		router.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/users", nil))

		require.Equal(t, http.StatusOK, res.Code, "role %s", role)
		var list []users.User
		require.NoError(t, json.Unmarshal(res.Body.Bytes(), &list))
		assert.Len(t, list, 2)
	}
}

func TestListUsersDeniedForUnknownRole(t *testing.T) {
	router := newRouter(&stubRepo{}, &rbac.Identity{ID: 5, Role: rbac.Role("ghost")})
	res := httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/users", nil))
	assert.Equal(t, http.StatusForbidden, res.Code)
}

func TestListUsersEmptyBody(t *testing.T) {
	router := newRouter(&stubRepo{}, &rbac.Identity{ID: 5, Role: rbac.RoleViewer})
	res := httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/users", nil))

	require.Equal(t, http.StatusOK, res.Code)
	assert.JSONEq(t, "[]", res.Body.String())
}
