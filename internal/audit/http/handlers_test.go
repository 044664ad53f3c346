package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskhive/taskhive/internal/audit"
	audithttp "github.com/taskhive/taskhive/internal/audit/http"
	"github.com/taskhive/taskhive/internal/rbac"
	_ "github.com/taskhive/taskhive/testing"
)

type stubRepo struct {
	records []audit.Record
	last    audit.TimelineParams
}

func (s *stubRepo) TimelineWindow(ctx context.Context, params audit.TimelineParams) ([]audit.Record, error) {
	s.last = params
	limit := int(params.Limit)
	if limit > len(s.records) {
		limit = len(s.records)
	}
	return s.records[:limit], nil
}

func newRouter(repo *stubRepo, actor *rbac.Identity) http.Handler {
	guard := rbac.Middleware{}
	handler := audithttp.NewHandler(nil, audit.NewService(repo), guard)

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if actor != nil {
				r = r.WithContext(rbac.ContextWithIdentity(r.Context(), actor))
			}
			next.ServeHTTP(w, r)
		})
	})
	r.Route("/audit-log", handler.MountRoutes)
	return r
}

func TestTimelineRequiresAuditPermission(t *testing.T) {
	repo := &stubRepo{}

	// Admins lack read_audit_log.
	router := newRouter(repo, &rbac.Identity{ID: 2, Role: rbac.RoleAdmin})
	res := httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/audit-log", nil))
	assert.Equal(t, http.StatusForbidden, res.Code)

	router = newRouter(repo, nil)
	res = httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/audit-log", nil))
	assert.Equal(t, http.StatusForbidden, res.Code)
}

func TestTimelineReturnsRecordsAndPaging(t *testing.T) {
	actorID := int64(3)
	resourceID := int64(9)
	repo := &stubRepo{records: []audit.Record{{
		ID:         1,
		Action:     audit.ActionPermissionDenied,
		Resource:   "task",
		ResourceID: &resourceID,
		ActorID:    &actorID,
		Details:    "permission denied for delete_task on task",
		CreatedAt:  time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}}}

	router := newRouter(repo, &rbac.Identity{ID: 1, Role: rbac.RoleOwner})
	res := httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/audit-log", nil))

	require.Equal(t, http.StatusOK, res.Code)
	var payload struct {
		Records []struct {
			Action  string `json:"action"`
			Details string `json:"details"`
		} `json:"records"`
		Paging struct {
			Page     int  `json:"page"`
			PageSize int  `json:"pageSize"`
			HasNext  bool `json:"hasNext"`
		} `json:"paging"`
	}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &payload))
	require.Len(t, payload.Records, 1)
	assert.Equal(t, "permission_denied", payload.Records[0].Action)
	assert.Equal(t, 1, payload.Paging.Page)
	assert.Equal(t, 20, payload.Paging.PageSize)
	assert.False(t, payload.Paging.HasNext)
}

func TestTimelineFilterParsing(t *testing.T) {
	repo := &stubRepo{}
	router := newRouter(repo, &rbac.Identity{ID: 1, Role: rbac.RoleOwner})

	url := "/audit-log?from=2025-05-01T00:00:00Z&actorId=4&resource=task&action=read&page=2&pageSize=10"
	res := httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodGet, url, nil))

	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC), repo.last.From)
	require.NotNil(t, repo.last.ActorID)
	assert.Equal(t, int64(4), *repo.last.ActorID)
	assert.Equal(t, "task", repo.last.Resource)
	assert.Equal(t, "read", repo.last.Action)
	assert.Equal(t, int32(10), repo.last.Offset)
	assert.Equal(t, int32(11), repo.last.Limit)
}

func TestTimelineRejectsBadParams(t *testing.T) {
	router := newRouter(&stubRepo{}, &rbac.Identity{ID: 1, Role: rbac.RoleOwner})

	for name, url := range map[string]string{
		"bad from":    "/audit-log?from=yesterday",
		"bad actorId": "/audit-log?actorId=bob",
		"bad page":    "/audit-log?page=0",
		"bad size":    "/audit-log?pageSize=-1",
	} {
		res := httptest.NewRecorder()
		router.ServeHTTP(res, httptest.NewRequest(http.MethodGet, url, nil))
		assert.Equal(t, http.StatusBadRequest, res.Code, name)
	}
}
