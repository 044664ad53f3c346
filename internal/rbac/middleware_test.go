package rbac_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskhive/taskhive/internal/audit"
	"github.com/taskhive/taskhive/internal/rbac"
	_ "github.com/taskhive/taskhive/testing"
)

type captureSink struct {
	records []audit.Record
}

func (s *captureSink) Append(ctx context.Context, rec audit.Record) error {
	s.records = append(s.records, rec)
	return nil
}

func guardedRequest(t *testing.T, guard rbac.Middleware, actor *rbac.Identity, perms ...rbac.Permission) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	})
	req := httptest.NewRequest(http.MethodGet, "/tasks", nil)
	if actor != nil {
		req = req.WithContext(rbac.ContextWithIdentity(req.Context(), actor))
	}
	res := httptest.NewRecorder()
	guard.Require(perms...)(next).ServeHTTP(res, req)
	return res, called
}

func TestRequireAllowsSufficientRole(t *testing.T) {
	sink := &captureSink{}
	guard := rbac.Middleware{Recorder: audit.NewRecorder(sink, nil, nil)}

	actor := &rbac.Identity{ID: 1, Role: rbac.RoleAdmin}
	res, called := guardedRequest(t, guard, actor, rbac.PermReadTask)

	assert.Equal(t, http.StatusOK, res.Code)
	assert.True(t, called)
	assert.Empty(t, sink.records)
}

func TestRequireDeniesMissingIdentity(t *testing.T) {
	sink := &captureSink{}
	guard := rbac.Middleware{Recorder: audit.NewRecorder(sink, nil, nil)}

	res, called := guardedRequest(t, guard, nil, rbac.PermReadTask)

	assert.Equal(t, http.StatusForbidden, res.Code)
	assert.False(t, called)
	// Anonymous requests are not attributable; nothing to audit.
	assert.Empty(t, sink.records)
}

func TestRequireDeniesAndAuditsInsufficientRole(t *testing.T) {
	sink := &captureSink{}
	guard := rbac.Middleware{Recorder: audit.NewRecorder(sink, nil, nil)}

	actor := &rbac.Identity{ID: 42, Role: rbac.RoleViewer}
	res, called := guardedRequest(t, guard, actor, rbac.PermDeleteTask)

	assert.Equal(t, http.StatusForbidden, res.Code)
	assert.False(t, called)
	require.Len(t, sink.records, 1)
	rec := sink.records[0]
	assert.Equal(t, audit.ActionPermissionDenied, rec.Action)
	assert.Equal(t, "task", rec.Resource)
	require.NotNil(t, rec.ActorID)
	assert.Equal(t, int64(42), *rec.ActorID)
	assert.Equal(t, "permission denied for delete_task on task", rec.Details)
}

func TestRequireAuditsOnlyFailingPermissions(t *testing.T) {
	sink := &captureSink{}
	guard := rbac.Middleware{Recorder: audit.NewRecorder(sink, nil, nil)}

	actor := &rbac.Identity{ID: 7, Role: rbac.RoleViewer}
	res, _ := guardedRequest(t, guard, actor, rbac.PermReadTask, rbac.PermUpdateTask, rbac.PermDeleteTask)

	assert.Equal(t, http.StatusForbidden, res.Code)
	require.Len(t, sink.records, 2)
	assert.Equal(t, "permission denied for update_task on task", sink.records[0].Details)
	assert.Equal(t, "permission denied for delete_task on task", sink.records[1].Details)
}

func TestRequireUnknownRoleDenied(t *testing.T) {
	guard := rbac.Middleware{}

	actor := &rbac.Identity{ID: 9, Role: rbac.Role("ghost")}
	res, called := guardedRequest(t, guard, actor, rbac.PermReadTask)

	assert.Equal(t, http.StatusForbidden, res.Code)
	assert.False(t, called)
}

func TestRequireEmptyPermissionList(t *testing.T) {
	guard := rbac.Middleware{}

	res, called := guardedRequest(t, guard, nil)

	assert.Equal(t, http.StatusOK, res.Code)
	assert.True(t, called)
}
