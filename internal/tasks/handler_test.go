package tasks_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskhive/taskhive/internal/audit"
	"github.com/taskhive/taskhive/internal/rbac"
	"github.com/taskhive/taskhive/internal/tasks"
	_ "github.com/taskhive/taskhive/testing"
)

type memoryRepo struct {
	tasks    map[int64]tasks.Task
	userOrgs map[int64]*int64
	nextID   int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{tasks: make(map[int64]tasks.Task), userOrgs: make(map[int64]*int64), nextID: 1}
}

func (m *memoryRepo) resolve(t tasks.Task) tasks.Task {
	t.CreatorOrgID = m.userOrgs[t.CreatedByID]
	return t
}

func (m *memoryRepo) Create(ctx context.Context, t tasks.Task) (tasks.Task, error) {
	t.ID = m.nextID
	m.nextID++
	m.tasks[t.ID] = t
	return m.resolve(t), nil
}

func (m *memoryRepo) FindByID(ctx context.Context, id int64) (tasks.Task, error) {
	t, ok := m.tasks[id]
	if !ok {
		return tasks.Task{}, tasks.ErrNotFound
	}
	return m.resolve(t), nil
}

func (m *memoryRepo) FindAll(ctx context.Context) ([]tasks.Task, error) {
	var list []tasks.Task
	for id := int64(1); id < m.nextID; id++ {
		if t, ok := m.tasks[id]; ok {
			list = append(list, m.resolve(t))
		}
	}
	return list, nil
}

func (m *memoryRepo) FindByCreatorOrg(ctx context.Context, orgID *int64) ([]tasks.Task, error) {
	var list []tasks.Task
	for id := int64(1); id < m.nextID; id++ {
		t, ok := m.tasks[id]
		if !ok {
			continue
		}
		creatorOrg := m.userOrgs[t.CreatedByID]
		switch {
		case orgID == nil && creatorOrg == nil:
			list = append(list, m.resolve(t))
		case orgID != nil && creatorOrg != nil && *orgID == *creatorOrg:
			list = append(list, m.resolve(t))
		}
	}
	return list, nil
}

func (m *memoryRepo) Update(ctx context.Context, t tasks.Task) (tasks.Task, error) {
	if _, ok := m.tasks[t.ID]; !ok {
		return tasks.Task{}, tasks.ErrNotFound
	}
	m.tasks[t.ID] = t
	return m.resolve(t), nil
}

func (m *memoryRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := m.tasks[id]; !ok {
		return tasks.ErrNotFound
	}
	delete(m.tasks, id)
	return nil
}

type nullSink struct{}

func (nullSink) Append(ctx context.Context, rec audit.Record) error { return nil }

func identityInjector(actor *rbac.Identity) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if actor != nil {
				r = r.WithContext(rbac.ContextWithIdentity(r.Context(), actor))
			}
			next.ServeHTTP(w, r)
		})
	}
}

func newRouter(repo *memoryRepo, actor *rbac.Identity) http.Handler {
	recorder := audit.NewRecorder(nullSink{}, nil, nil)
	guard := rbac.Middleware{Recorder: recorder}
	handler := tasks.NewHandler(nil, tasks.NewService(repo, recorder, nil), guard)

	r := chi.NewRouter()
	r.Use(identityInjector(actor))
	r.Route("/tasks", handler.MountRoutes)
	return r
}

func TestCreateTaskEndpoint(t *testing.T) {
	repo := newMemoryRepo()
	hive := int64(1)
	actor := &rbac.Identity{ID: 3, Role: rbac.RoleViewer, OrgID: &hive}
	repo.userOrgs[actor.ID] = actor.OrgID
	router := newRouter(repo, actor)

	body := `{"title":"file expense report","priority":2}`
	req := httptest.NewRequest(http.MethodPost, "/tasks", strings.NewReader(body))
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	require.Equal(t, http.StatusCreated, res.Code)
	var created tasks.Task
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &created))
	assert.Equal(t, "file expense report", created.Title)
	assert.Equal(t, tasks.StatusTodo, created.Status)
	assert.Equal(t, actor.ID, created.CreatedByID)
}

func TestCreateTaskValidation(t *testing.T) {
	router := newRouter(newMemoryRepo(), &rbac.Identity{ID: 1, Role: rbac.RoleOwner})

	for name, body := range map[string]string{
		"missing title": `{"priority":2}`,
		"bad status":    `{"title":"x","status":"archived"}`,
		"bad priority":  `{"title":"x","priority":9}`,
		"not json":      `title=x`,
	} {
		req := httptest.NewRequest(http.MethodPost, "/tasks", strings.NewReader(body))
		res := httptest.NewRecorder()
		router.ServeHTTP(res, req)
		assert.Equal(t, http.StatusBadRequest, res.Code, name)
	}
}

func TestListTasksScoped(t *testing.T) {
	repo := newMemoryRepo()
	hive, acme := int64(1), int64(2)
	repo.userOrgs[2] = &hive
	repo.userOrgs[4] = &acme
	_, _ = repo.Create(context.Background(), tasks.Task{Title: "hive", CreatedByID: 2})
	_, _ = repo.Create(context.Background(), tasks.Task{Title: "acme", CreatedByID: 4})

	viewer := &rbac.Identity{ID: 3, Role: rbac.RoleViewer, OrgID: &hive}
	router := newRouter(repo, viewer)

	req := httptest.NewRequest(http.MethodGet, "/tasks", nil)
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	require.Equal(t, http.StatusOK, res.Code)
	var list []tasks.Task
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "hive", list[0].Title)
}

func TestGetTaskStatusMapping(t *testing.T) {
	repo := newMemoryRepo()
	hive, acme := int64(1), int64(2)
	repo.userOrgs[4] = &acme
	_, _ = repo.Create(context.Background(), tasks.Task{Title: "acme", CreatedByID: 4})

	viewer := &rbac.Identity{ID: 3, Role: rbac.RoleViewer, OrgID: &hive}
	router := newRouter(repo, viewer)

	// Foreign organization answers 403.
	req := httptest.NewRequest(http.MethodGet, "/tasks/1", nil)
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)
	assert.Equal(t, http.StatusForbidden, res.Code)

	// Missing id answers 404.
	req = httptest.NewRequest(http.MethodGet, "/tasks/99", nil)
	res = httptest.NewRecorder()
	router.ServeHTTP(res, req)
	assert.Equal(t, http.StatusNotFound, res.Code)

	// Garbage id answers 400.
	req = httptest.NewRequest(http.MethodGet, "/tasks/abc", nil)
	res = httptest.NewRecorder()
	router.ServeHTTP(res, req)
	assert.Equal(t, http.StatusBadRequest, res.Code)
}

func TestUpdateTaskViewerBlockedByGuard(t *testing.T) {
	repo := newMemoryRepo()
	hive := int64(1)
	repo.userOrgs[3] = &hive
	_, _ = repo.Create(context.Background(), tasks.Task{Title: "hive", CreatedByID: 3})

	// Viewers lack update_task, so the route guard answers before the
	// service sees the request.
	viewer := &rbac.Identity{ID: 3, Role: rbac.RoleViewer, OrgID: &hive}
	router := newRouter(repo, viewer)

	req := httptest.NewRequest(http.MethodPatch, "/tasks/1", strings.NewReader(`{"title":"hijack"}`))
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)
	assert.Equal(t, http.StatusForbidden, res.Code)
}

func TestDeleteTaskEndpoint(t *testing.T) {
	repo := newMemoryRepo()
	hive := int64(1)
	admin := &rbac.Identity{ID: 2, Role: rbac.RoleAdmin, OrgID: &hive}
	repo.userOrgs[admin.ID] = admin.OrgID
	_, _ = repo.Create(context.Background(), tasks.Task{Title: "hive", CreatedByID: 2})

	router := newRouter(repo, admin)

	req := httptest.NewRequest(http.MethodDelete, "/tasks/1", nil)
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)
	require.Equal(t, http.StatusNoContent, res.Code)

	req = httptest.NewRequest(http.MethodDelete, "/tasks/1", nil)
	res = httptest.NewRecorder()
	router.ServeHTTP(res, req)
	assert.Equal(t, http.StatusNotFound, res.Code)
}

func TestRoutesDenyAnonymous(t *testing.T) {
	router := newRouter(newMemoryRepo(), nil)

	req := httptest.NewRequest(http.MethodGet, "/tasks", nil)
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)
	assert.Equal(t, http.StatusForbidden, res.Code)
}
