package tasks

import (
	"context"
	"log/slog"
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/taskhive/taskhive/internal/audit"
	"github.com/taskhive/taskhive/internal/rbac"
)

const resourceTask = "task"

// Repository defines persistence operations for tasks. FindByID and the
// list methods resolve the creator's current organization via the user
// row, never from a value cached on the task.
type Repository interface {
	Create(ctx context.Context, t Task) (Task, error)
	FindByID(ctx context.Context, id int64) (Task, error)
	FindAll(ctx context.Context) ([]Task, error)
	FindByCreatorOrg(ctx context.Context, orgID *int64) ([]Task, error)
	Update(ctx context.Context, t Task) (Task, error)
	Delete(ctx context.Context, id int64) error
}

// ListOptions requests an optional presentation order. The contract makes
// no ordering promise unless the caller asks for one.
type ListOptions struct {
	OrderByTitle bool
	Locale       string
}

// Service guards CRUD over the task collection with organization-scope
// checks and writes the audit trail for every outcome. Coarse permission
// checks happen earlier, at the request boundary; this service is the
// second line of defense for row-level decisions.
type Service struct {
	repo     Repository
	recorder *audit.Recorder
	logger   *slog.Logger
}

// NewService constructs a Service.
func NewService(repo Repository, recorder *audit.Recorder, logger *slog.Logger) *Service {
	return &Service{repo: repo, recorder: recorder, logger: logger}
}

// Create persists a new task owned by the actor. There is no organization
// check here: the creator implicitly owns the new resource.
func (s *Service) Create(ctx context.Context, in CreateInput, actor rbac.Identity, meta audit.RequestMeta) (Task, error) {
	t := Task{
		Title:        in.Title,
		Description:  in.Description,
		Status:       in.Status,
		Priority:     in.Priority,
		DueDate:      in.DueDate,
		AssignedToID: in.AssignedToID,
		CreatedByID:  actor.ID,
	}
	if t.Status == "" {
		t.Status = StatusTodo
	}
	if t.Priority == 0 {
		t.Priority = 1
	}
	created, err := s.repo.Create(ctx, t)
	if err != nil {
		return Task{}, err
	}
	_ = s.recorder.Record(ctx, audit.Event{
		Action:     audit.ActionCreate,
		Resource:   resourceTask,
		ResourceID: &created.ID,
		NewValues:  created,
		ActorID:    &actor.ID,
		IPAddress:  meta.IPAddress,
		UserAgent:  meta.UserAgent,
	})
	return created, nil
}

// ListAll returns the tasks the actor may see. Owners see everything;
// admins and viewers see only tasks authored inside their own
// organization, with unaffiliated actors confined to tasks authored by
// unaffiliated creators.
func (s *Service) ListAll(ctx context.Context, actor rbac.Identity, opts ListOptions) ([]Task, error) {
	var (
		list []Task
		err  error
	)
	if actor.Role == rbac.RoleOwner {
		list, err = s.repo.FindAll(ctx)
	} else {
		list, err = s.repo.FindByCreatorOrg(ctx, actor.OrgID)
	}
	if err != nil {
		return nil, err
	}
	if opts.OrderByTitle {
		sortByTitle(list, opts.Locale)
	}
	return list, nil
}

// GetOne loads a task and evaluates row-level access. NotFound and
// Forbidden stay distinguishable; the successful read is audited.
func (s *Service) GetOne(ctx context.Context, id int64, actor rbac.Identity, meta audit.RequestMeta) (Task, error) {
	t, err := s.load(ctx, id, actor, meta, rbac.PermReadTask)
	if err != nil {
		return Task{}, err
	}
	_ = s.recorder.RecordAccess(ctx, actor.ID, resourceTask, &t.ID, meta)
	return t, nil
}

// Update re-runs the existence and organization checks keyed by the
// actor's own organization, blocks viewers unconditionally, then merges
// the patch onto the stored task.
func (s *Service) Update(ctx context.Context, id int64, patch Patch, actor rbac.Identity, meta audit.RequestMeta) (Task, error) {
	current, err := s.load(ctx, id, actor, meta, rbac.PermUpdateTask)
	if err != nil {
		return Task{}, err
	}
	if actor.Role == rbac.RoleViewer {
		_ = s.recorder.RecordPermissionDenied(ctx, actor.ID, resourceTask, string(rbac.PermUpdateTask), meta)
		return Task{}, ErrForbidden
	}
	updated := current
	patch.apply(&updated)
	saved, err := s.repo.Update(ctx, updated)
	if err != nil {
		return Task{}, err
	}
	_ = s.recorder.Record(ctx, audit.Event{
		Action:     audit.ActionUpdate,
		Resource:   resourceTask,
		ResourceID: &saved.ID,
		OldValues:  current,
		NewValues:  saved,
		ActorID:    &actor.ID,
		IPAddress:  meta.IPAddress,
		UserAgent:  meta.UserAgent,
	})
	return saved, nil
}

// Delete re-runs the same checks as Update, then removes the task.
func (s *Service) Delete(ctx context.Context, id int64, actor rbac.Identity, meta audit.RequestMeta) error {
	current, err := s.load(ctx, id, actor, meta, rbac.PermDeleteTask)
	if err != nil {
		return err
	}
	if actor.Role == rbac.RoleViewer {
		_ = s.recorder.RecordPermissionDenied(ctx, actor.ID, resourceTask, string(rbac.PermDeleteTask), meta)
		return ErrForbidden
	}
	if err := s.repo.Delete(ctx, current.ID); err != nil {
		return err
	}
	_ = s.recorder.Record(ctx, audit.Event{
		Action:     audit.ActionDelete,
		Resource:   resourceTask,
		ResourceID: &current.ID,
		OldValues:  current,
		ActorID:    &actor.ID,
		IPAddress:  meta.IPAddress,
		UserAgent:  meta.UserAgent,
	})
	return nil
}

// load fetches a task and applies the organization-scope rule, recording
// exactly one denial per Forbidden outcome.
func (s *Service) load(ctx context.Context, id int64, actor rbac.Identity, meta audit.RequestMeta, attempted rbac.Permission) (Task, error) {
	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return Task{}, err
	}
	if !rbac.CanAccessTask(actor.Role, actor.OrgID, t.CreatorOrgID) {
		_ = s.recorder.RecordPermissionDenied(ctx, actor.ID, resourceTask, string(attempted), meta)
		return Task{}, ErrForbidden
	}
	return t, nil
}

func sortByTitle(list []Task, locale string) {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	c := collate.New(tag, collate.IgnoreCase)
	sort.SliceStable(list, func(i, j int) bool {
		return c.CompareString(list[i].Title, list[j].Title) < 0
	})
}
