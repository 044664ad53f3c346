package orgs

import (
	"context"
	"log/slog"
	"strings"

	"github.com/taskhive/taskhive/internal/audit"
	"github.com/taskhive/taskhive/internal/rbac"
)

const resourceOrganization = "organization"

// Repository defines persistence operations for organizations.
type Repository interface {
	Create(ctx context.Context, o Organization) (Organization, error)
	FindByID(ctx context.Context, id int64) (Organization, error)
	FindAll(ctx context.Context) ([]Organization, error)
	Update(ctx context.Context, o Organization) (Organization, error)
	Delete(ctx context.Context, id int64) error
}

// Service handles organization business logic. Coarse permission checks
// run at the boundary; mutations here are audited.
type Service struct {
	repo     Repository
	recorder *audit.Recorder
	logger   *slog.Logger
}

// NewService builds Service instance.
func NewService(repo Repository, recorder *audit.Recorder, logger *slog.Logger) *Service {
	return &Service{repo: repo, recorder: recorder, logger: logger}
}

// Create inserts a new organization.
func (s *Service) Create(ctx context.Context, in CreateInput, actor rbac.Identity, meta audit.RequestMeta) (Organization, error) {
	o := Organization{
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		ParentID:    in.ParentID,
	}
	created, err := s.repo.Create(ctx, o)
	if err != nil {
		return Organization{}, err
	}
	_ = s.recorder.Record(ctx, audit.Event{
		Action:     audit.ActionCreate,
		Resource:   resourceOrganization,
		ResourceID: &created.ID,
		NewValues:  created,
		ActorID:    &actor.ID,
		IPAddress:  meta.IPAddress,
		UserAgent:  meta.UserAgent,
	})
	return created, nil
}

// FindAll returns all organizations.
func (s *Service) FindAll(ctx context.Context) ([]Organization, error) {
	return s.repo.FindAll(ctx)
}

// FindOne fetches one organization by id.
func (s *Service) FindOne(ctx context.Context, id int64) (Organization, error) {
	return s.repo.FindByID(ctx, id)
}

// Update merges the patch onto the stored organization.
func (s *Service) Update(ctx context.Context, id int64, patch Patch, actor rbac.Identity, meta audit.RequestMeta) (Organization, error) {
	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return Organization{}, err
	}
	updated := current
	patch.apply(&updated)
	saved, err := s.repo.Update(ctx, updated)
	if err != nil {
		return Organization{}, err
	}
	_ = s.recorder.Record(ctx, audit.Event{
		Action:     audit.ActionUpdate,
		Resource:   resourceOrganization,
		ResourceID: &saved.ID,
		OldValues:  current,
		NewValues:  saved,
		ActorID:    &actor.ID,
		IPAddress:  meta.IPAddress,
		UserAgent:  meta.UserAgent,
	})
	return saved, nil
}

// Delete removes an organization.
func (s *Service) Delete(ctx context.Context, id int64, actor rbac.Identity, meta audit.RequestMeta) error {
	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, current.ID); err != nil {
		return err
	}
	_ = s.recorder.Record(ctx, audit.Event{
		Action:     audit.ActionDelete,
		Resource:   resourceOrganization,
		ResourceID: &current.ID,
		OldValues:  current,
		ActorID:    &actor.ID,
		IPAddress:  meta.IPAddress,
		UserAgent:  meta.UserAgent,
	})
	return nil
}
