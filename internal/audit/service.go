package audit

import (
	"context"
	"fmt"
	"time"
)

const (
	defaultPageSize = 20
	maxPageSize     = 50
)

// Repository provides read access to the stored audit trail.
type Repository interface {
	TimelineWindow(ctx context.Context, params TimelineParams) ([]Record, error)
}

// TimelineFilters holds the caller-supplied filters for listing the trail.
type TimelineFilters struct {
	From     time.Time
	To       time.Time
	ActorID  *int64
	Resource string
	Action   string
	Page     int
	PageSize int
}

// PagingInfo carries pagination metadata alongside a timeline page.
type PagingInfo struct {
	Page     int
	PageSize int
	HasNext  bool
	PrevPage int
	NextPage int
}

// Result bundles one timeline page with its paging info.
type Result struct {
	Records []Record
	Paging  PagingInfo
}

// Service reads the audit trail with filtering and paging.
type Service struct {
	repo Repository
}

// NewService constructs a timeline service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Timeline fetches one page of audit records, newest first. It requests
// one row beyond the page size to detect whether a next page exists.
func (s *Service) Timeline(ctx context.Context, filters TimelineFilters) (Result, error) {
	if s.repo == nil {
		return Result{}, fmt.Errorf("audit: repository not configured")
	}
	pageSize := filters.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	page := filters.Page
	if page <= 0 {
		page = 1
	}
	offset := (page - 1) * pageSize

	records, err := s.repo.TimelineWindow(ctx, TimelineParams{
		From:     filters.From,
		To:       filters.To,
		ActorID:  filters.ActorID,
		Resource: filters.Resource,
		Action:   filters.Action,
		Offset:   int32(offset),
		Limit:    int32(pageSize + 1),
	})
	if err != nil {
		return Result{}, err
	}

	hasNext := len(records) > pageSize
	if hasNext {
		records = records[:pageSize]
	}
	paging := PagingInfo{Page: page, PageSize: pageSize, HasNext: hasNext}
	if page > 1 {
		paging.PrevPage = page - 1
	}
	if hasNext {
		paging.NextPage = page + 1
	}
	return Result{Records: records, Paging: paging}, nil
}
