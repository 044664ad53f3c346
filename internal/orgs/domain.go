package orgs

import (
	"errors"
	"time"
)

var (
	// ErrNotFound indicates the organization id does not exist.
	ErrNotFound = errors.New("orgs: organization not found")
	// ErrDuplicate indicates the organization name is already taken.
	ErrDuplicate = errors.New("orgs: duplicate organization name")
)

// Organization is a tenant boundary for users and, transitively, tasks.
// ParentID records hierarchy as data only; the access policy never
// traverses it.
type Organization struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	ParentID    *int64    `json:"parentId,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// CreateInput carries the fields a caller may set on a new organization.
type CreateInput struct {
	Name        string
	Description string
	ParentID    *int64
}

// Patch enumerates the mutable organization fields; nil leaves a field
// unchanged.
type Patch struct {
	Name        *string
	Description *string
	ParentID    *int64
}

func (p Patch) apply(o *Organization) {
	if p.Name != nil {
		o.Name = *p.Name
	}
	if p.Description != nil {
		o.Description = *p.Description
	}
	if p.ParentID != nil {
		o.ParentID = p.ParentID
	}
}
