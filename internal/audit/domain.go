package audit

import "time"

// Action classifies the security-relevant event an audit record describes.
type Action string

const (
	ActionCreate           Action = "create"
	ActionRead             Action = "read"
	ActionUpdate           Action = "update"
	ActionDelete           Action = "delete"
	ActionLogin            Action = "login"
	ActionLogout           Action = "logout"
	ActionPermissionDenied Action = "permission_denied"
)

// Record is one immutable entry in the audit trail. OldValues and
// NewValues hold JSON snapshots; empty strings mean not applicable.
type Record struct {
	ID         int64
	Action     Action
	Resource   string
	ResourceID *int64
	OldValues  string
	NewValues  string
	ActorID    *int64
	IPAddress  string
	UserAgent  string
	Details    string
	CreatedAt  time.Time
}

// Event describes a security-relevant occurrence to be recorded.
// OldValues/NewValues are serialized to JSON by the recorder when non-nil.
type Event struct {
	Action     Action
	Resource   string
	ResourceID *int64
	OldValues  any
	NewValues  any
	ActorID    *int64
	IPAddress  string
	UserAgent  string
	Details    string
}

// RequestMeta carries per-request client attributes into audit records.
type RequestMeta struct {
	IPAddress string
	UserAgent string
}
