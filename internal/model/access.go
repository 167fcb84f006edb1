package model

import "time"

// Action names one capability of an access rule.
type Action string

const (
	ActionRead      Action = "read"
	ActionReadAll   Action = "read_all"
	ActionCreate    Action = "create"
	ActionUpdate    Action = "update"
	ActionUpdateAll Action = "update_all"
	ActionDelete    Action = "delete"
	ActionDeleteAll Action = "delete_all"
)

// Role is a named permission group (`roles` table).
type Role struct {
	ID          uint64
	Name        string
	Description *string
}

// BusinessObject names a protected resource category.
type BusinessObject struct {
	ID          uint64
	Name        string
	Description *string
	CreatedAt   time.Time
}

// Permissions is the capability bitset carried by an access rule.
type Permissions struct {
	CanRead      bool `json:"can_read"`
	CanReadAll   bool `json:"can_read_all"`
	CanCreate    bool `json:"can_create"`
	CanUpdate    bool `json:"can_update"`
	CanUpdateAll bool `json:"can_update_all"`
	CanDelete    bool `json:"can_delete"`
	CanDeleteAll bool `json:"can_delete_all"`
}

// Allows maps an action to its flag.  Unknown actions are never allowed.
func (p Permissions) Allows(a Action) bool {
	switch a {
	case ActionRead:
		return p.CanRead
	case ActionReadAll:
		return p.CanReadAll
	case ActionCreate:
		return p.CanCreate
	case ActionUpdate:
		return p.CanUpdate
	case ActionUpdateAll:
		return p.CanUpdateAll
	case ActionDelete:
		return p.CanDelete
	case ActionDeleteAll:
		return p.CanDeleteAll
	}
	return false
}

// AccessRule grants a role a set of capabilities on one business object.
// RoleName and ObjectName are filled by listing queries only.
type AccessRule struct {
	ID       uint64
	RoleID   uint64
	ObjectID uint64
	Permissions
	RoleName   string
	ObjectName string
	CreatedAt  time.Time
}
