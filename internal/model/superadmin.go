package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	SuperAdminRoleSuperAdmin = "super_admin"
	SuperAdminRoleModerator  = "moderator"
	SuperAdminRoleSupport    = "support"
)

// Capability names used in super-admin permission maps.
const (
	CapManageUsers   = "canManageUsers"
	CapApproveJobs   = "canApproveJobs"
	CapViewAnalytics = "canViewAnalytics"
)

// PermissionMap maps a capability name to whether it is granted.
// Keys that are absent are treated as denied.
type PermissionMap map[string]bool

// Allows reports whether the capability is granted. The super_admin role
// bypasses the map entirely; see middleware.PermissionMiddleware.
func (p PermissionMap) Allows(capability string) bool {
	return p[capability]
}

// SuperAdmin is a distinct identity class from User with its own
// credential space and an explicit capability map.
type SuperAdmin struct {
	ID           uuid.UUID     `json:"id"`
	Email        string        `json:"email"`
	PasswordHash string        `json:"-"`
	Role         string        `json:"role"`
	Permissions  PermissionMap `json:"permissions"`
	IsActive     bool          `json:"is_active"`
	CreatedAt    time.Time     `json:"created_at"`
}
