// Package rbac implements Anchor's fixed role/permission model: three
// roles, a static permission set, and an admin wildcard. A single
// configured username is the admin; every other authenticated identity is
// a guest unless Grant has assigned it another role.
package rbac

import (
	"github.com/anchorvcs/anchor/internal/apperr"
)

// Permission identifies one action in the system.
type Permission string

const (
	PermissionReadRepo    Permission = "read:repo"
	PermissionWriteRepo   Permission = "write:repo"
	PermissionDeleteRepo  Permission = "delete:repo"
	PermissionCreateRepo  Permission = "create:repo"
	PermissionAdminRepo   Permission = "admin:repo"

	PermissionReadProfile  Permission = "read:profile"
	PermissionWriteProfile Permission = "write:profile"
	PermissionManageKeys   Permission = "manage:keys"
	PermissionExportKeys   Permission = "export:keys"

	PermissionCreateSnapshot  Permission = "create:snapshot"
	PermissionReadSnapshot    Permission = "read:snapshot"
	PermissionRestoreSnapshot Permission = "restore:snapshot"

	// PermissionAdminAll is the wildcard every admin permission set
	// carries; CheckPermission short-circuits on it.
	PermissionAdminAll Permission = "admin:*"
)

// Role is one of the system's three fixed roles.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
	RoleGuest Role = "guest"
)

var rolePermissions = map[Role][]Permission{
	RoleAdmin: {
		PermissionAdminAll,
		PermissionReadRepo, PermissionWriteRepo, PermissionDeleteRepo, PermissionCreateRepo, PermissionAdminRepo,
		PermissionReadProfile, PermissionWriteProfile, PermissionManageKeys, PermissionExportKeys,
		PermissionCreateSnapshot, PermissionReadSnapshot, PermissionRestoreSnapshot,
	},
	RoleUser: {
		PermissionReadRepo, PermissionWriteRepo, PermissionCreateRepo,
		PermissionReadProfile, PermissionWriteProfile, PermissionManageKeys,
		PermissionCreateSnapshot, PermissionReadSnapshot,
	},
	RoleGuest: {
		PermissionReadRepo, PermissionReadProfile,
	},
}

// Manager resolves usernames to roles and answers permission/ownership
// checks. adminUsername is the single configured administrator; everyone
// else resolves to RoleGuest unless granted RoleUser via Grant.
type Manager struct {
	adminUsername string
	userRoles     map[string]Role
}

// NewManager builds a Manager around the configured admin username.
func NewManager(adminUsername string) *Manager {
	return &Manager{adminUsername: adminUsername, userRoles: make(map[string]Role)}
}

// Grant assigns role to a non-admin username, replacing the guest
// default. It is a no-op for the admin username.
func (m *Manager) Grant(username string, role Role) {
	if username == m.adminUsername {
		return
	}
	m.userRoles[username] = role
}

// RoleOf resolves a username to its role.
func (m *Manager) RoleOf(username string) Role {
	if username != "" && username == m.adminUsername {
		return RoleAdmin
	}
	if role, ok := m.userRoles[username]; ok {
		return role
	}
	return RoleGuest
}

// CheckPermission reports whether role carries permission, honoring the
// admin wildcard.
func CheckPermission(role Role, permission Permission) bool {
	for _, perm := range rolePermissions[role] {
		if perm == PermissionAdminAll || perm == permission {
			return true
		}
	}
	return false
}

// HasPermission resolves username's role and checks permission.
func (m *Manager) HasPermission(username string, permission Permission) bool {
	return CheckPermission(m.RoleOf(username), permission)
}

// Resource identifies the thing an action targets, for ownership checks.
type Resource struct {
	Type string
	ID   string
}

// OwnsResource reports whether username owns resource. Anchor runs
// single-admin: the admin owns everything, and non-admin ownership always
// resolves false until a multi-tenant resource registry exists.
func (m *Manager) OwnsResource(username string, resource Resource) bool {
	return m.RoleOf(username) == RoleAdmin
}

// Can is the main authorization entrypoint: permission, then (if resource
// is non-nil) ownership.
func (m *Manager) Can(username string, permission Permission, resource *Resource) bool {
	if !m.HasPermission(username, permission) {
		return false
	}
	if resource == nil || resource.Type == "" || resource.ID == "" {
		return true
	}
	return m.OwnsResource(username, *resource)
}

// RequirePermission returns a Forbidden apperr.Error unless username holds
// permission on the optional resource.
func (m *Manager) RequirePermission(username string, permission Permission, resource *Resource) error {
	if !m.Can(username, permission, resource) {
		return apperr.Forbidden("permission denied: " + string(permission))
	}
	return nil
}

// RequireAdmin returns a Forbidden apperr.Error unless username resolves
// to RoleAdmin.
func (m *Manager) RequireAdmin(username string) error {
	if m.RoleOf(username) != RoleAdmin {
		return apperr.Forbidden("admin access required")
	}
	return nil
}
