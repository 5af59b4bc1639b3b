package models

// Permission is one capability bit in a role's permission mask.
type Permission int

const (
	PermViewCalendar Permission = 1 << iota
	PermCreateProject
	PermEditProject
	PermDeleteProject
	PermManageUsers
)

// AllPermissions is the union of every defined capability bit. The admin
// role's mask must always equal this value.
const AllPermissions = PermViewCalendar | PermCreateProject | PermEditProject |
	PermDeleteProject | PermManageUsers

// AdminRoleName is the reserved role name that bypasses permission checks.
const AdminRoleName = "admin"

// Role is a named set of capability bits. Users reference exactly one role;
// new roles are table data, not code.
type Role struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"uniqueIndex;size:80;not null" json:"name"`
	Description string `gorm:"size:200" json:"description"`
	Permissions int64  `gorm:"not null;default:0" json:"permissions"`
}

func (Role) TableName() string { return "roles" }

// Has reports whether the role's mask contains the given capability bit.
// Unknown bits are simply absent, never an error.
func (r *Role) Has(p Permission) bool {
	return r.Permissions&int64(p) != 0
}

// RoleDefinition seeds one row of the static role table.
type RoleDefinition struct {
	Name        string
	Description string
	Permissions int64
}

// DefaultRoles is the static role table seeded at startup. Seeding is
// insert-only: an existing row with the same name is never overwritten.
var DefaultRoles = []RoleDefinition{
	{
		Name:        AdminRoleName,
		Description: "Administrator with all permissions",
		Permissions: int64(AllPermissions),
	},
	{
		Name:        "project_manager",
		Description: "Can create and manage projects",
		Permissions: int64(PermViewCalendar | PermCreateProject | PermEditProject | PermDeleteProject),
	},
	{
		Name:        "viewer",
		Description: "Can only view the calendar",
		Permissions: int64(PermViewCalendar),
	},
}

// DefaultRole returns the static definition for a role name, if any.
func DefaultRole(name string) (RoleDefinition, bool) {
	for _, def := range DefaultRoles {
		if def.Name == name {
			return def, true
		}
	}
	return RoleDefinition{}, false
}
