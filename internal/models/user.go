package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents a system user account.
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Username  string         `gorm:"uniqueIndex;size:80;not null" json:"username"`
	Email     string         `gorm:"uniqueIndex;size:120;not null" json:"email"`
	Password  string         `gorm:"size:255;not null" json:"-"` // bcrypt hash
	IsActive  bool           `gorm:"default:true" json:"is_active"`
	RoleID    *uint          `json:"role_id"`
	Role      *Role          `gorm:"foreignKey:RoleID" json:"role,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string { return "users" }

// HasPermission reports whether the user's role grants the capability bit.
// A user without an assigned role has no permissions at all.
func (u *User) HasPermission(p Permission) bool {
	if u.Role == nil {
		return false
	}
	return u.Role.Has(p)
}

// IsAdmin reports whether the user holds the reserved admin role.
func (u *User) IsAdmin() bool {
	return u.Role != nil && u.Role.Name == AdminRoleName
}

// RoleName returns the assigned role's name, or "" without one.
func (u *User) RoleName() string {
	if u.Role == nil {
		return ""
	}
	return u.Role.Name
}

// PermissionMask returns the raw permission bitmask, zero without a role.
func (u *User) PermissionMask() int64 {
	if u.Role == nil {
		return 0
	}
	return u.Role.Permissions
}
