// Package models contains data structures for the application's domain models.
package models

import "time"

// Role is the authority level of a user account.
type Role string

const (
	RoleOrdinary Role = "ORDINARY"
	RoleAdmin    Role = "ADMIN"
)

// User represents a registered account.
type User struct {
	ID                    uint      `gorm:"primaryKey" json:"id"`
	Username              string    `gorm:"size:20;uniqueIndex;not null" json:"username"`
	Password              string    `gorm:"not null" json:"-"`
	Email                 string    `gorm:"size:100;uniqueIndex;not null" json:"email"`
	Nickname              string    `gorm:"size:20;uniqueIndex;not null" json:"nickname"`
	Role                  Role      `gorm:"size:16;not null" json:"role"`
	Enabled               bool      `gorm:"not null" json:"enabled"`
	AccountNonExpired     bool      `gorm:"not null" json:"account_non_expired"`
	AccountNonLocked      bool      `gorm:"not null" json:"account_non_locked"`
	CredentialsNonExpired bool      `gorm:"not null" json:"credentials_non_expired"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
	Articles              []Article `gorm:"foreignKey:AuthorID" json:"-"`
}

// IsAdmin reports whether the user holds the ADMIN role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// CanSignIn reports whether every account status flag allows authentication.
func (u *User) CanSignIn() bool {
	return u.Enabled && u.AccountNonExpired && u.AccountNonLocked && u.CredentialsNonExpired
}
