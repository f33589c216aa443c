package model

import "time"

// Role names and the fixed ids the seed step assigns them.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"

	RoleAdminID uint = 1
	RoleUserID  uint = 2
)

// Role represents an access level a user can hold.
type Role struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"uniqueIndex;size:50;not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
