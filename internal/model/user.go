package model

import "time"

// User represents a managed user account. Every user references exactly one
// role; new users default to the non-privileged role.
type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Username     string    `json:"username" gorm:"uniqueIndex;size:255;not null"`
	Email        string    `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string    `json:"-" gorm:"size:255;not null"` // Never expose in JSON
	IsActive     bool      `json:"is_active" gorm:"default:true"`
	RoleID       uint      `json:"role_id" gorm:"not null;default:2;index"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	Role Role `json:"role,omitempty" gorm:"foreignKey:RoleID"`
}
