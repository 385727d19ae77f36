package models

import "time"

type Role string

const (
	RoleAdmin     Role = "admin"
	RoleAssistant Role = "assistant"
)

// Profile is a staff member allowed to sign in.
type Profile struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:255" json:"name"`
	Email     string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Role      Role      `gorm:"size:20;not null" json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p Profile) IsAdmin() bool { return p.Role == RoleAdmin }
