package models

import "time"

// User roles. Staff can manage clients, applications and billing;
// admins can additionally manage users and pricing.
const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

// User is a back-office operator account.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Email     string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Password  string    `gorm:"size:255;not null" json:"-"` // bcrypt hash
	Name      string    `gorm:"size:255" json:"name,omitempty"`
	Role      string    `gorm:"size:20;not null;default:'staff'" json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
