package models

import "time"

// User represents an account that can sign in to one of the campus portals.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Email     string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Password  string    `gorm:"size:255;not null" json:"password,omitempty"`
	Role      string    `gorm:"size:64;index;not null" json:"role"`
	Name      string    `gorm:"size:255" json:"name"`
	Active    bool      `gorm:"not null;default:true" json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Sanitized returns a copy safe to serialize in API responses.
func (u User) Sanitized() User {
	u.Password = ""
	return u
}

// SignInLog records a single login attempt, successful or not.
type SignInLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Email     string    `gorm:"size:255;index;not null" json:"email"`
	RoleTried string    `gorm:"size:64" json:"role_tried"`
	Success   bool      `gorm:"not null" json:"success"`
	IP        string    `gorm:"size:64" json:"ip"`
	UserAgent string    `gorm:"size:512" json:"user_agent"`
	CreatedAt time.Time `json:"created_at"`
}
