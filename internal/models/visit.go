package models

import "time"

// Visit is a clinic entry/exit record for a single student.
type Visit struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	StudentID string     `gorm:"size:64;index;not null" json:"student_id"`
	Name      string     `gorm:"size:255;not null" json:"name"`
	Symptoms  string     `gorm:"type:text" json:"symptoms"`
	EntryTime time.Time  `gorm:"index;not null" json:"entry_time"`
	ExitTime  *time.Time `json:"exit_time"`
	LoggedBy  string     `gorm:"size:255" json:"logged_by"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// IsOpen reports whether the student has not yet been marked as exited.
func (v Visit) IsOpen() bool {
	return v.ExitTime == nil
}
