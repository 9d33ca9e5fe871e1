package models

import (
	"time"

	"gorm.io/datatypes"
)

// Attendance is one submitted presence sheet for a section on a given date.
// Records maps roll number to a status string such as "present", "absent" or "sick".
type Attendance struct {
	ID         uint              `gorm:"primaryKey" json:"id"`
	Date       string            `gorm:"size:10;index;not null" json:"date"`
	Section    string            `gorm:"size:255;index;not null" json:"section"`
	Records    datatypes.JSONMap `gorm:"type:json" json:"records"`
	RecordedBy string            `gorm:"size:255" json:"recorded_by"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}
