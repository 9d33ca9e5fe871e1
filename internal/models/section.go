package models

import (
	"time"

	"gorm.io/datatypes"
)

// Section owns the roster for a class section: a name and its roll numbers.
type Section struct {
	ID        uint                        `gorm:"primaryKey" json:"id"`
	Name      string                      `gorm:"size:255;uniqueIndex;not null" json:"name"`
	Rolls     datatypes.JSONSlice[string] `gorm:"type:json" json:"rolls"`
	CreatedAt time.Time                   `json:"created_at"`
	UpdatedAt time.Time                   `json:"updated_at"`
}

// HasRoll reports whether the roll number is already on the roster.
func (s Section) HasRoll(roll string) bool {
	for _, r := range s.Rolls {
		if r == roll {
			return true
		}
	}
	return false
}

// AddRoll appends the roll number if it is not already present.
func (s *Section) AddRoll(roll string) bool {
	if roll == "" || s.HasRoll(roll) {
		return false
	}
	s.Rolls = append(s.Rolls, roll)
	return true
}
