package models

import (
	"time"

	"gorm.io/datatypes"
)

// Portal is a named access group bundling a role type with member users and sections.
type Portal struct {
	ID          uint                        `gorm:"primaryKey" json:"id"`
	Name        string                      `gorm:"size:255;uniqueIndex;not null" json:"name"`
	Description string                      `gorm:"type:text" json:"description"`
	PortalType  string                      `gorm:"size:64;index" json:"portal_type"`
	SectionIDs  datatypes.JSONSlice[string] `gorm:"type:json" json:"section_ids"`
	UserIDs     datatypes.JSONSlice[string] `gorm:"type:json" json:"user_ids"`
	Active      bool                        `gorm:"not null;default:true" json:"active"`
	Version     int64                       `gorm:"not null;default:0" json:"version"`
	CreatedAt   time.Time                   `json:"created_at"`
	UpdatedAt   time.Time                   `json:"updated_at"`
}

// AddSectionID appends the section identifier unless it is blank or already a member.
func (p *Portal) AddSectionID(sectionID string) bool {
	if sectionID == "" || containsString(p.SectionIDs, sectionID) {
		return false
	}
	p.SectionIDs = append(p.SectionIDs, sectionID)
	return true
}

// RemoveSectionID drops the section identifier from the membership list.
func (p *Portal) RemoveSectionID(sectionID string) bool {
	next, removed := removeString(p.SectionIDs, sectionID)
	p.SectionIDs = next
	return removed
}

// AddUserID appends the user identifier unless it is blank or already a member.
func (p *Portal) AddUserID(userID string) bool {
	if userID == "" || containsString(p.UserIDs, userID) {
		return false
	}
	p.UserIDs = append(p.UserIDs, userID)
	return true
}

// RemoveUserID drops the user identifier from the membership list.
func (p *Portal) RemoveUserID(userID string) bool {
	next, removed := removeString(p.UserIDs, userID)
	p.UserIDs = next
	return removed
}

func containsString(list datatypes.JSONSlice[string], value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}

func removeString(list datatypes.JSONSlice[string], value string) (datatypes.JSONSlice[string], bool) {
	result := make(datatypes.JSONSlice[string], 0, len(list))
	removed := false
	for _, item := range list {
		if item == value {
			removed = true
			continue
		}
		result = append(result, item)
	}
	return result, removed
}
