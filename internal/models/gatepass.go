package models

import "time"

// Gate pass lifecycle statuses.
const (
	GatePassStatusPending  = "pending_approval"
	GatePassStatusApproved = "approved"
	GatePassStatusActive   = "active"
	GatePassStatusUsed     = "used"
	GatePassStatusRevoked  = "revoked"
	GatePassStatusDeclined = "declined"
	GatePassStatusExpired  = "expired"
)

// gatePassTransitions is the allowed status graph. Used, revoked, declined
// and expired are terminal. An approved pass may still be declined when a
// newer approval for the same student supersedes it.
var gatePassTransitions = map[string][]string{
	GatePassStatusPending:  {GatePassStatusApproved, GatePassStatusDeclined, GatePassStatusRevoked, GatePassStatusExpired},
	GatePassStatusApproved: {GatePassStatusActive, GatePassStatusUsed, GatePassStatusDeclined, GatePassStatusRevoked, GatePassStatusExpired},
	GatePassStatusActive:   {GatePassStatusUsed, GatePassStatusRevoked, GatePassStatusExpired},
}

// GatePassStatusValid reports whether the status is one of the known lifecycle states.
func GatePassStatusValid(status string) bool {
	switch status {
	case GatePassStatusPending, GatePassStatusApproved, GatePassStatusActive,
		GatePassStatusUsed, GatePassStatusRevoked, GatePassStatusDeclined, GatePassStatusExpired:
		return true
	}
	return false
}

// GatePassCanTransition reports whether a pass may move from one status to another.
func GatePassCanTransition(from, to string) bool {
	for _, allowed := range gatePassTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// GatePass is a time-bounded permission record allowing a student to exit and
// re-enter campus, subject to HOD approval.
type GatePass struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	UserID        string     `gorm:"size:64;index" json:"user_id"`
	PortalID      string     `gorm:"size:64;index" json:"portal_id"`
	SectionID     string     `gorm:"size:64;index" json:"section_id"`
	PassNumber    string     `gorm:"size:64;uniqueIndex" json:"pass_number"`
	Status        string     `gorm:"size:32;index;not null;default:pending_approval" json:"status"`
	IssuedAt      time.Time  `json:"issued_at"`
	ExpiresAt     *time.Time `gorm:"index" json:"expires_at"`
	UsedAt        *time.Time `json:"used_at"`
	IssuerUserID  string     `gorm:"size:64" json:"issuer_user_id"`
	Remarks       string     `gorm:"type:text" json:"remarks"`
	HODSectionID  string     `gorm:"size:64;index" json:"hod_section_id"`
	HODUserID     string     `gorm:"size:64;index" json:"hod_user_id"`
	ApprovedAt    *time.Time `json:"approved_at"`
	DeclinedAt    *time.Time `json:"declined_at"`
	DeclineReason string     `gorm:"type:text" json:"decline_reason"`

	// Student snapshot shown on the HOD review screen.
	StudentName  string `gorm:"size:255" json:"student_name"`
	StudentRoll  string `gorm:"size:64;index" json:"student_roll"`
	StudentEmail string `gorm:"size:255;index" json:"student_email"`
	Reason       string `gorm:"type:text" json:"reason"`
	TimeOut      string `gorm:"size:64" json:"time_out"`
	StudentYear  string `gorm:"size:32" json:"student_year"`
	Department   string `gorm:"size:255" json:"department"`

	Version   int64     `gorm:"not null;default:0" json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsExpired reports whether the pass has an expiry in the past.
func (g GatePass) IsExpired(reference time.Time) bool {
	return g.ExpiresAt != nil && reference.After(*g.ExpiresAt)
}
