package models

import "time"

// Letter lifecycle statuses.
const (
	LetterStatusDraft        = "draft"
	LetterStatusIssued       = "issued"
	LetterStatusAcknowledged = "acknowledged"
	LetterStatusExpired      = "expired"
)

var letterTransitions = map[string][]string{
	LetterStatusDraft:        {LetterStatusIssued, LetterStatusExpired},
	LetterStatusIssued:       {LetterStatusAcknowledged, LetterStatusExpired},
	LetterStatusAcknowledged: {LetterStatusExpired},
}

// LetterStatusValid reports whether the status is one of the known lifecycle states.
func LetterStatusValid(status string) bool {
	switch status {
	case LetterStatusDraft, LetterStatusIssued, LetterStatusAcknowledged, LetterStatusExpired:
		return true
	}
	return false
}

// LetterCanTransition reports whether a letter may move from one status to another.
func LetterCanTransition(from, to string) bool {
	for _, allowed := range letterTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Letter is a formal document issued to a user through a portal.
type Letter struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	UserID         string     `gorm:"size:64;index" json:"user_id"`
	PortalID       string     `gorm:"size:64;index" json:"portal_id"`
	SectionID      string     `gorm:"size:64;index" json:"section_id"`
	LetterNumber   string     `gorm:"size:64;uniqueIndex" json:"letter_number"`
	LetterType     string     `gorm:"size:64;index" json:"letter_type"`
	Title          string     `gorm:"size:255" json:"title"`
	Content        string     `gorm:"type:text" json:"content"`
	Status         string     `gorm:"size:32;index;not null;default:draft" json:"status"`
	IssuedAt       time.Time  `json:"issued_at"`
	ExpiresAt      *time.Time `gorm:"index" json:"expires_at"`
	AcknowledgedAt *time.Time `json:"acknowledged_at"`
	IssuerUserID   string     `gorm:"size:64;index" json:"issuer_user_id"`
	ApproverUserID string     `gorm:"size:64" json:"approver_user_id"`
	AttachmentURL  string     `gorm:"size:512" json:"attachment_url"`
	Remarks        string     `gorm:"type:text" json:"remarks"`
	Version        int64      `gorm:"not null;default:0" json:"version"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// IsExpired reports whether the letter has an expiry in the past.
func (l Letter) IsExpired(reference time.Time) bool {
	return l.ExpiresAt != nil && reference.After(*l.ExpiresAt)
}
