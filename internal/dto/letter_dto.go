package dto

import "time"

// LetterCreateRequest is the payload for drafting a letter.
type LetterCreateRequest struct {
	UserID       string     `json:"user_id"`
	PortalID     string     `json:"portal_id"`
	SectionID    string     `json:"section_id"`
	LetterNumber string     `json:"letter_number"`
	LetterType   string     `json:"letter_type" validate:"required"`
	Title        string     `json:"title" validate:"required"`
	Content      string     `json:"content"`
	ExpiresAt    *time.Time `json:"expires_at"`
	IssuerUserID string     `json:"issuer_user_id"`
	Remarks      string     `json:"remarks"`
}

// LetterUpdateRequest carries the mutable letter fields; nil pointers are left untouched.
type LetterUpdateRequest struct {
	Title         *string    `json:"title"`
	Content       *string    `json:"content"`
	Status        *string    `json:"status"`
	ExpiresAt     *time.Time `json:"expires_at"`
	AttachmentURL *string    `json:"attachment_url"`
	Remarks       *string    `json:"remarks"`
}
