package dto

// SectionCreateRequest is the payload for creating (or resolving) a section.
type SectionCreateRequest struct {
	Name string `json:"name" validate:"required"`
}

// SectionAddRollRequest is the payload for adding a roll number to a roster.
type SectionAddRollRequest struct {
	Roll string `json:"roll" validate:"required"`
}
