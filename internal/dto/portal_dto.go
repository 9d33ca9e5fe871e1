package dto

// PortalCreateRequest is the payload for creating a portal access group.
type PortalCreateRequest struct {
	Name        string   `json:"name" validate:"required"`
	Description string   `json:"description"`
	PortalType  string   `json:"portal_type" validate:"required"`
	SectionIDs  []string `json:"section_ids"`
	UserIDs     []string `json:"user_ids"`
}

// PortalUpdateRequest carries the mutable portal fields; nil pointers are left untouched.
type PortalUpdateRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	PortalType  *string `json:"portal_type"`
}

// PortalMemberRequest identifies a section or user being added to / removed from a portal.
type PortalMemberRequest struct {
	ID string `json:"id" validate:"required"`
}
