package dto

// VisitCreateRequest is the payload for logging a clinic entry.
type VisitCreateRequest struct {
	StudentID string `json:"student_id" validate:"required"`
	Name      string `json:"name" validate:"required"`
	Symptoms  string `json:"symptoms"`
	LoggedBy  string `json:"logged_by"`
}
