package dto

// AttendanceSubmitRequest is the payload for submitting a presence sheet.
// Date defaults to today when empty.
type AttendanceSubmitRequest struct {
	Date       string            `json:"date"`
	Section    string            `json:"section" validate:"required"`
	Records    map[string]string `json:"records" validate:"required,min=1"`
	RecordedBy string            `json:"recorded_by"`
}
