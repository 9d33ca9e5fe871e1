package dto

import "time"

// GatePassCreateRequest is the payload for requesting a gate pass.
type GatePassCreateRequest struct {
	UserID       string     `json:"user_id"`
	PortalID     string     `json:"portal_id"`
	SectionID    string     `json:"section_id"`
	PassNumber   string     `json:"pass_number"`
	Status       string     `json:"status"`
	ExpiresAt    *time.Time `json:"expires_at"`
	IssuerUserID string     `json:"issuer_user_id"`
	Remarks      string     `json:"remarks"`
	HODSectionID string     `json:"hod_section_id"`
	HODUserID    string     `json:"hod_user_id"`

	StudentName  string `json:"student_name"`
	StudentRoll  string `json:"student_roll"`
	StudentEmail string `json:"student_email"`
	Reason       string `json:"reason"`
	TimeOut      string `json:"time_out"`
	StudentYear  string `json:"student_year"`
	Department   string `json:"department"`
}

// GatePassUpdateRequest carries the mutable gate pass fields; nil pointers are left untouched.
type GatePassUpdateRequest struct {
	Status    *string    `json:"status"`
	ExpiresAt *time.Time `json:"expires_at"`
	Remarks   *string    `json:"remarks"`
}

// GatePassApproveRequest carries optional approver context.
type GatePassApproveRequest struct {
	HODUserID string `json:"hod_user_id"`
}

// GatePassDeclineRequest carries the decline reason and approver context.
type GatePassDeclineRequest struct {
	Reason    string `json:"reason"`
	HODUserID string `json:"hod_user_id"`
}

// SweepResult reports the outcome of a maintenance expiry sweep.
type SweepResult struct {
	Expired int `json:"expired"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}
