package dto

import "github.com/noah-isme/campus-admin-api/internal/models"

// SignupRequest is the payload for account creation.
type SignupRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role" validate:"required"`
}

// LoginRequest is the payload for credential verification.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role" validate:"required"`
}

// LoginMeta carries request metadata recorded in the sign-in log.
type LoginMeta struct {
	IP        string
	UserAgent string
}

// LoginResult is returned on a successful login.
type LoginResult struct {
	User        models.User `json:"user"`
	AccessToken string      `json:"access_token"`
}

// ResetPasswordRequest is the payload for overwriting a stored password hash.
type ResetPasswordRequest struct {
	Email       string `json:"email" validate:"required,email"`
	NewPassword string `json:"new_password" validate:"required,min=6"`
}
