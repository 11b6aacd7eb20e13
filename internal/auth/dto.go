package auth

import "github.com/electrosoundpack/storefront-backend/internal/users"

// LoginRequest captures the user credentials sent to the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries the access token and the signed-in user.
type LoginResponse struct {
	Token     string         `json:"token"`
	ExpiresIn int64          `json:"expires_in"`
	User      *users.UserDTO `json:"user"`
}

// RegisterRequest is the sign-up payload.
type RegisterRequest struct {
	Nombre          string `json:"nombre" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
	Telefono        string `json:"telefono" validate:"required"`
}

// ProfileUpdateRequest lets a user change their own contact data or password.
type ProfileUpdateRequest struct {
	Nombre   *string `json:"nombre,omitempty"`
	Telefono *string `json:"telefono,omitempty"`
	Password *string `json:"password,omitempty"`
}
