package dto

import (
	"github.com/spec-kit/ticketflex/internal/domain"
	"github.com/spec-kit/ticketflex/internal/forms"
)

// SignupRequest payload for new accounts.
type SignupRequest struct {
	FullName        string `json:"fullName"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// Values converts the payload into form values.
func (r SignupRequest) Values() forms.SignupValues {
	return forms.SignupValues{
		FullName:        r.FullName,
		Email:           r.Email,
		Password:        r.Password,
		ConfirmPassword: r.ConfirmPassword,
	}
}

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Values converts the payload into form values.
func (r LoginRequest) Values() forms.LoginValues {
	return forms.LoginValues{Email: r.Email, Password: r.Password}
}

// UserResponse is an account without its password.
type UserResponse struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

// NewUserResponse maps a domain user.
func NewUserResponse(u domain.User) UserResponse {
	return UserResponse{FullName: u.FullName, Email: u.Email}
}

// SessionResponse is returned by a successful login.
type SessionResponse struct {
	Email string `json:"email"`
	Token string `json:"token"`
}
