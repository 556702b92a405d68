package response

import (
	"time"

	"github.com/google/uuid"

	"github.com/Alturino/marketplace/internal/repository"
)

const (
	MessageInvalidCredentials = "invalid credentials"
	MessageResetEmailSent     = "Password reset link sent to your email"
	MessagePasswordReset      = "Password has been reset successfully"
	MessageResetTokenInvalid  = "Invalid or expired token"
	MessageResetTokenValid    = "Token is valid"
	MessageRegisterSuccessful = "Registration successful"
	MessageLoginSuccessful    = "Login successful"
)

type User struct {
	ID        uuid.UUID  `json:"id"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	FirstName string     `json:"firstName"`
	LastName  string     `json:"lastName"`
	Phone     string     `json:"phone,omitempty"`
	IsSeller  bool       `json:"isSeller"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}

type Login struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// ResetPassword reports the outcome of a password reset.
type ResetPassword struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func FromUser(u repository.User) User {
	resp := User{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Phone:     u.Phone,
		IsSeller:  u.IsSeller,
	}
	if !u.CreatedAt.IsZero() {
		createdAt := u.CreatedAt
		resp.CreatedAt = &createdAt
	}
	return resp
}
