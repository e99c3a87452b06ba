package user

import (
	"time"

	domainUser "warehouse-manager/internal/domain/user"
)

// Password length is capped at bcrypt's 72-byte input limit.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=80,username"`
	Email    string `json:"email" validate:"required,email,max=120"`
	Password string `json:"password" validate:"required,maxbytes=72"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required,max=80"`
	Password string `json:"password" validate:"required,maxbytes=72"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email,max=120"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,maxbytes=72"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required,maxbytes=72"`
	NewPassword string `json:"new_password" validate:"required,maxbytes=72"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type UserResponse struct {
	ID        int64     `json:"user_id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// Session is what a successful login yields. The handler sets both tokens as
// cookies and echoes them for non-browser clients.
type Session struct {
	User             *UserResponse
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshToken     string
	RefreshExpiresAt time.Time
}

type AccessToken struct {
	Token     string
	ExpiresAt time.Time
}

func ToUserResponse(u *domainUser.User) *UserResponse {
	if u == nil {
		return nil
	}
	return &UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}
