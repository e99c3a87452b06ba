package user

import (
	"time"
)

// User represents a registered account. PasswordHash is never plaintext.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
