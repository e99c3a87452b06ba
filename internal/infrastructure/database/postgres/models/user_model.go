package models

import (
	"time"
)

// UserModel represents the database model for User
type UserModel struct {
	ID           int64     `gorm:"primaryKey;autoIncrement"`
	Username     string    `gorm:"type:varchar(80);not null;uniqueIndex:idx_users_username"`
	Email        string    `gorm:"type:varchar(120);not null;uniqueIndex:idx_users_email"`
	PasswordHash string    `gorm:"type:varchar(255);not null"`
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null"`
}

func (UserModel) TableName() string {
	return "users"
}
