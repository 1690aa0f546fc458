package model

import (
	"time"

	"github.com/google/uuid"
)

// UserModel mirrors the 'users' table. Ids are generated by the application.
type UserModel struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name         string    `gorm:"type:varchar(100);not null"`
	Phone        string    `gorm:"type:varchar(32)"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex:idx_users_email;not null"`
	PasswordHash string    `gorm:"type:varchar(255);not null"`
	Role         string    `gorm:"type:varchar(16);not null;default:customer"`

	// Embedded shipping address.
	Street     string `gorm:"type:varchar(255)"`
	City       string `gorm:"type:varchar(100)"`
	State      string `gorm:"type:varchar(100)"`
	PostalCode string `gorm:"type:varchar(20)"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName explicitly sets the table name for GORM.
func (UserModel) TableName() string {
	return "users"
}
