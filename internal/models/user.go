package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is a persistent account for signup/login. It is distinct from
// ApplicantProfile, which is tied to a single loan session.
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	CustomerID   string    `gorm:"type:varchar(40);uniqueIndex"`
	Name         string    `gorm:"type:varchar(100);not null"`
	Email        string    `gorm:"type:varchar(200);uniqueIndex;not null"`
	Phone        string    `gorm:"type:varchar(30)"`
	PasswordHash string    `gorm:"type:varchar(100)"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(_ *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
