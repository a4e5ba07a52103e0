package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	SessionPending        = "pending"
	SessionInProgress     = "in_progress"
	SessionAwaitingSalary = "awaiting_salary"
	SessionOfferGenerated = "offer_generated"
	SessionRejected       = "rejected"
	SessionCompleted      = "completed"
)

// LoanSession is one applicant conversation. Concurrent turns for the same
// session are last-write-wins.
type LoanSession struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Status        string     `gorm:"type:varchar(30);not null;default:'pending';index"`
	CustomerID    *string    `gorm:"type:varchar(40);index"`
	LatestOfferID *uuid.UUID `gorm:"type:uuid"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime"`
	UpdatedAt time.Time `gorm:"type:timestamptz;autoUpdateTime"`
}

func (LoanSession) TableName() string {
	return "loan_sessions"
}

func (s *LoanSession) BeforeCreate(_ *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
