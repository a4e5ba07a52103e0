package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ApplicantProfile captures what the applicant told us when the session
// started. It is mutated only to attach a verified salary figure and is
// retained for audit.
type ApplicantProfile struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	SessionID  uuid.UUID `gorm:"type:uuid;not null;index"`
	CustomerID string    `gorm:"type:varchar(40);index"`

	Name           string `gorm:"type:varchar(100);not null"`
	Email          string `gorm:"type:varchar(200)"`
	Age            int    `gorm:"not null"`
	EmploymentType string `gorm:"type:varchar(50)"`
	LoanType       string `gorm:"type:varchar(50)"`

	IncomeMonthly       decimal.Decimal     `gorm:"type:numeric(20,2);not null"`
	ExistingEMI         decimal.Decimal     `gorm:"type:numeric(20,2);not null"`
	DesiredAmount       decimal.Decimal     `gorm:"type:numeric(20,2);not null"`
	DesiredTenureMonths int                 `gorm:"not null"`
	SalaryReported      decimal.NullDecimal `gorm:"type:numeric(20,2)"`

	Mood string `gorm:"type:varchar(30)"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime"`
}

func (ApplicantProfile) TableName() string {
	return "applicant_profiles"
}

func (p *ApplicantProfile) BeforeCreate(_ *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
