package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	OfferApproved = "Approved"
	OfferRejected = "Rejected"
	OfferPending  = "Pending"
)

type Offer struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	SessionID uuid.UUID `gorm:"type:uuid;not null;index"`

	RequestedAmount decimal.Decimal `gorm:"type:numeric(20,2);not null"`
	Amount          decimal.Decimal `gorm:"type:numeric(20,2);not null"`
	TenureMonths    int             `gorm:"not null"`
	InterestRate    decimal.Decimal `gorm:"type:numeric(6,2);not null"`
	MonthlyEMI      decimal.Decimal `gorm:"type:numeric(20,2);not null"`

	Status           string              `gorm:"type:varchar(20);not null;index"`
	ReasonSummary    string              `gorm:"type:text"`
	DecisionReason   string              `gorm:"type:varchar(60)"`
	PreApprovedLimit decimal.NullDecimal `gorm:"type:numeric(20,2)"`
	SalarySlipPath   string              `gorm:"type:text"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime;index"`
}

func (Offer) TableName() string {
	return "offers"
}

func (o *Offer) BeforeCreate(_ *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}
