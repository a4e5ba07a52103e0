package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Customer is the registry record the underwriting decider reads. It is
// immutable reference data as far as the pipeline is concerned; rows are
// seeded at startup and inserted on signup, never written by the pipeline.
type Customer struct {
	CustomerID string `gorm:"type:varchar(40);primaryKey"`
	Name       string `gorm:"type:varchar(100);not null"`
	City       string `gorm:"type:varchar(80)"`
	Email      string `gorm:"type:varchar(200)"`
	Phone      string `gorm:"type:varchar(30)"`
	Address    string `gorm:"type:text"`

	CreditScore      int             `gorm:"not null;default:600"`
	PreApprovedLimit decimal.Decimal `gorm:"type:numeric(20,2);not null;default:0"`
	IncomeMonthly    decimal.Decimal `gorm:"type:numeric(20,2)"`
	ExistingEMI      decimal.Decimal `gorm:"type:numeric(20,2)"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime"`
}

func (Customer) TableName() string {
	return "customers"
}
