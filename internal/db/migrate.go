package db

import (
	"loanflow/internal/models"
)

func AutoMigrate(db *DB) error {
	if db == nil || db.Gorm == nil || db.SQL == nil {
		return nil
	}

	return db.Gorm.AutoMigrate(
		&models.User{},
		&models.Customer{},
		&models.LoanSession{},
		&models.ApplicantProfile{},
		&models.Message{},
		&models.Offer{},
		&models.AgentLog{},
	)
}
