package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AgentLog stores one turn's full audit payload: the per-stage trace plus the
// model directive (or the error that replaced it). Append-only.
type AgentLog struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey"`
	SessionID uuid.UUID  `gorm:"type:uuid;not null;index"`
	OfferID   *uuid.UUID `gorm:"type:uuid"`

	Log datatypes.JSON `gorm:"type:jsonb;not null"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime;index"`
}

func (AgentLog) TableName() string {
	return "agent_logs"
}

func (l *AgentLog) BeforeCreate(_ *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
