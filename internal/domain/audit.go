package domain

import (
	"time"

	"gorm.io/datatypes"
)

const (
	AuditTaskDecided      = "task_decided"
	AuditDocumentCreated  = "document_created"
	AuditExecutionStarted = "execution_started"
	AuditExecutionDone    = "execution_completed"
	AuditModeChanged      = "audit_mode_changed"
)

type AuditEntry struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	ActorID    uint           `gorm:"index;not null" json:"actor_id"`
	Action     string         `gorm:"type:varchar(50);index;not null" json:"action"`
	EntityType string         `gorm:"type:varchar(50);not null" json:"entity_type"`
	EntityID   uint           `gorm:"index" json:"entity_id"`
	Details    datatypes.JSON `gorm:"type:jsonb" json:"details"`
	CreatedAt  time.Time      `json:"created_at"`
}

func (AuditEntry) TableName() string {
	return "audit_log"
}
