package repository

import (
	"context"

	"haccp-flow/internal/core/ports"
	"haccp-flow/internal/domain"

	"gorm.io/gorm"
)

type auditRepository struct {
	db *gorm.DB
}

// NewAuditRepository stores audit entries in the audit_log table.
func NewAuditRepository(db *gorm.DB) ports.AuditLog {
	return &auditRepository{db: db}
}

func (r *auditRepository) Record(ctx context.Context, entry *domain.AuditEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// List returns the newest entries first.
func (r *auditRepository) List(ctx context.Context, limit int) ([]domain.AuditEntry, error) {
	var entries []domain.AuditEntry
	err := r.db.WithContext(ctx).Order("id DESC").Limit(limit).Find(&entries).Error
	return entries, err
}
