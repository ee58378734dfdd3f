package service

import (
	"context"
	"encoding/json"

	"haccp-flow/internal/core/ports"
	"haccp-flow/internal/domain"

	"go.uber.org/zap"
	"gorm.io/datatypes"
)

const maxAuditPage = 500

// AdminGate is the part of the access gate that guards global settings.
type AdminGate interface {
	IsAdmin(ctx context.Context, actorID uint) error
}

type AuditService interface {
	AuditModeEnabled(ctx context.Context) (bool, error)
	SetAuditMode(ctx context.Context, actorID uint, enabled bool) error
	ListAuditLog(ctx context.Context, actorID uint, limit int) ([]domain.AuditEntry, error)
}

type auditService struct {
	flag   ports.AuditMode
	log    ports.AuditLog
	admins AdminGate
	logger *zap.Logger
}

func NewAuditService(flag ports.AuditMode, log ports.AuditLog, admins AdminGate, logger *zap.Logger) AuditService {
	return &auditService{
		flag:   flag,
		log:    log,
		admins: admins,
		logger: logger.Named("audit"),
	}
}

func (s *auditService) AuditModeEnabled(ctx context.Context) (bool, error) {
	return s.flag.Enabled(ctx)
}

// SetAuditMode is the one write allowed while audit mode is on, otherwise it
// could never be switched off.
func (s *auditService) SetAuditMode(ctx context.Context, actorID uint, enabled bool) error {
	if err := s.admins.IsAdmin(ctx, actorID); err != nil {
		return err
	}
	if err := s.flag.Set(ctx, enabled); err != nil {
		return err
	}

	raw, _ := json.Marshal(map[string]bool{"enabled": enabled})
	if err := s.log.Record(ctx, &domain.AuditEntry{
		ActorID:    actorID,
		Action:     domain.AuditModeChanged,
		EntityType: "settings",
		Details:    datatypes.JSON(raw),
	}); err != nil {
		s.logger.Error("failed to record audit mode change", zap.Error(err))
	}

	s.logger.Info("audit mode changed", zap.Uint("actor_id", actorID), zap.Bool("enabled", enabled))
	return nil
}

func (s *auditService) ListAuditLog(ctx context.Context, actorID uint, limit int) ([]domain.AuditEntry, error) {
	if err := s.admins.IsAdmin(ctx, actorID); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > maxAuditPage {
		limit = maxAuditPage
	}
	return s.log.List(ctx, limit)
}
