// Package access answers the edge question "may this user act at all". Task
// ownership is checked again by the approval engine.
package access

import (
	"context"
	"fmt"

	"haccp-flow/internal/core/ports"
	"haccp-flow/internal/domain"
)

type Gate struct {
	users ports.UserRepository
}

func NewGate(users ports.UserRepository) *Gate {
	return &Gate{users: users}
}

func (g *Gate) CanAct(ctx context.Context, actorID uint, task *domain.Task) error {
	user, err := g.users.GetByID(ctx, actorID)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrAccessDenied, err)
	}
	if !user.Active {
		return fmt.Errorf("%w: user %d is inactive", domain.ErrAccessDenied, actorID)
	}
	return nil
}

// IsAdmin reports whether actorID may change global settings.
func (g *Gate) IsAdmin(ctx context.Context, actorID uint) error {
	user, err := g.users.GetByID(ctx, actorID)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrAccessDenied, err)
	}
	if !user.Active || user.Role != domain.RoleAdmin {
		return fmt.Errorf("%w: user %d is not an administrator", domain.ErrAccessDenied, actorID)
	}
	return nil
}
