package access

import (
	"context"
	"errors"
	"testing"

	"haccp-flow/internal/domain"

	"github.com/stretchr/testify/assert"
)

type users map[uint]domain.User

func (u users) Create(ctx context.Context, user *domain.User) error { return nil }
func (u users) GetByID(ctx context.Context, id uint) (*domain.User, error) {
	user, ok := u[id]
	if !ok {
		return nil, errors.New("user not found")
	}
	return &user, nil
}

func TestGate(t *testing.T) {
	g := NewGate(users{
		1: {ID: 1, Role: domain.RoleEmployee, Active: true},
		2: {ID: 2, Role: domain.RoleAdmin, Active: false},
		3: {ID: 3, Role: domain.RoleAdmin, Active: true},
	})
	ctx := context.Background()
	task := &domain.Task{ID: 9, AssigneeID: 1}

	assert.NoError(t, g.CanAct(ctx, 1, task))
	assert.ErrorIs(t, g.CanAct(ctx, 2, task), domain.ErrAccessDenied)
	assert.ErrorIs(t, g.CanAct(ctx, 42, task), domain.ErrAccessDenied)

	assert.NoError(t, g.IsAdmin(ctx, 3))
	assert.ErrorIs(t, g.IsAdmin(ctx, 1), domain.ErrAccessDenied)
	assert.ErrorIs(t, g.IsAdmin(ctx, 2), domain.ErrAccessDenied)
}
