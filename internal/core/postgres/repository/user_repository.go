package repository

import (
	"context"
	"errors"
	"fmt"

	"haccp-flow/internal/core/ports"
	"haccp-flow/internal/domain"

	"gorm.io/gorm"
)

var ErrUserNotFound = errors.New("user not found")

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) ports.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*domain.User, error) {
	var user domain.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user %d: %w", id, ErrUserNotFound)
		}
		return nil, err
	}
	return &user, nil
}
