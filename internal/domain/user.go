package domain

import "time"

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleManager  Role = "manager"
	RoleEmployee Role = "employee"
)

type User struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	Name   string `gorm:"type:varchar(100);not null" json:"name"`
	Role   Role   `gorm:"type:varchar(20);not null;default:'employee'" json:"role"`
	Active bool   `gorm:"not null" json:"active"`

	// ChatID addresses the user in the messaging bot, empty when not linked.
	ChatID string `gorm:"type:varchar(64)" json:"chat_id"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
