package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/threadlinehq/threadline-backend/pkg/enums"
)

// Customer is a storefront account; admins share the table with a role flag.
type Customer struct {
	ID           uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Email        string             `gorm:"column:email;uniqueIndex;not null"`
	Name         string             `gorm:"column:name;not null"`
	PasswordHash string             `gorm:"column:password_hash;not null"`
	Role         enums.CustomerRole `gorm:"column:role;not null;default:'shopper'"`
	CreatedAt    time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
