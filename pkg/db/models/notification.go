package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/threadlinehq/threadline-backend/pkg/enums"
)

// Notification is a back-office inbox row produced by webhook and inquiry flows.
type Notification struct {
	ID        uuid.UUID                  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Kind      enums.NotificationKind     `gorm:"column:kind;not null"`
	Priority  enums.NotificationPriority `gorm:"column:priority;not null;default:'normal'"`
	Title     string                     `gorm:"column:title;not null"`
	Body      string                     `gorm:"column:body;not null;default:''"`
	ReadAt    *time.Time                 `gorm:"column:read_at"`
	CreatedAt time.Time                  `gorm:"column:created_at;autoCreateTime"`
}
