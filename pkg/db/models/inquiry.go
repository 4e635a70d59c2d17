package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/threadlinehq/threadline-backend/pkg/enums"
)

// Inquiry stores custom-design requests and bulk-order intake submissions.
type Inquiry struct {
	ID        uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Kind      enums.InquiryKind `gorm:"column:kind;not null"`
	Name      string            `gorm:"column:name;not null"`
	Email     string            `gorm:"column:email;not null"`
	Phone     *string           `gorm:"column:phone"`
	Details   string            `gorm:"column:details;not null"`
	Quantity  *int              `gorm:"column:quantity"`
	ProductID *uuid.UUID        `gorm:"column:product_id;type:uuid"`
	CreatedAt time.Time         `gorm:"column:created_at;autoCreateTime"`
}
