package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/threadlinehq/threadline-backend/pkg/enums"
)

// Payment tracks the provider-side payment attached to an order.
type Payment struct {
	ID                uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID           uuid.UUID           `gorm:"column:order_id;type:uuid;not null;index"`
	ProviderPaymentID *string             `gorm:"column:provider_payment_id;uniqueIndex"`
	ProviderOrderID   *string             `gorm:"column:provider_order_id;index"`
	Amount            decimal.Decimal    `gorm:"column:amount;type:numeric(12,2);not null"`
	Status            enums.ChargeStatus `gorm:"column:status;not null;default:'pending'"`
	ErrorCode         *string             `gorm:"column:error_code"`
	ErrorDescription  *string             `gorm:"column:error_description"`
	CreatedAt         time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
