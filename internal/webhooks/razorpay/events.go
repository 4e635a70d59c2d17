package razorpaywebhook

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Event names Razorpay delivers that this service acts on. Anything else is
// acknowledged and dropped.
const (
	EventPaymentCaptured = "payment.captured"
	EventPaymentFailed   = "payment.failed"
	EventOrderPaid       = "order.paid"
	EventDisputeCreated  = "payment.dispute.created"
)

// Event is the envelope of a Razorpay webhook delivery.
type Event struct {
	Name      string  `json:"event"`
	AccountID string  `json:"account_id"`
	Payload   Payload `json:"payload"`
	CreatedAt int64   `json:"created_at"`
}

// Payload carries the entity wrappers present on the events we dispatch.
type Payload struct {
	Payment *PaymentWrapper `json:"payment,omitempty"`
	Order   *OrderWrapper   `json:"order,omitempty"`
	Dispute *DisputeWrapper `json:"dispute,omitempty"`
}

type PaymentWrapper struct {
	Entity PaymentEntity `json:"entity"`
}

// PaymentEntity is the subset of Razorpay's payment entity we consume.
// Amount is in the currency's minor unit (paise for INR).
type PaymentEntity struct {
	ID               string  `json:"id"`
	OrderID          string  `json:"order_id"`
	Amount           int64   `json:"amount"`
	Currency         string  `json:"currency"`
	Status           string  `json:"status"`
	Method           string  `json:"method"`
	Email            string  `json:"email"`
	Contact          string  `json:"contact"`
	ErrorCode        *string `json:"error_code"`
	ErrorDescription *string `json:"error_description"`
}

type OrderWrapper struct {
	Entity OrderEntity `json:"entity"`
}

// OrderEntity is the subset of Razorpay's order entity we consume. Receipt
// echoes the order number handed over when the provider order was created.
type OrderEntity struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

type DisputeWrapper struct {
	Entity DisputeEntity `json:"entity"`
}

// DisputeEntity is the subset of Razorpay's dispute entity we consume.
type DisputeEntity struct {
	ID        string `json:"id"`
	PaymentID string `json:"payment_id"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
	Phase     string `json:"phase"`
	Status    string `json:"status"`
}

// Decode parses a webhook body into an Event.
func Decode(body []byte) (*Event, error) {
	var event Event
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, fmt.Errorf("decode razorpay event: %w", err)
	}
	if event.Name == "" {
		return nil, fmt.Errorf("razorpay event name missing")
	}
	return &event, nil
}

// DedupKey identifies one delivery for idempotency. Razorpay sends an event
// id header; when absent we fall back to the entity id plus event name.
func (e *Event) DedupKey(headerEventID string) string {
	if headerEventID != "" {
		return headerEventID
	}
	entityID := ""
	switch {
	case e.Payload.Payment != nil:
		entityID = e.Payload.Payment.Entity.ID
	case e.Payload.Order != nil:
		entityID = e.Payload.Order.Entity.ID
	case e.Payload.Dispute != nil:
		entityID = e.Payload.Dispute.Entity.ID
	}
	if entityID == "" {
		return ""
	}
	return fmt.Sprintf("%s:%s", e.Name, entityID)
}

// minorUnitDivisor converts paise to rupees.
var minorUnitDivisor = decimal.NewFromInt(100)

// AmountToMajor converts a minor-unit amount to the major currency unit.
func AmountToMajor(amount int64) decimal.Decimal {
	return decimal.NewFromInt(amount).Div(minorUnitDivisor)
}
