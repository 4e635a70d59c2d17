// Package tracking projects order state into the read model shown on the
// customer-facing order tracking page. It is a pure transformation with no
// storage or transport concerns.
package tracking

import (
	"time"

	"github.com/threadlinehq/threadline-backend/pkg/enums"
)

const deliveryDateFormat = "January 2, 2006"

// OrderSnapshot is the slice of an order the projection needs.
type OrderSnapshot struct {
	Status        enums.OrderStatus
	PaymentStatus enums.PaymentStatus
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Step is one entry on the tracking timeline. Every rendered step is
// completed; future steps are omitted rather than shown greyed out.
type Step struct {
	Status    enums.OrderStatus `json:"status"`
	Label     string            `json:"label"`
	Completed bool              `json:"completed"`
	Timestamp *time.Time        `json:"timestamp,omitempty"`
}

// StatusDisplay is a human label plus a UI color token.
type StatusDisplay struct {
	Label string `json:"label"`
	Color string `json:"color"`
}

// Projection is the assembled tracking view.
type Projection struct {
	Timeline          []Step        `json:"timeline"`
	EstimatedDelivery string        `json:"estimated_delivery"`
	Order             StatusDisplay `json:"order_status"`
	Payment           StatusDisplay `json:"payment_status"`
}

// canonicalSteps is the forward fulfilment path in order.
var canonicalSteps = []enums.OrderStatus{
	enums.OrderStatusPending,
	enums.OrderStatusProcessing,
	enums.OrderStatusShipped,
	enums.OrderStatusDelivered,
}

var stepLabels = map[enums.OrderStatus]string{
	enums.OrderStatusPending:    "Order Placed",
	enums.OrderStatusProcessing: "Processing",
	enums.OrderStatusShipped:    "Shipped",
	enums.OrderStatusDelivered:  "Delivered",
	enums.OrderStatusCancelled:  "Cancelled",
	enums.OrderStatusReturned:   "Returned",
}

var orderStatusDisplays = map[enums.OrderStatus]StatusDisplay{
	enums.OrderStatusPending:    {Label: "Pending", Color: "amber"},
	enums.OrderStatusProcessing: {Label: "Processing", Color: "blue"},
	enums.OrderStatusShipped:    {Label: "Shipped", Color: "indigo"},
	enums.OrderStatusDelivered:  {Label: "Delivered", Color: "green"},
	enums.OrderStatusCancelled:  {Label: "Cancelled", Color: "red"},
	enums.OrderStatusReturned:   {Label: "Returned", Color: "gray"},
}

var paymentStatusDisplays = map[enums.PaymentStatus]StatusDisplay{
	enums.PaymentStatusPending:  {Label: "Payment Pending", Color: "amber"},
	enums.PaymentStatusPaid:     {Label: "Paid", Color: "green"},
	enums.PaymentStatusFailed:   {Label: "Payment Failed", Color: "red"},
	enums.PaymentStatusRefunded: {Label: "Refunded", Color: "gray"},
}

// deliveryLeadDays is how far out delivery is estimated from order creation,
// by current status. Delivered orders show the literal below instead.
var deliveryLeadDays = map[enums.OrderStatus]int{
	enums.OrderStatusPending:    5,
	enums.OrderStatusProcessing: 3,
	enums.OrderStatusShipped:    2,
}

// Project builds the tracking view for one order. Unknown statuses degrade
// to the pending presentation instead of failing the page.
func Project(order OrderSnapshot) Projection {
	return Projection{
		Timeline:          timeline(order),
		EstimatedDelivery: estimatedDelivery(order),
		Order:             orderDisplay(order.Status),
		Payment:           paymentDisplay(order.PaymentStatus),
	}
}

func timeline(order OrderSnapshot) []Step {
	currentIdx := -1
	for i, status := range canonicalSteps {
		if status == order.Status {
			currentIdx = i
			break
		}
	}

	steps := make([]Step, 0, len(canonicalSteps)+1)
	for i, status := range canonicalSteps {
		// Pending is always shown: every order was placed.
		if i > 0 && i > currentIdx {
			continue
		}
		step := Step{Status: status, Label: stepLabels[status], Completed: true}
		switch {
		case i == 0:
			ts := order.CreatedAt
			step.Timestamp = &ts
		case i == currentIdx:
			ts := order.UpdatedAt
			step.Timestamp = &ts
		}
		steps = append(steps, step)
	}

	if order.Status == enums.OrderStatusCancelled || order.Status == enums.OrderStatusReturned {
		ts := order.UpdatedAt
		steps = append(steps, Step{
			Status:    order.Status,
			Label:     stepLabels[order.Status],
			Completed: true,
			Timestamp: &ts,
		})
	}

	return steps
}

func estimatedDelivery(order OrderSnapshot) string {
	switch order.Status {
	case enums.OrderStatusDelivered:
		return "Delivered"
	case enums.OrderStatusCancelled, enums.OrderStatusReturned:
		return "N/A"
	}
	days, ok := deliveryLeadDays[order.Status]
	if !ok {
		days = deliveryLeadDays[enums.OrderStatusPending]
	}
	return order.CreatedAt.AddDate(0, 0, days).Format(deliveryDateFormat)
}

func orderDisplay(status enums.OrderStatus) StatusDisplay {
	if display, ok := orderStatusDisplays[status]; ok {
		return display
	}
	return orderStatusDisplays[enums.OrderStatusPending]
}

func paymentDisplay(status enums.PaymentStatus) StatusDisplay {
	if display, ok := paymentStatusDisplays[status]; ok {
		return display
	}
	return paymentStatusDisplays[enums.PaymentStatusPending]
}
