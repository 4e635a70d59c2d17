package orders

import "github.com/threadlinehq/threadline-backend/pkg/enums"

// forwardNext maps each status to the only status fulfilment may advance to.
// Skipping steps is not allowed; cancellations and returns are handled
// separately.
var forwardNext = map[enums.OrderStatus]enums.OrderStatus{
	enums.OrderStatusPending:    enums.OrderStatusProcessing,
	enums.OrderStatusProcessing: enums.OrderStatusShipped,
	enums.OrderStatusShipped:    enums.OrderStatusDelivered,
}

// CanTransition reports whether an order may move from one status to another.
// Terminal statuses admit no further moves; cancelled and returned are exits
// available from any non-terminal status.
func CanTransition(from, to enums.OrderStatus) bool {
	if from == to {
		return false
	}
	if from.IsTerminal() {
		return false
	}
	if to == enums.OrderStatusCancelled || to == enums.OrderStatusReturned {
		return true
	}
	return forwardNext[from] == to
}
