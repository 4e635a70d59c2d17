package enums

// NotificationKind labels the event a notification row describes.
type NotificationKind string

const (
	NotificationKindPaymentReceived NotificationKind = "payment_received"
	NotificationKindPaymentFailed   NotificationKind = "payment_failed"
	NotificationKindOrderPaid       NotificationKind = "order_paid"
	NotificationKindDisputeOpened   NotificationKind = "dispute_opened"
	NotificationKindInquiryReceived NotificationKind = "inquiry_received"
)

func (k NotificationKind) IsValid() bool {
	switch k {
	case NotificationKindPaymentReceived,
		NotificationKindPaymentFailed,
		NotificationKindOrderPaid,
		NotificationKindDisputeOpened,
		NotificationKindInquiryReceived:
		return true
	default:
		return false
	}
}

// NotificationPriority orders notifications for back-office triage.
type NotificationPriority string

const (
	NotificationPriorityNormal NotificationPriority = "normal"
	NotificationPriorityHigh   NotificationPriority = "high"
)

func (p NotificationPriority) IsValid() bool {
	return p == NotificationPriorityNormal || p == NotificationPriorityHigh
}
