package razorpaywebhook

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/threadlinehq/threadline-backend/internal/notifications"
	"github.com/threadlinehq/threadline-backend/internal/payments"
	"github.com/threadlinehq/threadline-backend/pkg/db/models"
	"github.com/threadlinehq/threadline-backend/pkg/enums"
	pkgerrors "github.com/threadlinehq/threadline-backend/pkg/errors"
	"github.com/threadlinehq/threadline-backend/pkg/logger"
	"go.uber.org/multierr"
)

type paymentMarker interface {
	MarkCompleted(ctx context.Context, input payments.CaptureInput) error
	MarkFailed(ctx context.Context, input payments.FailureInput) (*models.Payment, error)
}

type orderMarker interface {
	MarkPaid(ctx context.Context, orderNumber string) error
	MarkPaymentFailed(ctx context.Context, orderID uuid.UUID) error
}

type notifier interface {
	Notify(ctx context.Context, input notifications.NotifyInput) error
}

// ServiceParams wires the downstream services the dispatcher drives.
type ServiceParams struct {
	Payments paymentMarker
	Orders   orderMarker
	Notifier notifier
	Logger   *logger.Logger
}

// Service routes verified Razorpay events to their internal effects.
type Service struct {
	payments paymentMarker
	orders   orderMarker
	notifier notifier
	logg     *logger.Logger
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Payments == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "payments service required")
	}
	if params.Orders == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "orders service required")
	}
	if params.Notifier == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "notifier required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger required")
	}
	return &Service{
		payments: params.Payments,
		orders:   params.Orders,
		notifier: params.Notifier,
		logg:     params.Logger,
	}, nil
}

// effect is one internal update triggered by an event. Effects run
// best-effort: a failure is logged, the delivery is still acknowledged, and
// the provider is never asked to retry on our behalf.
type effect struct {
	name string
	run  func(ctx context.Context) error
}

// HandleEvent validates the event payload and runs its effects. A non-nil
// error means the payload itself was malformed; downstream failures never
// surface here.
func (s *Service) HandleEvent(ctx context.Context, event *Event) error {
	if event == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "razorpay event required")
	}

	var effects []effect
	switch event.Name {
	case EventPaymentCaptured:
		if event.Payload.Payment == nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "payment payload missing")
		}
		effects = s.paymentCapturedEffects(event.Payload.Payment.Entity)
	case EventPaymentFailed:
		if event.Payload.Payment == nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "payment payload missing")
		}
		effects = s.paymentFailedEffects(event.Payload.Payment.Entity)
	case EventOrderPaid:
		if event.Payload.Order == nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "order payload missing")
		}
		effects = s.orderPaidEffects(event.Payload.Order.Entity)
	case EventDisputeCreated:
		if event.Payload.Dispute == nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "dispute payload missing")
		}
		effects = s.disputeEffects(event.Payload.Dispute.Entity)
	default:
		s.logg.Info(s.logg.WithField(ctx, "event", event.Name), "ignoring unhandled razorpay event")
		return nil
	}

	s.runEffects(ctx, event.Name, effects)
	return nil
}

func (s *Service) paymentCapturedEffects(payment PaymentEntity) []effect {
	amount := AmountToMajor(payment.Amount)
	return []effect{
		{
			name: "mark payment completed",
			run: func(ctx context.Context) error {
				return s.payments.MarkCompleted(ctx, payments.CaptureInput{
					ProviderPaymentID: payment.ID,
					ProviderOrderID:   payment.OrderID,
					Amount:            amount,
				})
			},
		},
		{
			name: "notify payment received",
			run: func(ctx context.Context) error {
				return s.notifier.Notify(ctx, notifications.NotifyInput{
					Kind:     enums.NotificationKindPaymentReceived,
					Priority: enums.NotificationPriorityNormal,
					Title:    fmt.Sprintf("Payment of %s %s received", payment.Currency, amount),
					Body:     fmt.Sprintf("Payment %s captured for provider order %s", payment.ID, payment.OrderID),
				})
			},
		},
	}
}

func (s *Service) paymentFailedEffects(payment PaymentEntity) []effect {
	return []effect{
		{
			name: "mark payment failed",
			run: func(ctx context.Context) error {
				record, err := s.payments.MarkFailed(ctx, payments.FailureInput{
					ProviderPaymentID: payment.ID,
					ProviderOrderID:   payment.OrderID,
					ErrorCode:         payment.ErrorCode,
					ErrorDescription:  payment.ErrorDescription,
				})
				if err != nil {
					return err
				}
				// A nil record means a completed charge absorbed a stale
				// failure; the order stays untouched.
				if record == nil {
					return nil
				}
				return s.orders.MarkPaymentFailed(ctx, record.OrderID)
			},
		},
		{
			name: "notify payment failed",
			run: func(ctx context.Context) error {
				description := ""
				if payment.ErrorDescription != nil {
					description = *payment.ErrorDescription
				}
				return s.notifier.Notify(ctx, notifications.NotifyInput{
					Kind:     enums.NotificationKindPaymentFailed,
					Priority: enums.NotificationPriorityHigh,
					Title:    fmt.Sprintf("Payment %s failed", payment.ID),
					Body:     description,
				})
			},
		},
	}
}

func (s *Service) orderPaidEffects(order OrderEntity) []effect {
	amount := AmountToMajor(order.Amount)
	return []effect{
		{
			name: "mark order paid",
			run: func(ctx context.Context) error {
				if order.Receipt == "" {
					return pkgerrors.New(pkgerrors.CodeValidation, "order receipt missing")
				}
				return s.orders.MarkPaid(ctx, order.Receipt)
			},
		},
		{
			name: "notify order paid",
			run: func(ctx context.Context) error {
				return s.notifier.Notify(ctx, notifications.NotifyInput{
					Kind:     enums.NotificationKindOrderPaid,
					Priority: enums.NotificationPriorityNormal,
					Title:    fmt.Sprintf("Order %s paid (%s %s)", order.Receipt, order.Currency, amount),
					Body:     fmt.Sprintf("Provider order %s settled", order.ID),
				})
			},
		},
	}
}

func (s *Service) disputeEffects(dispute DisputeEntity) []effect {
	return []effect{
		{
			name: "notify dispute opened",
			run: func(ctx context.Context) error {
				return s.notifier.Notify(ctx, notifications.NotifyInput{
					Kind:     enums.NotificationKindDisputeOpened,
					Priority: enums.NotificationPriorityHigh,
					Title:    fmt.Sprintf("Dispute opened on payment %s", dispute.PaymentID),
					Body:     fmt.Sprintf("Dispute %s in phase %s (%s %s)", dispute.ID, dispute.Phase, dispute.Currency, AmountToMajor(dispute.Amount)),
				})
			},
		},
	}
}

func (s *Service) runEffects(ctx context.Context, eventName string, effects []effect) {
	var errs error
	for _, e := range effects {
		if err := e.run(ctx); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", e.name, err))
		}
	}
	if errs != nil {
		ctx = s.logg.WithField(ctx, "event", eventName)
		s.logg.Error(ctx, "razorpay event effects failed", errs)
	}
}
