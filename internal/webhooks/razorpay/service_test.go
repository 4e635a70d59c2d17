package razorpaywebhook

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/threadlinehq/threadline-backend/internal/notifications"
	"github.com/threadlinehq/threadline-backend/internal/payments"
	"github.com/threadlinehq/threadline-backend/pkg/db/models"
	"github.com/threadlinehq/threadline-backend/pkg/enums"
	pkgerrors "github.com/threadlinehq/threadline-backend/pkg/errors"
	"github.com/threadlinehq/threadline-backend/pkg/logger"
)

type fakePayments struct {
	captured     []payments.CaptureInput
	failed       []payments.FailureInput
	failedRecord *models.Payment
	err          error
}

func (f *fakePayments) MarkCompleted(_ context.Context, input payments.CaptureInput) error {
	if f.err != nil {
		return f.err
	}
	f.captured = append(f.captured, input)
	return nil
}

func (f *fakePayments) MarkFailed(_ context.Context, input payments.FailureInput) (*models.Payment, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.failed = append(f.failed, input)
	return f.failedRecord, nil
}

type fakeOrders struct {
	paid          []string
	paymentFailed []uuid.UUID
	err           error
}

func (f *fakeOrders) MarkPaid(_ context.Context, orderNumber string) error {
	if f.err != nil {
		return f.err
	}
	f.paid = append(f.paid, orderNumber)
	return nil
}

func (f *fakeOrders) MarkPaymentFailed(_ context.Context, orderID uuid.UUID) error {
	if f.err != nil {
		return f.err
	}
	f.paymentFailed = append(f.paymentFailed, orderID)
	return nil
}

type fakeNotifier struct {
	inputs []notifications.NotifyInput
	err    error
}

func (f *fakeNotifier) Notify(_ context.Context, input notifications.NotifyInput) error {
	if f.err != nil {
		return f.err
	}
	f.inputs = append(f.inputs, input)
	return nil
}

func strp(v string) *string { return &v }

func newTestService(t *testing.T, pay *fakePayments, ord *fakeOrders, not *fakeNotifier) *Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Payments: pay,
		Orders:   ord,
		Notifier: not,
		Logger:   logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func capturedEvent() *Event {
	return &Event{
		Name: EventPaymentCaptured,
		Payload: Payload{Payment: &PaymentWrapper{Entity: PaymentEntity{
			ID:       "pay_A456",
			OrderID:  "order_R123",
			Amount:   99800,
			Currency: "INR",
			Status:   "captured",
		}}},
	}
}

func TestHandlePaymentCaptured(t *testing.T) {
	pay := &fakePayments{}
	not := &fakeNotifier{}
	svc := newTestService(t, pay, &fakeOrders{}, not)

	if err := svc.HandleEvent(context.Background(), capturedEvent()); err != nil {
		t.Fatalf("handle: %v", err)
	}

	if len(pay.captured) != 1 {
		t.Fatalf("expected one capture, got %d", len(pay.captured))
	}
	got := pay.captured[0]
	if got.ProviderPaymentID != "pay_A456" || got.ProviderOrderID != "order_R123" {
		t.Fatalf("unexpected capture input %+v", got)
	}
	if !got.Amount.Equal(decimal.RequireFromString("998")) {
		t.Fatalf("expected paise converted to rupees, got %s", got.Amount)
	}
	if len(not.inputs) != 1 || not.inputs[0].Kind != enums.NotificationKindPaymentReceived {
		t.Fatalf("expected payment-received notification, got %+v", not.inputs)
	}
}

func failedEvent() *Event {
	return &Event{
		Name: EventPaymentFailed,
		Payload: Payload{Payment: &PaymentWrapper{Entity: PaymentEntity{
			ID:               "pay_A456",
			OrderID:          "order_R123",
			ErrorCode:        strp("BAD_REQUEST_ERROR"),
			ErrorDescription: strp("card declined"),
		}}},
	}
}

func TestHandlePaymentFailedCarriesErrorDetails(t *testing.T) {
	orderID := uuid.New()
	pay := &fakePayments{failedRecord: &models.Payment{ID: uuid.New(), OrderID: orderID}}
	ord := &fakeOrders{}
	not := &fakeNotifier{}
	svc := newTestService(t, pay, ord, not)

	if err := svc.HandleEvent(context.Background(), failedEvent()); err != nil {
		t.Fatalf("handle: %v", err)
	}

	if len(pay.failed) != 1 || *pay.failed[0].ErrorCode != "BAD_REQUEST_ERROR" {
		t.Fatalf("unexpected failure input %+v", pay.failed)
	}
	if len(ord.paymentFailed) != 1 || ord.paymentFailed[0] != orderID {
		t.Fatalf("expected the owning order to be flagged, got %v", ord.paymentFailed)
	}
	if len(not.inputs) != 1 || not.inputs[0].Priority != enums.NotificationPriorityHigh {
		t.Fatalf("expected high priority notification, got %+v", not.inputs)
	}
}

func TestHandlePaymentFailedSkipsOrderOnStaleFailure(t *testing.T) {
	pay := &fakePayments{}
	ord := &fakeOrders{}
	svc := newTestService(t, pay, ord, &fakeNotifier{})

	if err := svc.HandleEvent(context.Background(), failedEvent()); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(ord.paymentFailed) != 0 {
		t.Fatalf("absorbed failure must leave the order alone, got %v", ord.paymentFailed)
	}
}

func TestHandleOrderPaidUsesReceipt(t *testing.T) {
	ord := &fakeOrders{}
	svc := newTestService(t, &fakePayments{}, ord, &fakeNotifier{})

	event := &Event{
		Name: EventOrderPaid,
		Payload: Payload{Order: &OrderWrapper{Entity: OrderEntity{
			ID:      "order_R123",
			Amount:  99800,
			Receipt: "TL-20260310-AB12CD",
			Status:  "paid",
		}}},
	}
	if err := svc.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(ord.paid) != 1 || ord.paid[0] != "TL-20260310-AB12CD" {
		t.Fatalf("expected receipt to drive the order update, got %v", ord.paid)
	}
}

func TestHandleDisputeCreatedNotifiesOnly(t *testing.T) {
	pay := &fakePayments{}
	ord := &fakeOrders{}
	not := &fakeNotifier{}
	svc := newTestService(t, pay, ord, not)

	event := &Event{
		Name: EventDisputeCreated,
		Payload: Payload{Dispute: &DisputeWrapper{Entity: DisputeEntity{
			ID:        "disp_X1",
			PaymentID: "pay_A456",
			Amount:    99800,
			Currency:  "INR",
			Phase:     "chargeback",
		}}},
	}
	if err := svc.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(not.inputs) != 1 || not.inputs[0].Kind != enums.NotificationKindDisputeOpened {
		t.Fatalf("expected dispute notification, got %+v", not.inputs)
	}
	if len(pay.captured) != 0 && len(pay.failed) != 0 {
		t.Fatal("dispute events must not touch payments")
	}
	if len(ord.paid) != 0 {
		t.Fatal("dispute events must not touch orders")
	}
}

func TestHandleUnknownEventIsIgnored(t *testing.T) {
	pay := &fakePayments{}
	svc := newTestService(t, pay, &fakeOrders{}, &fakeNotifier{})

	event := &Event{Name: "refund.processed"}
	if err := svc.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("unknown events must be acknowledged, got %v", err)
	}
	if len(pay.captured) != 0 {
		t.Fatal("unknown events must have no effects")
	}
}

func TestHandleKnownEventWithMissingPayload(t *testing.T) {
	svc := newTestService(t, &fakePayments{}, &fakeOrders{}, &fakeNotifier{})

	err := svc.HandleEvent(context.Background(), &Event{Name: EventPaymentCaptured})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestEffectFailuresAreSwallowed(t *testing.T) {
	pay := &fakePayments{err: errors.New("db down")}
	not := &fakeNotifier{err: errors.New("inbox down")}
	svc := newTestService(t, pay, &fakeOrders{}, not)

	if err := svc.HandleEvent(context.Background(), capturedEvent()); err != nil {
		t.Fatalf("effect failures must not fail the delivery: %v", err)
	}
}

func TestDecodeRejectsMissingEventName(t *testing.T) {
	if _, err := Decode([]byte(`{"payload":{}}`)); err == nil {
		t.Fatal("expected error for missing event name")
	}
	if _, err := Decode([]byte(`{not json`)); err == nil {
		t.Fatal("expected error for malformed body")
	}
}

func TestDedupKeyFallsBackToEntity(t *testing.T) {
	event := capturedEvent()

	if got := event.DedupKey("evt_123"); got != "evt_123" {
		t.Fatalf("header id must win, got %q", got)
	}
	if got := event.DedupKey(""); got != "payment.captured:pay_A456" {
		t.Fatalf("unexpected fallback key %q", got)
	}
}
