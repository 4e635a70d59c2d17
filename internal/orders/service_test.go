package orders

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/threadlinehq/threadline-backend/pkg/db/models"
	"github.com/threadlinehq/threadline-backend/pkg/enums"
	pkgerrors "github.com/threadlinehq/threadline-backend/pkg/errors"
	"github.com/threadlinehq/threadline-backend/pkg/logger"
	"github.com/threadlinehq/threadline-backend/pkg/pagination"
	"gorm.io/gorm"
)

type fakeRepo struct {
	orders         map[uuid.UUID]*models.Order
	statusUpdates  []enums.OrderStatus
	paymentUpdates []enums.PaymentStatus
}

func newFakeRepo(orders ...*models.Order) *fakeRepo {
	repo := &fakeRepo{orders: map[uuid.UUID]*models.Order{}}
	for _, order := range orders {
		repo.orders[order.ID] = order
	}
	return repo
}

func (f *fakeRepo) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepo) Create(_ context.Context, order *models.Order) (*models.Order, error) {
	f.orders[order.ID] = order
	return order, nil
}

func (f *fakeRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Order, error) {
	order, ok := f.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return order, nil
}

func (f *fakeRepo) FindByOrderNumber(_ context.Context, orderNumber string) (*models.Order, error) {
	for _, order := range f.orders {
		if order.OrderNumber == orderNumber {
			return order, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) ListByCustomer(_ context.Context, customerID uuid.UUID, limit int, _ *pagination.Cursor) ([]models.Order, error) {
	var out []models.Order
	for _, order := range f.orders {
		if order.CustomerID == customerID {
			out = append(out, *order)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeRepo) ListAll(_ context.Context, limit int, _ *pagination.Cursor) ([]models.Order, error) {
	var out []models.Order
	for _, order := range f.orders {
		out = append(out, *order)
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeRepo) UpdateStatus(_ context.Context, id uuid.UUID, status enums.OrderStatus) error {
	f.statusUpdates = append(f.statusUpdates, status)
	if order, ok := f.orders[id]; ok {
		order.Status = status
	}
	return nil
}

func (f *fakeRepo) UpdatePaymentStatus(_ context.Context, id uuid.UUID, status enums.PaymentStatus) error {
	f.paymentUpdates = append(f.paymentUpdates, status)
	if order, ok := f.orders[id]; ok {
		order.PaymentStatus = status
	}
	return nil
}

type fakeTxRunner struct{}

func (fakeTxRunner) WithTx(_ context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

// hookedTxRunner runs a callback before the transaction body, standing in
// for a concurrent writer whose transaction commits first.
type hookedTxRunner struct {
	before func()
}

func (r hookedTxRunner) WithTx(_ context.Context, fn func(tx *gorm.DB) error) error {
	if r.before != nil {
		r.before()
	}
	return fn(nil)
}

func testOrder(customerID uuid.UUID, status enums.OrderStatus, payment enums.PaymentStatus) *models.Order {
	now := time.Now().UTC()
	return &models.Order{
		ID:            uuid.New(),
		OrderNumber:   "TL-20260310-TEST01",
		CustomerID:    customerID,
		Status:        status,
		PaymentStatus: payment,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func newTestService(t *testing.T, repo Repository) Service {
	t.Helper()
	svc, err := NewService(repo, fakeTxRunner{}, logger.New(logger.Options{ServiceName: "test", Output: io.Discard}))
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func expectCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	typed := pkgerrors.As(err)
	if typed == nil {
		t.Fatalf("expected coded error, got %v", err)
	}
	if typed.Code() != code {
		t.Fatalf("expected code %s, got %s", code, typed.Code())
	}
}

func TestGetEnforcesOwnership(t *testing.T) {
	customerID := uuid.New()
	order := testOrder(customerID, enums.OrderStatusPending, enums.PaymentStatusPending)
	svc := newTestService(t, newFakeRepo(order))

	got, err := svc.Get(context.Background(), customerID, order.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ID != order.ID {
		t.Fatalf("expected order %s, got %s", order.ID, got.ID)
	}

	_, err = svc.Get(context.Background(), uuid.New(), order.ID)
	expectCode(t, err, pkgerrors.CodeNotFound)
}

func TestTrackProjectsOwnedOrder(t *testing.T) {
	customerID := uuid.New()
	order := testOrder(customerID, enums.OrderStatusShipped, enums.PaymentStatusPaid)
	svc := newTestService(t, newFakeRepo(order))

	projection, err := svc.Track(context.Background(), customerID, order.ID)
	if err != nil {
		t.Fatalf("track: %v", err)
	}
	if len(projection.Timeline) != 3 {
		t.Fatalf("expected 3 timeline steps for shipped, got %d", len(projection.Timeline))
	}
	if projection.Order.Label != "Shipped" {
		t.Fatalf("unexpected order display %+v", projection.Order)
	}
}

func TestCancelOnlyBeforeShipping(t *testing.T) {
	customerID := uuid.New()
	pending := testOrder(customerID, enums.OrderStatusPending, enums.PaymentStatusPending)
	shipped := testOrder(customerID, enums.OrderStatusShipped, enums.PaymentStatusPaid)
	shipped.OrderNumber = "TL-20260310-TEST02"
	repo := newFakeRepo(pending, shipped)
	svc := newTestService(t, repo)

	if err := svc.Cancel(context.Background(), customerID, pending.ID); err != nil {
		t.Fatalf("cancel pending: %v", err)
	}
	if pending.Status != enums.OrderStatusCancelled {
		t.Fatalf("expected cancelled, got %s", pending.Status)
	}

	err := svc.Cancel(context.Background(), customerID, shipped.ID)
	expectCode(t, err, pkgerrors.CodeStateConflict)
}

func TestCancelRechecksStatusInsideTransaction(t *testing.T) {
	customerID := uuid.New()
	order := testOrder(customerID, enums.OrderStatusProcessing, enums.PaymentStatusPaid)
	repo := newFakeRepo(order)
	// An admin ships the order after the cancel request arrives but before
	// its transaction starts; the re-read must see the shipped row.
	tx := hookedTxRunner{before: func() { order.Status = enums.OrderStatusShipped }}
	svc, err := NewService(repo, tx, logger.New(logger.Options{ServiceName: "test", Output: io.Discard}))
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	err = svc.Cancel(context.Background(), customerID, order.ID)
	expectCode(t, err, pkgerrors.CodeStateConflict)
	if order.Status != enums.OrderStatusShipped {
		t.Fatalf("shipped order must stay shipped, got %s", order.Status)
	}
	if len(repo.statusUpdates) != 0 {
		t.Fatalf("expected no writes, got %d", len(repo.statusUpdates))
	}
}

func TestUpdateStatusRejectsIllegalTransition(t *testing.T) {
	order := testOrder(uuid.New(), enums.OrderStatusPending, enums.PaymentStatusPending)
	repo := newFakeRepo(order)
	svc := newTestService(t, repo)

	err := svc.UpdateStatus(context.Background(), order.ID, enums.OrderStatusDelivered)
	expectCode(t, err, pkgerrors.CodeStateConflict)

	if err := svc.UpdateStatus(context.Background(), order.ID, enums.OrderStatusProcessing); err != nil {
		t.Fatalf("advance to processing: %v", err)
	}
	if order.Status != enums.OrderStatusProcessing {
		t.Fatalf("expected processing, got %s", order.Status)
	}
}

func TestUpdateStatusSameStatusIsNoop(t *testing.T) {
	order := testOrder(uuid.New(), enums.OrderStatusProcessing, enums.PaymentStatusPaid)
	repo := newFakeRepo(order)
	svc := newTestService(t, repo)

	if err := svc.UpdateStatus(context.Background(), order.ID, enums.OrderStatusProcessing); err != nil {
		t.Fatalf("same-status update: %v", err)
	}
	if len(repo.statusUpdates) != 0 {
		t.Fatalf("expected no writes, got %d", len(repo.statusUpdates))
	}
}

func TestMarkPaidAdvancesPendingOrder(t *testing.T) {
	order := testOrder(uuid.New(), enums.OrderStatusPending, enums.PaymentStatusPending)
	repo := newFakeRepo(order)
	svc := newTestService(t, repo)

	if err := svc.MarkPaid(context.Background(), order.OrderNumber); err != nil {
		t.Fatalf("mark paid: %v", err)
	}
	if order.PaymentStatus != enums.PaymentStatusPaid {
		t.Fatalf("expected paid, got %s", order.PaymentStatus)
	}
	if order.Status != enums.OrderStatusProcessing {
		t.Fatalf("expected processing after payment, got %s", order.Status)
	}

	// Retried webhook deliveries must not write twice.
	if err := svc.MarkPaid(context.Background(), order.OrderNumber); err != nil {
		t.Fatalf("repeat mark paid: %v", err)
	}
	if len(repo.paymentUpdates) != 1 {
		t.Fatalf("expected a single payment update, got %d", len(repo.paymentUpdates))
	}
}

func TestMarkPaymentFailedNeverRegressesPaid(t *testing.T) {
	order := testOrder(uuid.New(), enums.OrderStatusProcessing, enums.PaymentStatusPaid)
	repo := newFakeRepo(order)
	svc := newTestService(t, repo)

	if err := svc.MarkPaymentFailed(context.Background(), order.ID); err != nil {
		t.Fatalf("mark failed: %v", err)
	}
	if order.PaymentStatus != enums.PaymentStatusPaid {
		t.Fatalf("paid order must stay paid, got %s", order.PaymentStatus)
	}
}

func TestCanTransitionTable(t *testing.T) {
	cases := []struct {
		from, to enums.OrderStatus
		want     bool
	}{
		{enums.OrderStatusPending, enums.OrderStatusProcessing, true},
		{enums.OrderStatusProcessing, enums.OrderStatusShipped, true},
		{enums.OrderStatusShipped, enums.OrderStatusDelivered, true},
		{enums.OrderStatusPending, enums.OrderStatusShipped, false},
		{enums.OrderStatusPending, enums.OrderStatusCancelled, true},
		{enums.OrderStatusShipped, enums.OrderStatusReturned, true},
		{enums.OrderStatusDelivered, enums.OrderStatusReturned, false},
		{enums.OrderStatusCancelled, enums.OrderStatusProcessing, false},
		{enums.OrderStatusDelivered, enums.OrderStatusPending, false},
	}

	for _, tc := range cases {
		if got := CanTransition(tc.from, tc.to); got != tc.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}
