package checkout

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/threadlinehq/threadline-backend/internal/cart"
	"github.com/threadlinehq/threadline-backend/internal/orders"
	"github.com/threadlinehq/threadline-backend/pkg/db/models"
	"github.com/threadlinehq/threadline-backend/pkg/enums"
	pkgerrors "github.com/threadlinehq/threadline-backend/pkg/errors"
	"github.com/threadlinehq/threadline-backend/pkg/logger"
	"github.com/threadlinehq/threadline-backend/pkg/pagination"
	"github.com/threadlinehq/threadline-backend/pkg/types"
	"gorm.io/gorm"
)

type fakeCartStore struct {
	state  cart.State
	getErr error
	clears int
}

func (f *fakeCartStore) Get(_ context.Context, _ string) (cart.State, error) {
	if f.getErr != nil {
		return cart.State{}, f.getErr
	}
	return f.state, nil
}

func (f *fakeCartStore) Clear(_ context.Context, _ string) error {
	f.clears++
	return nil
}

type fakeOrderRepo struct {
	created *models.Order
}

func (f *fakeOrderRepo) WithTx(tx *gorm.DB) orders.Repository { return f }

func (f *fakeOrderRepo) Create(_ context.Context, order *models.Order) (*models.Order, error) {
	order.ID = uuid.New()
	f.created = order
	return order, nil
}

func (f *fakeOrderRepo) FindByID(_ context.Context, _ uuid.UUID) (*models.Order, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeOrderRepo) FindByOrderNumber(_ context.Context, _ string) (*models.Order, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeOrderRepo) ListByCustomer(_ context.Context, _ uuid.UUID, _ int, _ *pagination.Cursor) ([]models.Order, error) {
	return nil, nil
}

func (f *fakeOrderRepo) ListAll(_ context.Context, _ int, _ *pagination.Cursor) ([]models.Order, error) {
	return nil, nil
}

func (f *fakeOrderRepo) UpdateStatus(_ context.Context, _ uuid.UUID, _ enums.OrderStatus) error {
	return nil
}

func (f *fakeOrderRepo) UpdatePaymentStatus(_ context.Context, _ uuid.UUID, _ enums.PaymentStatus) error {
	return nil
}

type fakePaymentCreator struct {
	created *models.Payment
}

func (f *fakePaymentCreator) CreatePending(_ context.Context, _ *gorm.DB, orderID uuid.UUID, amount decimal.Decimal, providerOrderID *string) (*models.Payment, error) {
	f.created = &models.Payment{
		OrderID:         orderID,
		ProviderOrderID: providerOrderID,
		Amount:          amount,
		Status:          enums.ChargeStatusPending,
	}
	return f.created, nil
}

type fakeTxRunner struct{}

func (fakeTxRunner) WithTx(_ context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func testAddress() types.Address {
	return types.Address{
		Line1:      "14 MG Road",
		City:       "Bengaluru",
		State:      "Karnataka",
		PostalCode: "560001",
		Country:    "IN",
	}
}

func filledCart() cart.State {
	return cart.State{Items: []cart.LineItem{
		{
			ProductID: uuid.New(),
			Title:     "graphic tee",
			Size:      "M",
			Color:     "black",
			Quantity:  2,
			Price:     decimal.RequireFromString("499.00"),
		},
	}}
}

func newTestService(t *testing.T, carts *fakeCartStore) (Service, *fakeOrderRepo, *fakePaymentCreator) {
	t.Helper()
	orderRepo := &fakeOrderRepo{}
	paymentSvc := &fakePaymentCreator{}
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	svc, err := NewService(carts, orderRepo, paymentSvc, fakeTxRunner{}, logg)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc, orderRepo, paymentSvc
}

func TestCheckoutSnapshotsCart(t *testing.T) {
	carts := &fakeCartStore{state: filledCart()}
	svc, orderRepo, paymentSvc := newTestService(t, carts)
	providerOrderID := "order_R123"

	order, err := svc.Checkout(context.Background(), Input{
		CustomerID:      uuid.New(),
		ShippingAddress: testAddress(),
		ProviderOrderID: &providerOrderID,
	})
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}

	if !order.Total.Equal(decimal.RequireFromString("998.00")) {
		t.Fatalf("expected total 998.00, got %s", order.Total)
	}
	if len(order.Items) != 1 || !order.Items[0].LineTotal.Equal(decimal.RequireFromString("998.00")) {
		t.Fatalf("unexpected line snapshot %+v", order.Items)
	}
	if orderRepo.created == nil {
		t.Fatal("expected order to be persisted")
	}
	if paymentSvc.created == nil || !paymentSvc.created.Amount.Equal(order.Total) {
		t.Fatalf("expected pending payment for order total, got %+v", paymentSvc.created)
	}
	if paymentSvc.created.ProviderOrderID == nil || *paymentSvc.created.ProviderOrderID != "order_R123" {
		t.Fatal("expected provider order id to be linked")
	}
	if carts.clears != 1 {
		t.Fatalf("expected cart to be cleared once, got %d", carts.clears)
	}
}

func TestCheckoutOrderNumberShape(t *testing.T) {
	carts := &fakeCartStore{state: filledCart()}
	svc, _, _ := newTestService(t, carts)

	order, err := svc.Checkout(context.Background(), Input{
		CustomerID:      uuid.New(),
		ShippingAddress: testAddress(),
	})
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}

	parts := strings.Split(order.OrderNumber, "-")
	if len(parts) != 3 || parts[0] != "TL" || len(parts[1]) != 8 || len(parts[2]) != 6 {
		t.Fatalf("unexpected order number %q", order.OrderNumber)
	}
}

func TestCheckoutRejectsEmptyCart(t *testing.T) {
	carts := &fakeCartStore{}
	svc, _, _ := newTestService(t, carts)

	_, err := svc.Checkout(context.Background(), Input{
		CustomerID:      uuid.New(),
		ShippingAddress: testAddress(),
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if carts.clears != 0 {
		t.Fatal("empty cart must not be cleared")
	}
}

func TestCheckoutRejectsIncompleteAddress(t *testing.T) {
	carts := &fakeCartStore{state: filledCart()}
	svc, _, _ := newTestService(t, carts)

	address := testAddress()
	address.PostalCode = ""
	_, err := svc.Checkout(context.Background(), Input{
		CustomerID:      uuid.New(),
		ShippingAddress: address,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}
