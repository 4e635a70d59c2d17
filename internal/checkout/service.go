package checkout

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/threadlinehq/threadline-backend/internal/cart"
	"github.com/threadlinehq/threadline-backend/internal/orders"
	"github.com/threadlinehq/threadline-backend/internal/payments"
	"github.com/threadlinehq/threadline-backend/pkg/db/models"
	"github.com/threadlinehq/threadline-backend/pkg/enums"
	pkgerrors "github.com/threadlinehq/threadline-backend/pkg/errors"
	"github.com/threadlinehq/threadline-backend/pkg/logger"
	"github.com/threadlinehq/threadline-backend/pkg/types"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type cartStore interface {
	Get(ctx context.Context, customerID string) (cart.State, error)
	Clear(ctx context.Context, customerID string) error
}

type paymentCreator interface {
	CreatePending(ctx context.Context, tx *gorm.DB, orderID uuid.UUID, amount decimal.Decimal, providerOrderID *string) (*models.Payment, error)
}

// Input carries everything checkout needs beyond the cart itself.
type Input struct {
	CustomerID      uuid.UUID
	ShippingAddress types.Address
	ProviderOrderID *string
}

// Service converts a cart into a durable order plus a pending payment.
type Service interface {
	Checkout(ctx context.Context, input Input) (*models.Order, error)
}

type service struct {
	carts    cartStore
	orders   orders.Repository
	payments paymentCreator
	tx       txRunner
	logg     *logger.Logger
	now      func() time.Time
}

// NewService builds the checkout service.
func NewService(carts cartStore, orderRepo orders.Repository, paymentSvc paymentCreator, tx txRunner, logg *logger.Logger) (Service, error) {
	if carts == nil {
		return nil, fmt.Errorf("cart store required")
	}
	if orderRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if paymentSvc == nil {
		return nil, fmt.Errorf("payments service required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		carts:    carts,
		orders:   orderRepo,
		payments: paymentSvc,
		tx:       tx,
		logg:     logg,
		now:      time.Now,
	}, nil
}

// Checkout snapshots the cart into line items, creates the order and its
// pending payment in one transaction, then empties the cart. The cart clear
// is best-effort: a stale cart is recoverable, a lost order is not.
func (s *service) Checkout(ctx context.Context, input Input) (*models.Order, error) {
	if input.CustomerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "customer identity missing")
	}
	if err := validateAddress(input.ShippingAddress); err != nil {
		return nil, err
	}

	state, err := s.carts.Get(ctx, input.CustomerID.String())
	if err != nil {
		return nil, err
	}
	if state.IsEmpty() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	subtotal := state.Total()
	address := input.ShippingAddress
	order := &models.Order{
		OrderNumber:     s.generateOrderNumber(),
		CustomerID:      input.CustomerID,
		Status:          enums.OrderStatusPending,
		PaymentStatus:   enums.PaymentStatusPending,
		Subtotal:        subtotal,
		Total:           subtotal,
		ShippingAddress: &address,
		Items:           snapshotItems(state.Items),
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		created, err := s.orders.WithTx(tx).Create(ctx, order)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating order")
		}
		order = created
		if _, err := s.payments.CreatePending(ctx, tx, order.ID, order.Total, input.ProviderOrderID); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.carts.Clear(ctx, input.CustomerID.String()); err != nil {
		s.logg.Error(s.logg.WithCustomerID(ctx, input.CustomerID.String()), "clearing cart after checkout", err)
	}

	return order, nil
}

func snapshotItems(items []cart.LineItem) []models.OrderLineItem {
	out := make([]models.OrderLineItem, 0, len(items))
	for _, item := range items {
		out = append(out, models.OrderLineItem{
			ProductID:  item.ProductID,
			Title:      item.Title,
			Size:       item.Size,
			Color:      item.Color,
			SleeveType: item.SleeveType,
			Quantity:   item.Quantity,
			UnitPrice:  item.Price,
			LineTotal:  item.LineTotal(),
		})
	}
	return out
}

// generateOrderNumber yields TL-<UTC date>-<random suffix>, unique enough for
// the unique index on order_number to almost never trip.
func (s *service) generateOrderNumber() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:6]
	return fmt.Sprintf("TL-%s-%s", s.now().UTC().Format("20060102"), suffix)
}

func validateAddress(address types.Address) error {
	missing := []string{}
	if address.Line1 == "" {
		missing = append(missing, "line1")
	}
	if address.City == "" {
		missing = append(missing, "city")
	}
	if address.State == "" {
		missing = append(missing, "state")
	}
	if address.PostalCode == "" {
		missing = append(missing, "postal_code")
	}
	if address.Country == "" {
		missing = append(missing, "country")
	}
	if len(missing) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "shipping address incomplete").
			WithDetails(map[string][]string{"missing": missing})
	}
	return nil
}
