package orders

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/threadlinehq/threadline-backend/internal/tracking"
	"github.com/threadlinehq/threadline-backend/pkg/db/models"
	"github.com/threadlinehq/threadline-backend/pkg/enums"
	pkgerrors "github.com/threadlinehq/threadline-backend/pkg/errors"
	"github.com/threadlinehq/threadline-backend/pkg/logger"
	"github.com/threadlinehq/threadline-backend/pkg/pagination"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes order reads and lifecycle updates.
type Service interface {
	Get(ctx context.Context, customerID, orderID uuid.UUID) (*models.Order, error)
	List(ctx context.Context, customerID uuid.UUID, params pagination.Params) ([]models.Order, string, error)
	ListAll(ctx context.Context, params pagination.Params) ([]models.Order, string, error)
	Track(ctx context.Context, customerID, orderID uuid.UUID) (*tracking.Projection, error)
	Cancel(ctx context.Context, customerID, orderID uuid.UUID) error
	UpdateStatus(ctx context.Context, orderID uuid.UUID, status enums.OrderStatus) error
	MarkPaid(ctx context.Context, orderNumber string) error
	MarkPaymentFailed(ctx context.Context, orderID uuid.UUID) error
}

type service struct {
	repo Repository
	tx   txRunner
	logg *logger.Logger
}

// NewService builds the orders service.
func NewService(repo Repository, tx txRunner, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, tx: tx, logg: logg}, nil
}

func (s *service) Get(ctx context.Context, customerID, orderID uuid.UUID) (*models.Order, error) {
	return s.findOwned(ctx, customerID, orderID)
}

func (s *service) List(ctx context.Context, customerID uuid.UUID, params pagination.Params) ([]models.Order, string, error) {
	if customerID == uuid.Nil {
		return nil, "", pkgerrors.New(pkgerrors.CodeUnauthorized, "customer identity missing")
	}
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, "", pkgerrors.New(pkgerrors.CodeValidation, "invalid cursor")
	}
	rows, err := s.repo.ListByCustomer(ctx, customerID, pagination.LimitWithBuffer(params.Limit), cursor)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing orders")
	}
	return paginate(rows, params.Limit)
}

func (s *service) ListAll(ctx context.Context, params pagination.Params) ([]models.Order, string, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, "", pkgerrors.New(pkgerrors.CodeValidation, "invalid cursor")
	}
	rows, err := s.repo.ListAll(ctx, pagination.LimitWithBuffer(params.Limit), cursor)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing orders")
	}
	return paginate(rows, params.Limit)
}

func (s *service) Track(ctx context.Context, customerID, orderID uuid.UUID) (*tracking.Projection, error) {
	order, err := s.findOwned(ctx, customerID, orderID)
	if err != nil {
		return nil, err
	}
	projection := tracking.Project(tracking.OrderSnapshot{
		Status:        order.Status,
		PaymentStatus: order.PaymentStatus,
		CreatedAt:     order.CreatedAt,
		UpdatedAt:     order.UpdatedAt,
	})
	return &projection, nil
}

// Cancel lets a customer abandon an order before it ships. The status check
// runs inside the transaction so a concurrent fulfilment update cannot land
// between the read and the write.
func (s *service) Cancel(ctx context.Context, customerID, orderID uuid.UUID) error {
	if customerID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "customer identity missing")
	}
	if orderID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindByID(ctx, orderID)
		if err != nil {
			if stderrors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading order")
		}
		// Ownership failures read as not-found so order ids cannot be probed.
		if order.CustomerID != customerID {
			return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		if order.Status != enums.OrderStatusPending && order.Status != enums.OrderStatusProcessing {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order can no longer be cancelled").
				WithDetails(map[string]string{"status": order.Status.String()})
		}
		if err := repo.UpdateStatus(ctx, order.ID, enums.OrderStatusCancelled); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancelling order")
		}
		return nil
	})
}

// UpdateStatus applies an admin-driven lifecycle move after checking the
// transition is legal. It re-reads the row inside the transaction so two
// concurrent updates cannot both pass the check.
func (s *service) UpdateStatus(ctx context.Context, orderID uuid.UUID, status enums.OrderStatus) error {
	if orderID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if !status.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid order status")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindByID(ctx, orderID)
		if err != nil {
			if stderrors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading order")
		}
		if order.Status == status {
			return nil
		}
		if !CanTransition(order.Status, status) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "status transition not allowed").
				WithDetails(map[string]string{
					"from": order.Status.String(),
					"to":   status.String(),
				})
		}
		if err := repo.UpdateStatus(ctx, order.ID, status); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "updating order status")
		}
		return nil
	})
}

// MarkPaid records a successful payment against the order number the
// provider echoes back as the receipt. Paying an already-paid order is a
// no-op so webhook retries stay safe.
func (s *service) MarkPaid(ctx context.Context, orderNumber string) error {
	if orderNumber == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "order number required")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindByOrderNumber(ctx, orderNumber)
		if err != nil {
			if stderrors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading order")
		}
		if order.PaymentStatus == enums.PaymentStatusPaid {
			return nil
		}
		if err := repo.UpdatePaymentStatus(ctx, order.ID, enums.PaymentStatusPaid); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "updating payment status")
		}
		if order.Status == enums.OrderStatusPending {
			if err := repo.UpdateStatus(ctx, order.ID, enums.OrderStatusProcessing); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "advancing paid order")
			}
		}
		return nil
	})
}

// MarkPaymentFailed flags a failed charge. Orders already paid keep their
// paid status; a late failure event for a retried payment must not regress.
func (s *service) MarkPaymentFailed(ctx context.Context, orderID uuid.UUID) error {
	if orderID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindByID(ctx, orderID)
		if err != nil {
			if stderrors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading order")
		}
		if order.PaymentStatus != enums.PaymentStatusPending {
			return nil
		}
		if err := repo.UpdatePaymentStatus(ctx, order.ID, enums.PaymentStatusFailed); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "updating payment status")
		}
		return nil
	})
}

func (s *service) findOwned(ctx context.Context, customerID, orderID uuid.UUID) (*models.Order, error) {
	if customerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "customer identity missing")
	}
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading order")
	}
	// Ownership failures read as not-found so order ids cannot be probed.
	if order.CustomerID != customerID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return order, nil
}

func paginate(rows []models.Order, limit int) ([]models.Order, string, error) {
	pageSize := pagination.NormalizeLimit(limit)
	if len(rows) <= pageSize {
		return rows, "", nil
	}
	page := rows[:pageSize]
	last := page[len(page)-1]
	next := pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	return page, next, nil
}
