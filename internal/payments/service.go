package payments

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/threadlinehq/threadline-backend/pkg/db/models"
	"github.com/threadlinehq/threadline-backend/pkg/enums"
	pkgerrors "github.com/threadlinehq/threadline-backend/pkg/errors"
	"github.com/threadlinehq/threadline-backend/pkg/logger"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// CaptureInput carries the fields delivered with a successful charge.
type CaptureInput struct {
	ProviderPaymentID string
	ProviderOrderID   string
	Amount            decimal.Decimal
}

// FailureInput carries the fields delivered with a failed charge.
type FailureInput struct {
	ProviderPaymentID string
	ProviderOrderID   string
	ErrorCode         *string
	ErrorDescription  *string
}

// Service applies provider payment outcomes to stored payment records.
type Service interface {
	CreatePending(ctx context.Context, tx *gorm.DB, orderID uuid.UUID, amount decimal.Decimal, providerOrderID *string) (*models.Payment, error)
	MarkCompleted(ctx context.Context, input CaptureInput) error
	MarkFailed(ctx context.Context, input FailureInput) (*models.Payment, error)
	GetByOrder(ctx context.Context, orderID uuid.UUID) (*models.Payment, error)
}

type service struct {
	repo Repository
	tx   txRunner
	logg *logger.Logger
}

// NewService builds the payments service.
func NewService(repo Repository, tx txRunner, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("payments repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, tx: tx, logg: logg}, nil
}

// CreatePending records the expected charge at checkout time, inside the
// caller's transaction.
func (s *service) CreatePending(ctx context.Context, tx *gorm.DB, orderID uuid.UUID, amount decimal.Decimal, providerOrderID *string) (*models.Payment, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if amount.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must not be negative")
	}
	payment := &models.Payment{
		OrderID:         orderID,
		ProviderOrderID: providerOrderID,
		Amount:          amount,
		Status:          enums.ChargeStatusPending,
	}
	created, err := s.repo.WithTx(tx).Create(ctx, payment)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating payment record")
	}
	return created, nil
}

// MarkCompleted records a captured charge. Records already completed are
// left untouched so retried deliveries stay idempotent.
func (s *service) MarkCompleted(ctx context.Context, input CaptureInput) error {
	if input.ProviderPaymentID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "provider payment id required")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		payment, err := s.locate(ctx, repo, input.ProviderPaymentID, input.ProviderOrderID)
		if err != nil {
			return err
		}
		if payment.Status == enums.ChargeStatusCompleted {
			return nil
		}
		if payment.Status != enums.ChargeStatusPending {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "payment cannot complete from current state").
				WithDetails(map[string]string{"status": payment.Status.String()})
		}

		payment.ProviderPaymentID = &input.ProviderPaymentID
		payment.Status = enums.ChargeStatusCompleted
		if !input.Amount.IsZero() && !payment.Amount.Equal(input.Amount) {
			ctx := s.logg.WithFields(ctx, map[string]any{
				"expected": payment.Amount.String(),
				"captured": input.Amount.String(),
			})
			s.logg.Warn(ctx, "captured amount differs from recorded amount")
			payment.Amount = input.Amount
		}
		if err := repo.Update(ctx, payment); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "updating payment record")
		}
		return nil
	})
}

// MarkFailed records a failed charge with the provider's error details. It
// returns the failed record so callers can flag the owning order; the return
// is nil when the failure was ignored to protect a completed charge.
func (s *service) MarkFailed(ctx context.Context, input FailureInput) (*models.Payment, error) {
	if input.ProviderPaymentID == "" && input.ProviderOrderID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "provider payment or order id required")
	}

	var failed *models.Payment
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		payment, err := s.locate(ctx, repo, input.ProviderPaymentID, input.ProviderOrderID)
		if err != nil {
			return err
		}
		if payment.Status == enums.ChargeStatusFailed {
			failed = payment
			return nil
		}
		// A completed charge can still receive stale failure events from
		// earlier attempts; never regress it.
		if payment.Status != enums.ChargeStatusPending {
			return nil
		}

		if input.ProviderPaymentID != "" {
			payment.ProviderPaymentID = &input.ProviderPaymentID
		}
		payment.Status = enums.ChargeStatusFailed
		payment.ErrorCode = input.ErrorCode
		payment.ErrorDescription = input.ErrorDescription
		if err := repo.Update(ctx, payment); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "updating payment record")
		}
		failed = payment
		return nil
	})
	if err != nil {
		return nil, err
	}
	return failed, nil
}

func (s *service) GetByOrder(ctx context.Context, orderID uuid.UUID) (*models.Payment, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	payment, err := s.repo.FindByOrderID(ctx, orderID)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "payment not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading payment")
	}
	return payment, nil
}

// locate resolves a payment by provider payment id first, falling back to
// the provider order id the record was created with at checkout.
func (s *service) locate(ctx context.Context, repo Repository, providerPaymentID, providerOrderID string) (*models.Payment, error) {
	if providerPaymentID != "" {
		payment, err := repo.FindByProviderPaymentID(ctx, providerPaymentID)
		if err == nil {
			return payment, nil
		}
		if !stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading payment")
		}
	}
	if providerOrderID != "" {
		payment, err := repo.FindByProviderOrderID(ctx, providerOrderID)
		if err == nil {
			return payment, nil
		}
		if !stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading payment")
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "payment not found")
}
