package inquiries

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/threadlinehq/threadline-backend/internal/notifications"
	"github.com/threadlinehq/threadline-backend/pkg/db/models"
	"github.com/threadlinehq/threadline-backend/pkg/enums"
	pkgerrors "github.com/threadlinehq/threadline-backend/pkg/errors"
	"github.com/threadlinehq/threadline-backend/pkg/logger"
	"github.com/threadlinehq/threadline-backend/pkg/pagination"
)

type notifier interface {
	Notify(ctx context.Context, input notifications.NotifyInput) error
}

// SubmitInput is a public inquiry submission. Quantity and ProductID only
// apply to bulk orders.
type SubmitInput struct {
	Kind      enums.InquiryKind
	Name      string
	Email     string
	Phone     *string
	Details   string
	Quantity  *int
	ProductID *uuid.UUID
}

// ListParams filters the admin inquiry listing.
type ListParams struct {
	Kind   *enums.InquiryKind
	Limit  int
	Cursor string
}

// Service handles inquiry intake and the admin listing.
type Service interface {
	Submit(ctx context.Context, input SubmitInput) (*models.Inquiry, error)
	List(ctx context.Context, params ListParams) ([]models.Inquiry, string, error)
}

type service struct {
	repo     Repository
	notifier notifier
	logg     *logger.Logger
}

// NewService builds the inquiries service.
func NewService(repo Repository, notifier notifier, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("inquiries repository required")
	}
	if notifier == nil {
		return nil, fmt.Errorf("notifier required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, notifier: notifier, logg: logg}, nil
}

// Submit stores the inquiry and drops a note in the back-office inbox. The
// notification is best-effort: the submission already succeeded.
func (s *service) Submit(ctx context.Context, input SubmitInput) (*models.Inquiry, error) {
	if !input.Kind.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid inquiry kind")
	}
	if input.Name == "" || input.Email == "" || input.Details == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name, email and details are required")
	}
	if input.Kind == enums.InquiryKindBulkOrder {
		if input.Quantity == nil || *input.Quantity <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "bulk orders need a positive quantity")
		}
	}

	inquiry := &models.Inquiry{
		Kind:      input.Kind,
		Name:      input.Name,
		Email:     input.Email,
		Phone:     input.Phone,
		Details:   input.Details,
		Quantity:  input.Quantity,
		ProductID: input.ProductID,
	}
	created, err := s.repo.Create(ctx, inquiry)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating inquiry")
	}

	notifyErr := s.notifier.Notify(ctx, notifications.NotifyInput{
		Kind:     enums.NotificationKindInquiryReceived,
		Priority: enums.NotificationPriorityNormal,
		Title:    fmt.Sprintf("New %s inquiry from %s", input.Kind, input.Name),
		Body:     input.Details,
	})
	if notifyErr != nil {
		s.logg.Error(ctx, "notifying inquiry submission", notifyErr)
	}

	return created, nil
}

func (s *service) List(ctx context.Context, params ListParams) ([]models.Inquiry, string, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, "", pkgerrors.New(pkgerrors.CodeValidation, "invalid cursor")
	}
	rows, err := s.repo.List(ctx, params.Kind, pagination.LimitWithBuffer(params.Limit), cursor)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing inquiries")
	}

	pageSize := pagination.NormalizeLimit(params.Limit)
	if len(rows) <= pageSize {
		return rows, "", nil
	}
	page := rows[:pageSize]
	last := page[len(page)-1]
	next := pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	return page, next, nil
}
