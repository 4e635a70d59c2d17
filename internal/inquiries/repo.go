package inquiries

import (
	"context"

	"github.com/threadlinehq/threadline-backend/pkg/db/models"
	"github.com/threadlinehq/threadline-backend/pkg/enums"
	"github.com/threadlinehq/threadline-backend/pkg/pagination"
	"gorm.io/gorm"
)

// Repository persists inquiry submissions.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, inquiry *models.Inquiry) (*models.Inquiry, error)
	List(ctx context.Context, kind *enums.InquiryKind, limit int, cursor *pagination.Cursor) ([]models.Inquiry, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an inquiries repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, inquiry *models.Inquiry) (*models.Inquiry, error) {
	if err := r.db.WithContext(ctx).Create(inquiry).Error; err != nil {
		return nil, err
	}
	return inquiry, nil
}

func (r *repository) List(ctx context.Context, kind *enums.InquiryKind, limit int, cursor *pagination.Cursor) ([]models.Inquiry, error) {
	query := r.db.WithContext(ctx).Model(&models.Inquiry{})
	if kind != nil {
		query = query.Where("kind = ?", *kind)
	}
	if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}
	var inquiries []models.Inquiry
	err := query.
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&inquiries).Error
	if err != nil {
		return nil, err
	}
	return inquiries, nil
}
