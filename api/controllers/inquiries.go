package controllers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/threadlinehq/threadline-backend/api/responses"
	"github.com/threadlinehq/threadline-backend/api/validators"
	"github.com/threadlinehq/threadline-backend/internal/inquiries"
	"github.com/threadlinehq/threadline-backend/pkg/db/models"
	"github.com/threadlinehq/threadline-backend/pkg/enums"
	pkgerrors "github.com/threadlinehq/threadline-backend/pkg/errors"
	"github.com/threadlinehq/threadline-backend/pkg/logger"
)

type submitInquiryRequest struct {
	Name      string  `json:"name" validate:"required"`
	Email     string  `json:"email" validate:"required,email"`
	Phone     *string `json:"phone,omitempty"`
	Details   string  `json:"details" validate:"required"`
	Quantity  *int    `json:"quantity,omitempty" validate:"omitempty,min=1"`
	ProductID *string `json:"product_id,omitempty" validate:"omitempty,uuid"`
}

type inquiryListResponse struct {
	Inquiries  []models.Inquiry `json:"inquiries"`
	NextCursor string           `json:"next_cursor,omitempty"`
}

// SubmitInquiry records a storefront intake form of the given kind.
func SubmitInquiry(kind enums.InquiryKind, svc inquiries.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req submitInquiryRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var productID *uuid.UUID
		if req.ProductID != nil {
			parsed, err := uuid.Parse(*req.ProductID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid product id"))
				return
			}
			productID = &parsed
		}

		inquiry, err := svc.Submit(r.Context(), inquiries.SubmitInput{
			Kind:      kind,
			Name:      req.Name,
			Email:     req.Email,
			Phone:     req.Phone,
			Details:   req.Details,
			Quantity:  req.Quantity,
			ProductID: productID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, inquiry)
	}
}

// AdminListInquiries pages through inquiries, optionally filtered by kind.
func AdminListInquiries(svc inquiries.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var kind *enums.InquiryKind
		if raw := r.URL.Query().Get("kind"); raw != "" {
			parsed, err := enums.ParseInquiryKind(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "unknown inquiry kind"))
				return
			}
			kind = &parsed
		}

		rows, next, err := svc.List(r.Context(), inquiries.ListParams{
			Kind:   kind,
			Limit:  params.Limit,
			Cursor: params.Cursor,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if rows == nil {
			rows = []models.Inquiry{}
		}
		responses.WriteSuccess(w, inquiryListResponse{Inquiries: rows, NextCursor: next})
	}
}
