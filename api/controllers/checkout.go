package controllers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/threadlinehq/threadline-backend/api/middleware"
	"github.com/threadlinehq/threadline-backend/api/responses"
	"github.com/threadlinehq/threadline-backend/api/validators"
	"github.com/threadlinehq/threadline-backend/internal/checkout"
	pkgerrors "github.com/threadlinehq/threadline-backend/pkg/errors"
	"github.com/threadlinehq/threadline-backend/pkg/logger"
	"github.com/threadlinehq/threadline-backend/pkg/types"
)

type checkoutRequest struct {
	ShippingAddress types.Address `json:"shipping_address" validate:"required"`
	ProviderOrderID *string       `json:"provider_order_id,omitempty"`
}

// Checkout converts the caller's cart into an order awaiting payment.
func Checkout(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customerID, err := uuid.Parse(middleware.CustomerIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required"))
			return
		}

		var req checkoutRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Checkout(r.Context(), checkout.Input{
			CustomerID:      customerID,
			ShippingAddress: req.ShippingAddress,
			ProviderOrderID: req.ProviderOrderID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}
