package orders

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/threadlinehq/threadline-backend/api/middleware"
	"github.com/threadlinehq/threadline-backend/api/responses"
	"github.com/threadlinehq/threadline-backend/api/validators"
	orderssvc "github.com/threadlinehq/threadline-backend/internal/orders"
	"github.com/threadlinehq/threadline-backend/pkg/db/models"
	"github.com/threadlinehq/threadline-backend/pkg/enums"
	pkgerrors "github.com/threadlinehq/threadline-backend/pkg/errors"
	"github.com/threadlinehq/threadline-backend/pkg/logger"
)

type orderListResponse struct {
	Orders     []models.Order `json:"orders"`
	NextCursor string         `json:"next_cursor,omitempty"`
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

func requestIdentity(r *http.Request, logg *logger.Logger, w http.ResponseWriter) (uuid.UUID, bool) {
	customerID, err := uuid.Parse(middleware.CustomerIDFromContext(r.Context()))
	if err != nil {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required"))
		return uuid.Nil, false
	}
	return customerID, true
}

func orderIDParam(r *http.Request, logg *logger.Logger, w http.ResponseWriter) (uuid.UUID, bool) {
	orderID, err := uuid.Parse(chi.URLParam(r, "orderID"))
	if err != nil {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid order id"))
		return uuid.Nil, false
	}
	return orderID, true
}

// List returns the caller's orders, newest first.
func List(svc orderssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customerID, ok := requestIdentity(r, logg, w)
		if !ok {
			return
		}
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		rows, next, err := svc.List(r.Context(), customerID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if rows == nil {
			rows = []models.Order{}
		}
		responses.WriteSuccess(w, orderListResponse{Orders: rows, NextCursor: next})
	}
}

// Get returns a single order owned by the caller.
func Get(svc orderssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customerID, ok := requestIdentity(r, logg, w)
		if !ok {
			return
		}
		orderID, ok := orderIDParam(r, logg, w)
		if !ok {
			return
		}
		order, err := svc.Get(r.Context(), customerID, orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// Track returns the fulfilment timeline for an owned order.
func Track(svc orderssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customerID, ok := requestIdentity(r, logg, w)
		if !ok {
			return
		}
		orderID, ok := orderIDParam(r, logg, w)
		if !ok {
			return
		}
		projection, err := svc.Track(r.Context(), customerID, orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, projection)
	}
}

// Cancel cancels an owned order that has not shipped yet.
func Cancel(svc orderssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customerID, ok := requestIdentity(r, logg, w)
		if !ok {
			return
		}
		orderID, ok := orderIDParam(r, logg, w)
		if !ok {
			return
		}
		if err := svc.Cancel(r.Context(), customerID, orderID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.Get(r.Context(), customerID, orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// AdminList returns every order across customers.
func AdminList(svc orderssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		rows, next, err := svc.ListAll(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if rows == nil {
			rows = []models.Order{}
		}
		responses.WriteSuccess(w, orderListResponse{Orders: rows, NextCursor: next})
	}
}

// AdminUpdateStatus moves an order through the fulfilment chain.
func AdminUpdateStatus(svc orderssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, ok := orderIDParam(r, logg, w)
		if !ok {
			return
		}
		var req updateStatusRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		status, err := enums.ParseOrderStatus(req.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "unknown order status"))
			return
		}
		if err := svc.UpdateStatus(r.Context(), orderID, status); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusOK, map[string]string{"status": status.String()})
	}
}
