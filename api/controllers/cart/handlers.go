package cart

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/threadlinehq/threadline-backend/api/middleware"
	"github.com/threadlinehq/threadline-backend/api/responses"
	"github.com/threadlinehq/threadline-backend/api/validators"
	cartstore "github.com/threadlinehq/threadline-backend/internal/cart"
	"github.com/threadlinehq/threadline-backend/pkg/db/models"
	pkgerrors "github.com/threadlinehq/threadline-backend/pkg/errors"
	"github.com/threadlinehq/threadline-backend/pkg/logger"
)

// Catalog confirms the product referenced by an add-to-cart call exists
// and is still purchasable.
type Catalog interface {
	Get(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// Store is the cart surface the handlers drive.
type Store interface {
	Get(ctx context.Context, customerID string) (cartstore.State, error)
	Add(ctx context.Context, customerID string, item cartstore.LineItem) (cartstore.State, error)
	Remove(ctx context.Context, customerID string, productID uuid.UUID, size, color string) (cartstore.State, error)
	UpdateQuantity(ctx context.Context, customerID string, productID uuid.UUID, size, color string, quantity int) (cartstore.State, error)
	Clear(ctx context.Context, customerID string) error
}

type addItemRequest struct {
	ProductID  string  `json:"product_id" validate:"required,uuid"`
	Title      string  `json:"title" validate:"required"`
	Size       string  `json:"size" validate:"required"`
	Color      string  `json:"color" validate:"required"`
	SleeveType *string `json:"sleeve_type,omitempty"`
	Quantity   int     `json:"quantity" validate:"required,min=1"`
	Price      string  `json:"price" validate:"required"`
}

type removeItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Size      string `json:"size" validate:"required"`
	Color     string `json:"color" validate:"required"`
}

type updateQuantityRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Size      string `json:"size" validate:"required"`
	Color     string `json:"color" validate:"required"`
	Quantity  int    `json:"quantity" validate:"min=0"`
}

type cartResponse struct {
	Items     []cartstore.LineItem `json:"items"`
	Total     decimal.Decimal      `json:"total"`
	ItemCount int                  `json:"item_count"`
}

func toCartResponse(state cartstore.State) cartResponse {
	items := state.Items
	if items == nil {
		items = []cartstore.LineItem{}
	}
	return cartResponse{
		Items:     items,
		Total:     state.Total(),
		ItemCount: state.ItemCount(),
	}
}

func Get(store Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customerID := middleware.CustomerIDFromContext(r.Context())
		state, err := store.Get(r.Context(), customerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toCartResponse(state))
	}
}

func AddItem(store Store, catalog Catalog, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req addItemRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, err := uuid.Parse(req.ProductID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid product id"))
			return
		}
		price, err := decimal.NewFromString(req.Price)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid price"))
			return
		}

		if _, err := catalog.Get(r.Context(), productID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		customerID := middleware.CustomerIDFromContext(r.Context())
		state, err := store.Add(r.Context(), customerID, cartstore.LineItem{
			ProductID:  productID,
			Title:      req.Title,
			Size:       req.Size,
			Color:      req.Color,
			SleeveType: req.SleeveType,
			Quantity:   req.Quantity,
			Price:      price,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toCartResponse(state))
	}
}

func RemoveItem(store Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req removeItemRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, err := uuid.Parse(req.ProductID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid product id"))
			return
		}

		customerID := middleware.CustomerIDFromContext(r.Context())
		state, err := store.Remove(r.Context(), customerID, productID, req.Size, req.Color)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toCartResponse(state))
	}
}

func UpdateQuantity(store Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req updateQuantityRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, err := uuid.Parse(req.ProductID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid product id"))
			return
		}

		customerID := middleware.CustomerIDFromContext(r.Context())
		state, err := store.UpdateQuantity(r.Context(), customerID, productID, req.Size, req.Color, req.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toCartResponse(state))
	}
}

func Clear(store Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customerID := middleware.CustomerIDFromContext(r.Context())
		if err := store.Clear(r.Context(), customerID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toCartResponse(cartstore.State{}))
	}
}
