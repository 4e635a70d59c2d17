package cart

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/threadlinehq/threadline-backend/api/middleware"
	cartstore "github.com/threadlinehq/threadline-backend/internal/cart"
	"github.com/threadlinehq/threadline-backend/pkg/db/models"
	pkgerrors "github.com/threadlinehq/threadline-backend/pkg/errors"
	"github.com/threadlinehq/threadline-backend/pkg/logger"
)

type fakeStore struct {
	state   cartstore.State
	added   []cartstore.LineItem
	removed int
	cleared int
}

func (f *fakeStore) Get(_ context.Context, _ string) (cartstore.State, error) {
	return f.state, nil
}

func (f *fakeStore) Add(_ context.Context, _ string, item cartstore.LineItem) (cartstore.State, error) {
	f.added = append(f.added, item)
	f.state.Items = append(f.state.Items, item)
	return f.state, nil
}

func (f *fakeStore) Remove(_ context.Context, _ string, _ uuid.UUID, _, _ string) (cartstore.State, error) {
	f.removed++
	return f.state, nil
}

func (f *fakeStore) UpdateQuantity(_ context.Context, _ string, _ uuid.UUID, _, _ string, quantity int) (cartstore.State, error) {
	if len(f.state.Items) > 0 {
		f.state.Items[0].Quantity = quantity
	}
	return f.state, nil
}

func (f *fakeStore) Clear(_ context.Context, _ string) error {
	f.cleared++
	return nil
}

type fakeCatalog struct {
	products map[uuid.UUID]*models.Product
}

func (f *fakeCatalog) Get(_ context.Context, id uuid.UUID) (*models.Product, error) {
	if p, ok := f.products[id]; ok {
		return p, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "cart-handlers-test"})
}

func authedRequest(method, target string, body []byte) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	ctx := middleware.WithCustomerID(req.Context(), uuid.NewString())
	return req.WithContext(ctx)
}

func TestAddItemHappyPath(t *testing.T) {
	productID := uuid.New()
	store := &fakeStore{}
	catalog := &fakeCatalog{products: map[uuid.UUID]*models.Product{
		productID: {ID: productID, Title: "Oversized Tee"},
	}}

	body, _ := json.Marshal(map[string]any{
		"product_id": productID.String(),
		"title":      "Oversized Tee",
		"size":       "L",
		"color":      "black",
		"quantity":   2,
		"price":      "499.00",
	})

	rec := httptest.NewRecorder()
	AddItem(store, catalog, testLogger())(rec, authedRequest(http.MethodPost, "/api/v1/cart/items", body))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(store.added) != 1 {
		t.Fatalf("expected one add, got %d", len(store.added))
	}
	if !store.added[0].Price.Equal(decimal.RequireFromString("499.00")) {
		t.Fatalf("price not preserved: %s", store.added[0].Price)
	}
}

func TestAddItemUnknownProduct(t *testing.T) {
	store := &fakeStore{}
	catalog := &fakeCatalog{products: map[uuid.UUID]*models.Product{}}

	body, _ := json.Marshal(map[string]any{
		"product_id": uuid.NewString(),
		"title":      "Ghost Tee",
		"size":       "M",
		"color":      "white",
		"quantity":   1,
		"price":      "299.00",
	})

	rec := httptest.NewRecorder()
	AddItem(store, catalog, testLogger())(rec, authedRequest(http.MethodPost, "/api/v1/cart/items", body))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if len(store.added) != 0 {
		t.Fatal("item must not reach the store when the product is unknown")
	}
}

func TestAddItemRejectsBadPrice(t *testing.T) {
	store := &fakeStore{}
	catalog := &fakeCatalog{products: map[uuid.UUID]*models.Product{}}

	body, _ := json.Marshal(map[string]any{
		"product_id": uuid.NewString(),
		"title":      "Tee",
		"size":       "M",
		"color":      "white",
		"quantity":   1,
		"price":      "not-a-number",
	})

	rec := httptest.NewRecorder()
	AddItem(store, catalog, testLogger())(rec, authedRequest(http.MethodPost, "/api/v1/cart/items", body))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestGetReturnsDerivedTotals(t *testing.T) {
	store := &fakeStore{state: cartstore.State{Items: []cartstore.LineItem{
		{ProductID: uuid.New(), Title: "Tee", Size: "M", Color: "white", Quantity: 2, Price: decimal.RequireFromString("250.00")},
	}}}

	rec := httptest.NewRecorder()
	Get(store, testLogger())(rec, authedRequest(http.MethodGet, "/api/v1/cart/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var envelope struct {
		Data cartResponse `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if envelope.Data.ItemCount != 2 {
		t.Fatalf("expected item count 2, got %d", envelope.Data.ItemCount)
	}
	if !envelope.Data.Total.Equal(decimal.RequireFromString("500.00")) {
		t.Fatalf("expected total 500.00, got %s", envelope.Data.Total)
	}
}

func TestRemoveItemIgnoresSleeve(t *testing.T) {
	store := &fakeStore{}

	body, _ := json.Marshal(map[string]any{
		"product_id": uuid.NewString(),
		"size":       "L",
		"color":      "black",
	})

	rec := httptest.NewRecorder()
	RemoveItem(store, testLogger())(rec, authedRequest(http.MethodDelete, "/api/v1/cart/items", body))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if store.removed != 1 {
		t.Fatalf("expected one remove, got %d", store.removed)
	}
}

func TestClearEmptiesCart(t *testing.T) {
	store := &fakeStore{}

	rec := httptest.NewRecorder()
	Clear(store, testLogger())(rec, authedRequest(http.MethodDelete, "/api/v1/cart/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if store.cleared != 1 {
		t.Fatalf("expected one clear, got %d", store.cleared)
	}
}
