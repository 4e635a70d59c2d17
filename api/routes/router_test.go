package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/threadlinehq/threadline-backend/internal/auth"
	cartstore "github.com/threadlinehq/threadline-backend/internal/cart"
	checkoutsvc "github.com/threadlinehq/threadline-backend/internal/checkout"
	"github.com/threadlinehq/threadline-backend/internal/inquiries"
	"github.com/threadlinehq/threadline-backend/internal/notifications"
	"github.com/threadlinehq/threadline-backend/internal/tracking"
	pkgauth "github.com/threadlinehq/threadline-backend/pkg/auth"
	"github.com/threadlinehq/threadline-backend/pkg/config"
	"github.com/threadlinehq/threadline-backend/pkg/db/models"
	"github.com/threadlinehq/threadline-backend/pkg/enums"
	"github.com/threadlinehq/threadline-backend/pkg/logger"
	"github.com/threadlinehq/threadline-backend/pkg/pagination"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubAuthService struct{}

func (stubAuthService) Register(ctx context.Context, input auth.RegisterInput) (*auth.Session, error) {
	return nil, nil
}

func (stubAuthService) Login(ctx context.Context, input auth.LoginInput) (*auth.Session, error) {
	return nil, nil
}

type stubProducts struct{}

func (stubProducts) List(ctx context.Context, params pagination.Params) ([]models.Product, string, error) {
	return nil, "", nil
}

func (stubProducts) Get(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	return &models.Product{ID: id}, nil
}

func (stubProducts) GetBySlug(ctx context.Context, slug string) (*models.Product, error) {
	return &models.Product{Slug: slug}, nil
}

type stubCart struct{}

func (stubCart) Get(ctx context.Context, customerID string) (cartstore.State, error) {
	return cartstore.State{}, nil
}

func (stubCart) Add(ctx context.Context, customerID string, item cartstore.LineItem) (cartstore.State, error) {
	return cartstore.State{}, nil
}

func (stubCart) Remove(ctx context.Context, customerID string, productID uuid.UUID, size, color string) (cartstore.State, error) {
	return cartstore.State{}, nil
}

func (stubCart) UpdateQuantity(ctx context.Context, customerID string, productID uuid.UUID, size, color string, quantity int) (cartstore.State, error) {
	return cartstore.State{}, nil
}

func (stubCart) Clear(ctx context.Context, customerID string) error {
	return nil
}

type stubCheckout struct{}

func (stubCheckout) Checkout(ctx context.Context, input checkoutsvc.Input) (*models.Order, error) {
	return nil, nil
}

type stubOrders struct{}

func (stubOrders) Get(ctx context.Context, customerID, orderID uuid.UUID) (*models.Order, error) {
	return &models.Order{ID: orderID}, nil
}

func (stubOrders) List(ctx context.Context, customerID uuid.UUID, params pagination.Params) ([]models.Order, string, error) {
	return nil, "", nil
}

func (stubOrders) ListAll(ctx context.Context, params pagination.Params) ([]models.Order, string, error) {
	return nil, "", nil
}

func (stubOrders) Track(ctx context.Context, customerID, orderID uuid.UUID) (*tracking.Projection, error) {
	return &tracking.Projection{}, nil
}

func (stubOrders) Cancel(ctx context.Context, customerID, orderID uuid.UUID) error {
	return nil
}

func (stubOrders) UpdateStatus(ctx context.Context, orderID uuid.UUID, status enums.OrderStatus) error {
	return nil
}

func (stubOrders) MarkPaid(ctx context.Context, orderNumber string) error {
	return nil
}

func (stubOrders) MarkPaymentFailed(ctx context.Context, orderID uuid.UUID) error {
	return nil
}

type stubInquiries struct{}

func (stubInquiries) Submit(ctx context.Context, input inquiries.SubmitInput) (*models.Inquiry, error) {
	return &models.Inquiry{}, nil
}

func (stubInquiries) List(ctx context.Context, params inquiries.ListParams) ([]models.Inquiry, string, error) {
	return nil, "", nil
}

type stubNotifications struct{}

func (stubNotifications) Notify(ctx context.Context, input notifications.NotifyInput) error {
	return nil
}

func (stubNotifications) List(ctx context.Context, params notifications.ListParams) (*notifications.ListResult, error) {
	return &notifications.ListResult{}, nil
}

func (stubNotifications) MarkRead(ctx context.Context, notificationID uuid.UUID) error {
	return nil
}

func (stubNotifications) MarkAllRead(ctx context.Context) (int64, error) {
	return 0, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "8080"},
		JWT: config.JWTConfig{
			Secret:            "router-test-secret",
			Issuer:            "threadline-test",
			ExpirationMinutes: 60,
			CookieName:        "threadline_session",
		},
	}
}

func newTestRouter(t *testing.T, cfg *config.Config) http.Handler {
	t.Helper()
	return NewRouter(Deps{
		Config:      cfg,
		Logger:      logger.New(logger.Options{ServiceName: "router-test"}),
		DB:          stubPinger{},
		AuthService: stubAuthService{},
		Products:    stubProducts{},
		Cart:        stubCart{},
		Checkout:    stubCheckout{},
		Orders:      stubOrders{},
		Inquiries:   stubInquiries{},
		Notify:      stubNotifications{},
	})
}

func mintToken(t *testing.T, cfg *config.Config, role enums.CustomerRole) string {
	t.Helper()
	token, err := pkgauth.MintSessionToken(cfg.JWT, time.Now(), pkgauth.SessionTokenPayload{
		CustomerID: uuid.New(),
		Role:       role,
	})
	if err != nil {
		t.Fatalf("minting token: %v", err)
	}
	return token
}

func TestPublicPingNeedsNoAuth(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(t, cfg)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/public/ping", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestPrivateGroupRejectsMissingToken(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(t, cfg)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/cart/", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestPrivateGroupAcceptsBearerToken(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(t, cfg)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart/", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, cfg, enums.CustomerRoleShopper))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestPrivateGroupAcceptsSessionCookie(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(t, cfg)

	req := httptest.NewRequest(http.MethodGet, "/api/ping", nil)
	req.AddCookie(&http.Cookie{Name: cfg.JWT.CookieName, Value: mintToken(t, cfg, enums.CustomerRoleShopper)})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAdminGroupRequiresAdminRole(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(t, cfg)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/ping", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, cfg, enums.CustomerRoleShopper))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for shopper, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/admin/ping", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, cfg, enums.CustomerRoleAdmin))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin, got %d", rec.Code)
	}
}

func TestProductCatalogIsPublic(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(t, cfg)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/products/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
