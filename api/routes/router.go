package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/threadlinehq/threadline-backend/api/controllers"
	cartcontrollers "github.com/threadlinehq/threadline-backend/api/controllers/cart"
	ordercontrollers "github.com/threadlinehq/threadline-backend/api/controllers/orders"
	webhookcontrollers "github.com/threadlinehq/threadline-backend/api/controllers/webhooks"
	"github.com/threadlinehq/threadline-backend/api/middleware"
	"github.com/threadlinehq/threadline-backend/internal/auth"
	checkoutsvc "github.com/threadlinehq/threadline-backend/internal/checkout"
	"github.com/threadlinehq/threadline-backend/internal/inquiries"
	"github.com/threadlinehq/threadline-backend/internal/notifications"
	"github.com/threadlinehq/threadline-backend/internal/orders"
	"github.com/threadlinehq/threadline-backend/internal/products"
	razorpaywebhook "github.com/threadlinehq/threadline-backend/internal/webhooks/razorpay"
	"github.com/threadlinehq/threadline-backend/pkg/config"
	"github.com/threadlinehq/threadline-backend/pkg/db"
	"github.com/threadlinehq/threadline-backend/pkg/enums"
	"github.com/threadlinehq/threadline-backend/pkg/logger"
	"github.com/threadlinehq/threadline-backend/pkg/metrics"
	"github.com/threadlinehq/threadline-backend/pkg/redis"
)

// Deps carries everything the router wires into handlers.
type Deps struct {
	Config       *config.Config
	Logger       *logger.Logger
	DB           db.Pinger
	Redis        *redis.Client
	AuthService  auth.Service
	Products     products.Service
	Cart         cartcontrollers.Store
	Checkout     checkoutsvc.Service
	Orders       orders.Service
	Inquiries    inquiries.Service
	Notify       notifications.Service
	Webhook      *razorpaywebhook.Service
	WebhookGuard *razorpaywebhook.IdempotencyGuard
	Metrics      *metrics.WebhookMetrics
}

// NewRouter assembles the storefront API surface.
func NewRouter(d Deps) http.Handler {
	cfg := d.Config
	logg := d.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, d.DB, d.Redis, logg))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
	})

	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", controllers.ListProducts(d.Products, logg))
		r.Get("/{productID}", controllers.GetProduct(d.Products, logg))
		r.Get("/slug/{slug}", controllers.GetProductBySlug(d.Products, logg))
	})

	r.Route("/api/v1/inquiries", func(r chi.Router) {
		r.Post("/custom-design", controllers.SubmitInquiry(enums.InquiryKindCustomDesign, d.Inquiries, logg))
		r.Post("/bulk-order", controllers.SubmitInquiry(enums.InquiryKindBulkOrder, d.Inquiries, logg))
	})

	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.Post("/razorpay", webhookcontrollers.RazorpayWebhook(d.Webhook, cfg.Razorpay.WebhookSecret, d.WebhookGuard, d.Metrics, logg))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/register", controllers.Register(d.AuthService, cfg.JWT, logg))
		r.Post("/login", controllers.Login(d.AuthService, cfg.JWT, logg))
		r.Post("/logout", controllers.Logout(cfg.JWT))
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Group(func(r chi.Router) {
			r.Get("/ping", controllers.PrivatePing())

			r.Route("/v1/cart", func(r chi.Router) {
				r.Get("/", cartcontrollers.Get(d.Cart, logg))
				r.Post("/items", cartcontrollers.AddItem(d.Cart, d.Products, logg))
				r.Patch("/items", cartcontrollers.UpdateQuantity(d.Cart, logg))
				r.Delete("/items", cartcontrollers.RemoveItem(d.Cart, logg))
				r.Delete("/", cartcontrollers.Clear(d.Cart, logg))
			})

			r.Post("/v1/checkout", controllers.Checkout(d.Checkout, logg))

			r.Route("/v1/orders", func(r chi.Router) {
				r.Get("/", ordercontrollers.List(d.Orders, logg))
				r.Get("/{orderID}", ordercontrollers.Get(d.Orders, logg))
				r.Get("/{orderID}/track", ordercontrollers.Track(d.Orders, logg))
				r.Post("/{orderID}/cancel", ordercontrollers.Cancel(d.Orders, logg))
			})
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireRole("admin", logg))
			r.Get("/ping", controllers.AdminPing())

			r.Route("/v1/orders", func(r chi.Router) {
				r.Get("/", ordercontrollers.AdminList(d.Orders, logg))
				r.Post("/{orderID}/status", ordercontrollers.AdminUpdateStatus(d.Orders, logg))
			})
			r.Route("/v1/notifications", func(r chi.Router) {
				r.Get("/", controllers.AdminListNotifications(d.Notify, logg))
				r.Post("/{notificationID}/read", controllers.AdminMarkNotificationRead(d.Notify, logg))
				r.Post("/read-all", controllers.AdminMarkAllNotificationsRead(d.Notify, logg))
			})
			r.Get("/v1/inquiries", controllers.AdminListInquiries(d.Inquiries, logg))
		})
	})

	return r
}
