package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/senjaya/lokapasar-backend/api/controllers"
	"github.com/senjaya/lokapasar-backend/api/middleware"
	addresssvc "github.com/senjaya/lokapasar-backend/internal/addresses"
	"github.com/senjaya/lokapasar-backend/internal/auth"
	bannersvc "github.com/senjaya/lokapasar-backend/internal/banners"
	cartsvc "github.com/senjaya/lokapasar-backend/internal/cart"
	categorysvc "github.com/senjaya/lokapasar-backend/internal/categories"
	checkoutsvc "github.com/senjaya/lokapasar-backend/internal/checkout"
	notificationsvc "github.com/senjaya/lokapasar-backend/internal/notifications"
	ordersvc "github.com/senjaya/lokapasar-backend/internal/orders"
	productsvc "github.com/senjaya/lokapasar-backend/internal/products"
	"github.com/senjaya/lokapasar-backend/internal/reviews"
	"github.com/senjaya/lokapasar-backend/internal/shipping"
	storesvc "github.com/senjaya/lokapasar-backend/internal/stores"
	"github.com/senjaya/lokapasar-backend/pkg/auth/session"
	"github.com/senjaya/lokapasar-backend/pkg/config"
	"github.com/senjaya/lokapasar-backend/pkg/enums"
	"github.com/senjaya/lokapasar-backend/pkg/logger"
	"github.com/senjaya/lokapasar-backend/pkg/metrics"
	"github.com/senjaya/lokapasar-backend/pkg/redis"
)

type pinger interface {
	Ping(ctx context.Context) error
}

// Params bundles everything the router needs. Nil optional members degrade
// gracefully: metrics and idempotency drop out, health checks report them.
type Params struct {
	Config         *config.Config
	Logger         *logger.Logger
	DB             pinger
	Redis          *redis.Client
	SessionChecker session.AccessSessionChecker
	Registry       *prometheus.Registry
	HTTPMetrics    *metrics.HTTPMetrics

	Auth          auth.Service
	Products      productsvc.Service
	Stores        storesvc.Service
	Cart          cartsvc.Service
	Checkout      checkoutsvc.Service
	Orders        ordersvc.Service
	Addresses     addresssvc.Service
	Categories    categorysvc.Service
	Banners       bannersvc.Service
	Reviews       reviews.Service
	Notifications notificationsvc.Service
	Shipping      *shipping.Calculator
}

// NewRouter assembles the full HTTP surface.
func NewRouter(p Params) http.Handler {
	cfg := p.Config
	logg := p.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(p.HTTPMetrics),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, p.DB, p.Redis))
	})

	if p.Registry != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(p.Registry))
	}

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(middleware.AuthRateLimit(loginPolicy, p.Redis, logg)).Post("/login", controllers.AuthLogin(p.Auth, logg))
			r.With(middleware.AuthRateLimit(registerPolicy, p.Redis, logg)).Post("/register", controllers.AuthRegister(p.Auth, logg))
			r.Post("/refresh", controllers.AuthRefresh(p.Auth, logg))
			r.Post("/logout", controllers.AuthLogout(p.Auth, logg))
		})

		// Public catalog surface.
		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ProductList(p.Products, logg))
			r.Get("/{productKey}", controllers.ProductDetail(p.Products, logg))
			r.Get("/{productKey}/reviews", controllers.ProductReviews(p.Reviews, logg))
		})
		r.Get("/stores/{storeSlug}", controllers.StoreBySlug(p.Stores, logg))
		r.Get("/categories", controllers.CategoryList(p.Categories, logg))
		r.Get("/banners", controllers.BannerList(p.Banners, logg))
		r.Get("/shipping-options", controllers.ShippingOptionList(p.Shipping, logg))

		// Authenticated surface.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, p.SessionChecker, logg))
			r.Use(middleware.Idempotency(p.Redis, logg))

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", controllers.CartFetch(p.Cart, logg))
				r.Post("/items", controllers.CartAddItem(p.Cart, logg))
				r.Put("/items", controllers.CartUpdateItem(p.Cart, logg))
				r.Delete("/items", controllers.CartRemoveItem(p.Cart, logg))
				r.Delete("/", controllers.CartClear(p.Cart, logg))
			})

			r.Post("/checkout/preview", controllers.CheckoutPreview(p.Checkout, logg))
			r.Post("/checkout", controllers.CheckoutSubmit(p.Checkout, logg))

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", controllers.BuyerOrderList(p.Orders, logg))
				r.Get("/{orderID}", controllers.BuyerOrderDetail(p.Orders, logg))
				r.Post("/{orderID}/cancel", controllers.BuyerCancelOrder(p.Orders, logg))
			})

			r.Route("/addresses", func(r chi.Router) {
				r.Get("/", controllers.AddressList(p.Addresses, logg))
				r.Post("/", controllers.AddressCreate(p.Addresses, logg))
				r.Put("/{addressID}", controllers.AddressUpdate(p.Addresses, logg))
				r.Delete("/{addressID}", controllers.AddressDelete(p.Addresses, logg))
				r.Post("/{addressID}/default", controllers.AddressSetDefault(p.Addresses, logg))
			})

			r.Post("/reviews", controllers.ReviewCreate(p.Reviews, logg))

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", controllers.NotificationList(p.Notifications, logg))
				r.Post("/{notificationID}/read", controllers.NotificationMarkRead(p.Notifications, logg))
				r.Post("/read-all", controllers.NotificationMarkAllRead(p.Notifications, logg))
			})

			r.Route("/seller", func(r chi.Router) {
				r.Use(middleware.RequireRole(string(enums.UserRoleSeller), logg))
				r.Use(middleware.StoreContext(logg))

				r.Get("/store", controllers.StoreProfile(p.Stores, logg))
				r.Put("/store", controllers.StoreUpdate(p.Stores, logg))

				r.Route("/products", func(r chi.Router) {
					r.Post("/", controllers.SellerCreateProduct(p.Products, logg))
					r.Patch("/{productID}", controllers.SellerUpdateProduct(p.Products, logg))
					r.Delete("/{productID}", controllers.SellerDeactivateProduct(p.Products, logg))
				})

				r.Route("/orders", func(r chi.Router) {
					r.Get("/", controllers.SellerOrderList(p.Orders, logg))
					r.Get("/{orderID}", controllers.SellerOrderDetail(p.Orders, logg))
					r.Post("/{orderID}/status", controllers.SellerUpdateOrderStatus(p.Orders, logg))
				})
			})

			r.Route("/admin", func(r chi.Router) {
				r.Use(middleware.RequireRole(string(enums.UserRoleAdmin), logg))

				r.Route("/categories", func(r chi.Router) {
					r.Post("/", controllers.AdminCreateCategory(p.Categories, logg))
					r.Put("/{categoryID}", controllers.AdminUpdateCategory(p.Categories, logg))
					r.Delete("/{categoryID}", controllers.AdminDeleteCategory(p.Categories, logg))
				})
				r.Route("/banners", func(r chi.Router) {
					r.Get("/", controllers.AdminBannerList(p.Banners, logg))
					r.Post("/", controllers.AdminCreateBanner(p.Banners, logg))
					r.Put("/{bannerID}", controllers.AdminUpdateBanner(p.Banners, logg))
					r.Delete("/{bannerID}", controllers.AdminDeleteBanner(p.Banners, logg))
				})
			})
		})
	})

	return r
}
