package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/senjaya/lokapasar-backend/api/routes"
	"github.com/senjaya/lokapasar-backend/internal/addresses"
	"github.com/senjaya/lokapasar-backend/internal/auth"
	"github.com/senjaya/lokapasar-backend/internal/banners"
	"github.com/senjaya/lokapasar-backend/internal/cart"
	"github.com/senjaya/lokapasar-backend/internal/categories"
	"github.com/senjaya/lokapasar-backend/internal/checkout"
	"github.com/senjaya/lokapasar-backend/internal/notifications"
	"github.com/senjaya/lokapasar-backend/internal/orders"
	"github.com/senjaya/lokapasar-backend/internal/products"
	"github.com/senjaya/lokapasar-backend/internal/reviews"
	"github.com/senjaya/lokapasar-backend/internal/shipping"
	"github.com/senjaya/lokapasar-backend/internal/stores"
	"github.com/senjaya/lokapasar-backend/internal/users"
	"github.com/senjaya/lokapasar-backend/pkg/auth/session"
	"github.com/senjaya/lokapasar-backend/pkg/config"
	"github.com/senjaya/lokapasar-backend/pkg/db"
	"github.com/senjaya/lokapasar-backend/pkg/logger"
	"github.com/senjaya/lokapasar-backend/pkg/metrics"
	"github.com/senjaya/lokapasar-backend/pkg/migrate"
	"github.com/senjaya/lokapasar-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	gormDB := dbClient.DB()
	userRepo := users.NewRepository(gormDB)
	storeRepo := stores.NewRepository(gormDB)
	productRepo := products.NewRepository(gormDB)
	cartRepo := cart.NewRepository(gormDB)
	orderRepo := orders.NewRepository(gormDB)
	addressRepo := addresses.NewRepository(gormDB)
	categoryRepo := categories.NewRepository(gormDB)
	bannerRepo := banners.NewRepository(gormDB)
	reviewRepo := reviews.NewRepository(gormDB)
	notificationRepo := notifications.NewRepository(gormDB)

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       userRepo,
		StoreRepo:      storeRepo,
		SessionManager: sessionManager,
		Tx:             dbClient,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	productService, err := products.NewService(productRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create product service", err)
		os.Exit(1)
	}

	storeService, err := stores.NewService(storeRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create store service", err)
		os.Exit(1)
	}

	cartService, err := cart.NewService(cartRepo, dbClient, productService)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}

	notificationService, err := notifications.NewService(notificationRepo, storeRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create notification service", err)
		os.Exit(1)
	}

	shippingOptions, err := shipping.NewCatalog(gormDB).Load(context.Background())
	if err != nil {
		logg.Error(context.Background(), "failed to load shipping options", err)
		os.Exit(1)
	}
	shippingCalc, err := shipping.NewCalculator(shippingOptions)
	if err != nil {
		logg.Error(context.Background(), "failed to create shipping calculator", err)
		os.Exit(1)
	}

	checkoutService, err := checkout.NewService(
		dbClient,
		cartService,
		cartRepo,
		orderRepo,
		shippingCalc,
		addressRepo,
		productRepo,
		notificationService,
		logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}

	orderService, err := orders.NewService(orderRepo, dbClient, productRepo, notificationService, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create order service", err)
		os.Exit(1)
	}

	addressService, err := addresses.NewService(addressRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create address service", err)
		os.Exit(1)
	}

	categoryService, err := categories.NewService(categoryRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create category service", err)
		os.Exit(1)
	}

	bannerService, err := banners.NewService(bannerRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create banner service", err)
		os.Exit(1)
	}

	reviewService, err := reviews.NewService(reviewRepo, orderRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create review service", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	httpMetrics := metrics.NewHTTPMetrics(registry)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Params{
			Config:         cfg,
			Logger:         logg,
			DB:             dbClient,
			Redis:          redisClient,
			SessionChecker: sessionManager,
			Registry:       registry,
			HTTPMetrics:    httpMetrics,
			Auth:           authService,
			Products:       productService,
			Stores:         storeService,
			Cart:           cartService,
			Checkout:       checkoutService,
			Orders:         orderService,
			Addresses:      addressService,
			Categories:     categoryService,
			Banners:        bannerService,
			Reviews:        reviewService,
			Notifications:  notificationService,
			Shipping:       shippingCalc,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
