package main

import (
	"context"
	"net/http"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/talabarteria/rodriguez-backend/api/routes"
	"github.com/talabarteria/rodriguez-backend/internal/admins"
	"github.com/talabarteria/rodriguez-backend/internal/auth"
	"github.com/talabarteria/rodriguez-backend/internal/cart"
	"github.com/talabarteria/rodriguez-backend/internal/catalog"
	"github.com/talabarteria/rodriguez-backend/internal/categories"
	"github.com/talabarteria/rodriguez-backend/internal/checkout"
	"github.com/talabarteria/rodriguez-backend/internal/coupons"
	"github.com/talabarteria/rodriguez-backend/internal/products"
	"github.com/talabarteria/rodriguez-backend/internal/stats"
	"github.com/talabarteria/rodriguez-backend/internal/storeinfo"
	"github.com/talabarteria/rodriguez-backend/internal/uploads"
	"github.com/talabarteria/rodriguez-backend/internal/users"
	"github.com/talabarteria/rodriguez-backend/pkg/auth/session"
	"github.com/talabarteria/rodriguez-backend/pkg/config"
	"github.com/talabarteria/rodriguez-backend/pkg/db"
	"github.com/talabarteria/rodriguez-backend/pkg/logger"
	"github.com/talabarteria/rodriguez-backend/pkg/mailer"
	"github.com/talabarteria/rodriguez-backend/pkg/metrics"
	"github.com/talabarteria/rodriguez-backend/pkg/migrate"
	"github.com/talabarteria/rodriguez-backend/pkg/redis"
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

	mail := mailer.New(cfg.SMTP, logg)

	storage, err := uploads.NewStorage(cfg.Uploads.Dir)
	if err != nil {
		logg.Error(context.Background(), "failed to prepare uploads directory", err)
		os.Exit(1)
	}

	imageURL := func(fileName string) string {
		return strings.TrimSuffix(cfg.Uploads.PublicPath, "/") + "/" + fileName
	}

	gormDB := dbClient.DB()
	userRepo := users.NewRepository(gormDB)
	adminRepo := admins.NewRepository(gormDB)
	catalogRepo := catalog.NewRepository(gormDB)
	couponRepo := coupons.NewRepository(gormDB)
	checkoutRepo := checkout.NewRepository(gormDB)
	productRepo := products.NewRepository(gormDB)
	categoryRepo := categories.NewRepository(gormDB)

	storeInfoService, err := storeinfo.NewService(gormDB)
	if err != nil {
		logg.Error(context.Background(), "failed to create store info service", err)
		os.Exit(1)
	}

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       userRepo,
		AdminRepo:      adminRepo,
		TempUserRepo:   auth.NewTempUserRepository(gormDB),
		ResetTokenRepo: auth.NewResetTokenRepository(gormDB),
		SessionManager: sessionManager,
		Mailer:         mail,
		JWTConfig:      cfg.JWT,
		PublicBaseURL:  cfg.Shop.PublicBaseURL,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	catalogService, err := catalog.NewService(catalog.ServiceParams{
		Repo:            catalogRepo,
		StoreInfo:       storeInfoService,
		Logger:          logg,
		ImagePublicPath: cfg.Uploads.PublicPath,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}

	cartStore, err := cart.NewStore(redisClient, cfg.Shop.CartTTL())
	if err != nil {
		logg.Error(context.Background(), "failed to create cart store", err)
		os.Exit(1)
	}
	cartService, err := cart.NewService(cart.ServiceParams{
		Store:    cartStore,
		Products: catalogRepo,
		Coupons:  couponRepo,
		Logger:   logg,
		ImageURL: imageURL,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}

	checkoutService, err := checkout.NewService(checkout.ServiceParams{
		Client:    dbClient,
		Repo:      checkoutRepo,
		CartStore: cartStore,
		Coupons:   couponRepo,
		Users:     userRepo,
		Mailer:    mail,
		Logger:    logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}

	productsService, err := products.NewService(products.ServiceParams{
		Repo:     productRepo,
		Storage:  storage,
		Logger:   logg,
		ImageURL: imageURL,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create products service", err)
		os.Exit(1)
	}

	categoriesService, err := categories.NewService(categories.ServiceParams{
		Repo: categoryRepo,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create categories service", err)
		os.Exit(1)
	}

	adminsService, err := admins.NewService(admins.ServiceParams{
		Repo: adminRepo,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create admins service", err)
		os.Exit(1)
	}

	statsService, err := stats.NewService(stats.ServiceParams{
		Products:   productRepo,
		Orders:     checkoutRepo,
		Users:      userRepo,
		Categories: categoryRepo,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create stats service", err)
		os.Exit(1)
	}

	httpMetrics := metrics.NewHTTPMetrics(prometheus.DefaultRegisterer)

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
		Handler: routes.NewRouter(routes.RouterParams{
			Config:            cfg,
			Logger:            logg,
			DB:                dbClient,
			Redis:             redisClient,
			SessionChecker:    sessionManager,
			HTTPMetrics:       httpMetrics,
			AuthService:       authService,
			CatalogService:    catalogService,
			CartService:       cartService,
			CheckoutService:   checkoutService,
			ProductsService:   productsService,
			CategoriesService: categoriesService,
			AdminsService:     adminsService,
			StoreInfoService:  storeInfoService,
			StatsService:      statsService,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
