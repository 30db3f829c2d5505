package routes

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/talabarteria/rodriguez-backend/api/controllers"
	"github.com/talabarteria/rodriguez-backend/api/middleware"
	"github.com/talabarteria/rodriguez-backend/internal/admins"
	authsvc "github.com/talabarteria/rodriguez-backend/internal/auth"
	cartsvc "github.com/talabarteria/rodriguez-backend/internal/cart"
	"github.com/talabarteria/rodriguez-backend/internal/catalog"
	"github.com/talabarteria/rodriguez-backend/internal/categories"
	"github.com/talabarteria/rodriguez-backend/internal/checkout"
	"github.com/talabarteria/rodriguez-backend/internal/products"
	"github.com/talabarteria/rodriguez-backend/internal/stats"
	"github.com/talabarteria/rodriguez-backend/internal/storeinfo"
	"github.com/talabarteria/rodriguez-backend/pkg/auth/session"
	"github.com/talabarteria/rodriguez-backend/pkg/config"
	"github.com/talabarteria/rodriguez-backend/pkg/db"
	"github.com/talabarteria/rodriguez-backend/pkg/logger"
	"github.com/talabarteria/rodriguez-backend/pkg/metrics"
	"github.com/talabarteria/rodriguez-backend/pkg/redis"
)

// RouterParams bundles everything the HTTP surface needs.
type RouterParams struct {
	Config         *config.Config
	Logger         *logger.Logger
	DB             db.Pinger
	Redis          *redis.Client
	SessionChecker session.AccessSessionChecker
	HTTPMetrics    *metrics.HTTPMetrics

	AuthService       authsvc.Service
	CatalogService    catalog.Service
	CartService       cartsvc.Service
	CheckoutService   checkout.Service
	ProductsService   products.Service
	CategoriesService categories.Service
	AdminsService     admins.Service
	StoreInfoService  storeinfo.Service
	StatsService      stats.Service
}

func NewRouter(p RouterParams) http.Handler {
	cfg := p.Config
	logg := p.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)
	if p.HTTPMetrics != nil {
		r.Use(p.HTTPMetrics.Middleware)
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

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, p.DB, p.Redis))
	})
	r.Handle("/metrics", promhttp.Handler())

	// Uploaded product images are served straight off disk.
	publicPath := strings.TrimSuffix(cfg.Uploads.PublicPath, "/")
	if publicPath != "" {
		fileServer := http.StripPrefix(publicPath, http.FileServer(http.Dir(cfg.Uploads.Dir)))
		r.Get(publicPath+"/*", fileServer.ServeHTTP)
	}

	r.Route("/api", func(r chi.Router) {
		// Storefront catalog, open to everyone.
		r.Get("/inicio", controllers.CatalogHome(p.CatalogService, logg))
		r.Get("/categorias", controllers.CatalogCategories(p.CatalogService, logg))
		r.Route("/servicios", func(r chi.Router) {
			r.Get("/", controllers.CatalogList(p.CatalogService, logg))
			r.Post("/buscar", controllers.CatalogSearch(p.CatalogService, logg))
			r.Get("/{id}", controllers.CatalogDetail(p.CatalogService, logg))
		})

		// Cart endpoints work for guests and logged-in customers alike.
		r.Group(func(r chi.Router) {
			r.Use(middleware.OptionalAuth(cfg.JWT, p.SessionChecker, logg))
			r.Use(middleware.CartToken())

			r.Route("/carrito", func(r chi.Router) {
				r.Get("/", controllers.CartGet(p.CartService, logg))
				r.Post("/agregar", controllers.CartAdd(p.CartService, logg))
				r.Post("/actualizar", controllers.CartUpdate(p.CartService, logg))
				r.Post("/eliminar", controllers.CartRemove(p.CartService, logg))
				r.Post("/vaciar", controllers.CartClear(p.CartService, logg))
				r.Post("/sincronizar", controllers.CartSync(p.CartService, logg))
			})
			r.Post("/cupon/verificar", controllers.CouponVerify(p.CartService, logg))

			// Guests place orders too; a missing session leaves the
			// pedido without a user.
			r.Post("/pedido/crear", controllers.OrderCreate(p.CheckoutService, logg))
		})

		// Accounts.
		r.Route("/registro", func(r chi.Router) {
			r.Use(middleware.AuthRateLimit(registerPolicy, p.Redis, logg))
			r.Post("/iniciar", controllers.RegisterStart(p.AuthService, logg))
			r.Post("/verificar", controllers.RegisterVerify(p.AuthService, logg))
			r.Post("/reenviar", controllers.RegisterResend(p.AuthService, logg))
		})
		r.With(middleware.AuthRateLimit(loginPolicy, p.Redis, logg)).Post("/login", controllers.Login(p.AuthService, logg))
		r.Post("/logout", controllers.Logout(p.AuthService, cfg.JWT, logg))
		r.Post("/sesion/renovar", controllers.Refresh(p.AuthService, logg))
		r.Route("/password", func(r chi.Router) {
			r.Use(middleware.AuthRateLimit(loginPolicy, p.Redis, logg))
			r.Post("/olvide", controllers.PasswordForgot(p.AuthService, logg))
			r.Post("/restablecer", controllers.PasswordReset(p.AuthService, logg))
		})

		// Stored addresses and order history belong to a customer
		// session.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, p.SessionChecker, logg))

			r.Post("/direccion/guardar", controllers.AddressSave(p.CheckoutService, logg))
			r.Get("/pedidos", controllers.MyOrders(p.CheckoutService, logg))
		})
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, p.Redis, logg)).Post("/login", controllers.AdminLogin(p.AuthService, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, p.SessionChecker, logg))
			r.Use(middleware.RequireAdmin(logg))

			r.Route("/productos", func(r chi.Router) {
				r.Get("/", controllers.AdminProductList(p.ProductsService, logg))
				r.Post("/", controllers.AdminProductCreate(p.ProductsService, logg))
				r.Get("/{id}", controllers.AdminProductGet(p.ProductsService, logg))
				r.Put("/{id}", controllers.AdminProductUpdate(p.ProductsService, logg))
				r.Patch("/{id}/estado", controllers.AdminProductToggle(p.ProductsService, logg))
				r.Delete("/{id}", controllers.AdminProductDelete(p.ProductsService, logg))
				r.Post("/{id}/imagenes", controllers.AdminProductImageUpload(p.ProductsService, cfg.Uploads.MaxUploadMB, logg))
				r.Delete("/{id}/imagenes/{imagenID}", controllers.AdminProductImageDelete(p.ProductsService, logg))
				r.Patch("/{id}/imagenes/{imagenID}/principal", controllers.AdminProductImagePrimary(p.ProductsService, logg))
			})

			r.Route("/categorias", func(r chi.Router) {
				r.Get("/", controllers.AdminCategoryList(p.CategoriesService, logg))
				r.Post("/", controllers.AdminCategoryCreate(p.CategoriesService, logg))
				r.Put("/{id}", controllers.AdminCategoryUpdate(p.CategoriesService, logg))
				r.Patch("/{id}/estado", controllers.AdminCategoryToggle(p.CategoriesService, logg))
				r.Delete("/{id}", controllers.AdminCategoryDelete(p.CategoriesService, logg))
			})

			r.Route("/pedidos", func(r chi.Router) {
				r.Get("/", controllers.AdminOrderList(p.CheckoutService, logg))
				r.Patch("/{id}/estado", controllers.AdminOrderStatus(p.CheckoutService, logg))
			})

			r.Get("/configuracion", controllers.AdminConfigGet(p.StoreInfoService, logg))
			r.Put("/configuracion", controllers.AdminConfigUpdate(p.StoreInfoService, logg))
			r.Get("/estadisticas", controllers.AdminStats(p.StatsService, logg))

			r.Route("/administradores", func(r chi.Router) {
				r.Use(middleware.RequireSuperAdmin(logg))
				r.Get("/", controllers.AdminAccountList(p.AdminsService, logg))
				r.Post("/", controllers.AdminAccountCreate(p.AdminsService, logg))
				r.Put("/{id}", controllers.AdminAccountUpdate(p.AdminsService, logg))
				r.Delete("/{id}", controllers.AdminAccountDelete(p.AdminsService, logg))
			})
		})
	})

	return r
}
