package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/electrosoundpack/storefront-backend/api/controllers"
	"github.com/electrosoundpack/storefront-backend/api/middleware"
	"github.com/electrosoundpack/storefront-backend/internal/auth"
	"github.com/electrosoundpack/storefront-backend/internal/cart"
	"github.com/electrosoundpack/storefront-backend/internal/catalog"
	"github.com/electrosoundpack/storefront-backend/internal/users"
	"github.com/electrosoundpack/storefront-backend/pkg/auth/session"
	"github.com/electrosoundpack/storefront-backend/pkg/config"
	"github.com/electrosoundpack/storefront-backend/pkg/logger"
	"github.com/electrosoundpack/storefront-backend/pkg/metrics"
)

// Services bundles the domain services mounted by the router.
type Services struct {
	Catalog   catalog.Service
	Cart      cart.Service
	Users     users.Service
	Auth      auth.Service
	Freshness controllers.FreshnessReader
	Media     controllers.MediaService
	Importer  controllers.CSVImporter
	Exporter  controllers.CSVExporter
}

// Infra carries the cross-cutting collaborators. Any field may be nil in tests.
type Infra struct {
	Pingers     map[string]controllers.Pinger
	Sessions    session.AccessSessionChecker
	RateLimits  middleware.RateLimitStore
	Gatherer    prometheus.Gatherer
	HTTPMetrics *metrics.HTTPMetrics
}

func NewRouter(cfg *config.Config, logg *logger.Logger, infra Infra, svc Services) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.CORS(cfg.CORS.AllowedOrigins),
		middleware.Logging(logg, infra.HTTPMetrics),
	)

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
	requireUser := middleware.Auth(cfg.JWT, infra.Sessions, logg)
	maxUpload := cfg.Media.MaxUploadBytes()

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, infra.Pingers))
	})

	if infra.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(infra.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Get("/media/{id}/{file}", controllers.MediaServe(svc.Media, logg))

	r.Route("/api", func(r chi.Router) {
		r.Get("/catalog", controllers.CatalogList(svc.Catalog, cfg.Catalog, logg))
		r.Get("/catalog/{id}", controllers.CatalogGet(svc.Catalog, logg))
		r.Get("/catalog/{id}/files", controllers.MediaList(svc.Media, logg))
		r.Get("/freshness", controllers.Freshness(svc.Freshness, logg))

		r.Route("/auth", func(r chi.Router) {
			r.With(middleware.AuthRateLimit(registerPolicy, infra.RateLimits, logg)).Post("/register", controllers.AuthRegister(svc.Auth, logg))
			r.With(middleware.AuthRateLimit(loginPolicy, infra.RateLimits, logg)).Post("/login", controllers.AuthLogin(svc.Auth, logg))

			r.Group(func(r chi.Router) {
				r.Use(requireUser)
				r.Post("/logout", controllers.AuthLogout(svc.Auth, logg))
				r.Get("/profile", controllers.AuthProfile(svc.Auth, logg))
				r.Put("/profile", controllers.AuthProfileUpdate(svc.Auth, logg))
			})
		})

		r.Route("/cart", func(r chi.Router) {
			r.Use(requireUser)
			r.Get("/", controllers.CartLoad(svc.Cart, logg))
			r.Post("/save", controllers.CartSave(svc.Cart, logg))
			r.Get("/summary", controllers.CartSummary(svc.Cart, logg))
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(requireUser)
			r.Use(middleware.RequireAdmin(logg))

			r.Get("/catalog", controllers.AdminCatalogList(svc.Catalog, cfg.Catalog, logg))

			r.Route("/products", func(r chi.Router) {
				r.Post("/", controllers.AdminProductCreate(svc.Catalog, logg))
				r.Put("/{id}", controllers.AdminProductUpdate(svc.Catalog, logg))
				r.Delete("/{id}", controllers.AdminProductDelete(svc.Catalog, logg))
				r.Get("/{id}/files", controllers.MediaList(svc.Media, logg))
				r.Post("/{id}/files", controllers.MediaUpload(svc.Media, maxUpload, logg))
				r.Delete("/{id}/files/{file}", controllers.MediaDelete(svc.Media, logg))
			})

			r.Route("/users", func(r chi.Router) {
				r.Get("/", controllers.AdminUsersList(svc.Users, cfg.Catalog, logg))
				r.Get("/{email}", controllers.AdminUserGet(svc.Users, logg))
				r.Put("/{email}", controllers.AdminUserUpdate(svc.Users, logg))
				r.Delete("/{email}", controllers.AdminUserDelete(svc.Users, logg))
			})

			r.Post("/import/csv", controllers.ImportCSV(svc.Importer, maxUpload, logg))
			r.Get("/export/{table}", controllers.ExportCSV(svc.Exporter, logg))
		})
	})

	return r
}
