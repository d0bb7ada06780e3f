package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-booking-wizard/internal/handler"
)

// Handlers bundles everything the routes dispatch to.
type Handlers struct {
	Health  *handler.HealthHandler
	Catalog *handler.CatalogHandler
	Movies  *handler.MovieHandler
	Wizard  *handler.WizardHandler
	Ops     *handler.OpsHandler
}

// Middlewares are the per-group middlewares built from configuration.
type Middlewares struct {
	Identity     echo.MiddlewareFunc
	CatalogCache echo.MiddlewareFunc
	MovieCache   echo.MiddlewareFunc
	RateLimit    echo.MiddlewareFunc
}

// RegisterRoutes registers the health check, which load balancers call
// without authentication.
func RegisterRoutes(e *echo.Echo, h Handlers) {
	e.GET("/healthz", h.Health.Health)
}

// RegisterCatalog registers the static catalog and the movie lists.  They
// are public and served through the response cache.
func RegisterCatalog(e *echo.Echo, h Handlers, mw Middlewares) {
	g := e.Group("/v1/catalog", mw.CatalogCache)
	g.GET("/theaters", h.Catalog.Theaters)
	g.GET("/showtimes", h.Catalog.Showtimes)
	g.GET("/dates", h.Catalog.Dates)
	g.GET("/concessions", h.Catalog.Concessions)
	g.GET("/payment-methods", h.Catalog.PaymentMethods)

	e.GET("/v1/movies", h.Movies.NowPlaying, mw.MovieCache)
	e.GET("/v1/movies/:id", h.Movies.Get, mw.MovieCache)
}

// RegisterWizard registers the wizard routes.  The identity middleware is
// optional: browsing works anonymously and Confirm demands a signed-in
// customer.  The rate limiter runs after it so limits are per customer, and
// gives confirm a tighter bucket than the selection routes.
func RegisterWizard(e *echo.Echo, h Handlers, mw Middlewares) {
	g := e.Group("/v1/wizards", mw.Identity, mw.RateLimit)
	g.POST("", h.Wizard.Create)
	g.GET("/:id", h.Wizard.Get)
	g.DELETE("/:id", h.Wizard.Delete)

	g.PUT("/:id/theater", h.Wizard.SelectTheater)
	g.PUT("/:id/date", h.Wizard.SelectDate)
	g.PUT("/:id/movie", h.Wizard.SelectMovie)
	g.PUT("/:id/time", h.Wizard.SelectTime)
	g.PUT("/:id/payment", h.Wizard.SelectPayment)
	g.POST("/:id/seats/:seat", h.Wizard.ToggleSeat)
	g.PUT("/:id/concessions/:key", h.Wizard.SetConcession)

	g.POST("/:id/advance", h.Wizard.Advance)
	g.POST("/:id/retreat", h.Wizard.Retreat)
	g.POST("/:id/confirm", h.Wizard.Confirm)
}

// RegisterOps registers operator endpoints.  They are meant to sit behind
// the internal network edge, not the public gateway.
func RegisterOps(e *echo.Echo, h Handlers) {
	e.GET("/v1/ops/submissions", h.Ops.Submissions)
}

// Register wires every route group.
func Register(e *echo.Echo, h Handlers, mw Middlewares) {
	if mw.Identity == nil {
		mw.Identity = passThrough
	}
	if mw.CatalogCache == nil {
		mw.CatalogCache = passThrough
	}
	if mw.MovieCache == nil {
		mw.MovieCache = passThrough
	}
	if mw.RateLimit == nil {
		mw.RateLimit = passThrough
	}
	RegisterRoutes(e, h)
	RegisterCatalog(e, h, mw)
	RegisterWizard(e, h, mw)
	RegisterOps(e, h)
}

func passThrough(next echo.HandlerFunc) echo.HandlerFunc { return next }
