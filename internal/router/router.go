package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/iliyamo/event-enrollment-api/internal/config"
	"github.com/iliyamo/event-enrollment-api/internal/handler"
	"github.com/iliyamo/event-enrollment-api/internal/metrics"
	"github.com/iliyamo/event-enrollment-api/internal/middleware"
)

// cacheGroup namespaces the cached event reads in Redis.
const cacheGroup = "events"

// Deps carries everything the routes need. Redis may be nil, in which case
// caching and rate limiting are skipped.
type Deps struct {
	Auth        *handler.AuthHandler
	Venues      *handler.VenueHandler
	Events      *handler.EventHandler
	Enrollments *handler.EnrollmentHandler
	Health      *handler.HealthHandler

	JWTSecret string
	Redis     *redis.Client
	Cache     config.CacheConfig
	RateLimit config.RateLimitConfig
	Log       zerolog.Logger
}

// New builds the Echo instance with the global middleware chain and every
// route registered.
func New(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()

	e.Use(echomw.Recover())
	e.Use(middleware.RequestLogging(d.Log))
	e.Use(metrics.Middleware())

	Register(e, d)
	return e
}

// Register maps all routes onto e.
func Register(e *echo.Echo, d Deps) {
	e.GET("/healthz", d.Health.Health)
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))

	limit := middleware.NewTokenBucket(d.RateLimit, d.Redis, d.Log)
	auth := middleware.JWTAuth(d.JWTSecret)

	api := e.Group("/api")
	RegisterAuth(api, d.Auth, limit)
	RegisterEvents(api, d, auth, limit)
	RegisterVenues(api, d, auth, limit)
}

// RegisterAuth registers the /api/user endpoints. None of them need an
// access token; logout reads one itself when no refresh token is given.
func RegisterAuth(api *echo.Group, a *handler.AuthHandler, limit echo.MiddlewareFunc) {
	g := api.Group("/user", limit)
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/logout", a.Logout)
}

// RegisterEvents registers the public, cached event reads and the
// authenticated event writes and enrollment toggles. Event writes drop the
// cached reads.
func RegisterEvents(api *echo.Group, d Deps, auth, limit echo.MiddlewareFunc) {
	cache := middleware.NewRedisCache(d.Cache, d.Redis, cacheGroup)
	invalidate := middleware.InvalidateOnWrite(d.Cache, d.Redis, cacheGroup, d.Log)

	public := api.Group("/event", limit)
	public.GET("", d.Events.List, cache)
	public.GET("/:id", d.Events.Detail, cache)

	// JWTAuth runs before the limiter so the bucket key carries the user.
	g := api.Group("/event", auth, limit)
	g.POST("", d.Events.Create, invalidate)
	g.PUT("/:id", d.Events.Update, invalidate)
	g.DELETE("/:id", d.Events.Delete, invalidate)
	g.POST("/:id/enrollment", d.Enrollments.Enroll)
	g.DELETE("/:id/enrollment", d.Enrollments.Unenroll)
}

// RegisterVenues registers /api/event-location. Venue changes show up in
// event projections, so writes drop the cached event reads too.
func RegisterVenues(api *echo.Group, d Deps, auth, limit echo.MiddlewareFunc) {
	invalidate := middleware.InvalidateOnWrite(d.Cache, d.Redis, cacheGroup, d.Log)

	g := api.Group("/event-location", auth, limit)
	g.GET("", d.Venues.List)
	g.GET("/:id", d.Venues.Get)
	g.POST("", d.Venues.Create, invalidate)
	g.PUT("/:id", d.Venues.Update, invalidate)
	g.DELETE("/:id", d.Venues.Delete, invalidate)
}
