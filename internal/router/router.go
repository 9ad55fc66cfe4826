package router // package router defines how HTTP routes are registered for the API

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/booklist-service/internal/config"
	"github.com/iliyamo/booklist-service/internal/handler"
	"github.com/iliyamo/booklist-service/internal/metrics"
	"github.com/iliyamo/booklist-service/internal/middleware"
)

// Deps is everything the HTTP surface needs. Redis and Metrics may be
// nil; the cache, the rate limiter and /metrics are then left out.
type Deps struct {
	Auth      *handler.AuthHandler
	Books     *handler.BookHandler
	Verifier  middleware.TokenVerifier
	Redis     *redis.Client
	Cache     config.CacheConfig
	RateLimit config.RateLimitConfig
	Metrics   *metrics.Collector
	Gatherer  http.Handler
	Log       logrus.FieldLogger
}

// New builds the Echo instance with global middleware and every route.
func New(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewRequestValidator()

	e.Use(echomw.Recover())
	e.Use(echomw.CORS())
	if d.Metrics != nil {
		e.Use(d.Metrics.Middleware())
	}
	e.Use(middleware.RequestLogger(d.Log))

	RegisterRoutes(e, d.Gatherer)
	api := e.Group("/api", middleware.NewTokenBucket(d.RateLimit, d.Redis, d.Log))
	RegisterAuth(api, d.Auth)
	RegisterBooks(api, d.Books, d.Verifier, middleware.NewRedisCache(d.Cache, d.Redis, d.Log))
	return e
}

// RegisterRoutes registers the operational endpoints.
func RegisterRoutes(e *echo.Echo, metricsHandler http.Handler) {
	e.GET("/healthz", handler.Health)
	if metricsHandler != nil {
		e.GET("/metrics", echo.WrapHandler(metricsHandler))
	}
}

// RegisterAuth registers register, login and logout. None of them
// require a session.
func RegisterAuth(g *echo.Group, a *handler.AuthHandler) {
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/logout", a.Logout)
}

// RegisterBooks registers the public reads, which go through cache, and
// the update, which requires a Bearer token.
func RegisterBooks(g *echo.Group, b *handler.BookHandler, v middleware.TokenVerifier, cache echo.MiddlewareFunc) {
	books := g.Group("/books")
	books.GET("", b.List, cache)
	books.GET("/author/:author", b.ByAuthor, cache)
	books.GET("/title/:title", b.ByTitle, cache)
	books.GET("/isbn/:isbn", b.ByISBN, cache)
	books.GET("/:isbn", b.Get, cache)

	books.PUT("/:isbn", b.Update, middleware.JWTAuth(v))
}
