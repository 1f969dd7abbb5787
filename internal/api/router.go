package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ecocollect/identity-service/internal/api/handler"
	"github.com/ecocollect/identity-service/internal/api/middleware"
	"github.com/ecocollect/identity-service/internal/core/domain"
	"github.com/ecocollect/identity-service/internal/core/service"
	"github.com/ecocollect/identity-service/internal/infrastructure/config"
	mongodb "github.com/ecocollect/identity-service/internal/infrastructure/db/mongo"
	redisdb "github.com/ecocollect/identity-service/internal/infrastructure/db/redis"
	httphandlers "github.com/ecocollect/identity-service/internal/infrastructure/http/handlers"
	"github.com/ecocollect/identity-service/internal/infrastructure/security"
)

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(db *mongo.Database, rdb *goredis.Client, cfg *config.Config, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("identity"))

	// --- Dependencies ---
	userRepo := mongodb.NewUserRepository(db)
	hasher := security.NewBcryptHasher(cfg.BcryptCost)
	revocations := redisdb.NewRevocationList(rdb)
	issuer := service.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL, revocations)
	identitySvc := service.NewIdentityService(userRepo, hasher, issuer, security.NewResetToken, log)

	cookie := handler.CookieSettings{
		Name:   cfg.CookieName,
		Secure: cfg.CookieSecure,
		TTL:    cfg.TokenTTL,
	}
	authHandler := handler.NewAuthHandler(identitySvc, cookie)
	userHandler := handler.NewUserHandler(identitySvc)
	authenticate := middleware.Authenticate(issuer, cfg.CookieName)

	// --- Auth routes ---
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/logout", authHandler.Logout)
	e.POST("/auth/forgot-password", authHandler.ForgotPassword)
	e.POST("/auth/reset-password", authHandler.ResetPassword)
	e.GET("/auth/me", authHandler.Me, authenticate)

	// --- Role-gated resources ---
	civilian := e.Group("/civilian", authenticate, middleware.RBAC(domain.RoleCivilian))
	civilian.GET("", userHandler.CivilianHome)
	civilian.POST("/points", userHandler.AwardPoints)

	corporate := e.Group("/corporate", authenticate, middleware.RBAC(domain.RoleCorporate))
	corporate.GET("", userHandler.CorporateHome)

	// --- Health probes (no auth required) ---
	healthHandler := httphandlers.NewHealthHandler()
	healthDepsHandler := httphandlers.NewHealthDependenciesHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	// --- Metrics ---
	e.GET("/metrics", echoprometheus.NewHandler())

	return e
}
