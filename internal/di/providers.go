package di

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/wire"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/CobrasOrg/auth-service/internal/app"
	"github.com/CobrasOrg/auth-service/internal/config"
	"github.com/CobrasOrg/auth-service/internal/database"
	"github.com/CobrasOrg/auth-service/internal/health"
	"github.com/CobrasOrg/auth-service/internal/http/handler"
	"github.com/CobrasOrg/auth-service/internal/http/router"
	"github.com/CobrasOrg/auth-service/internal/observability"
	"github.com/CobrasOrg/auth-service/internal/repository"
	"github.com/CobrasOrg/auth-service/internal/security"
	"github.com/CobrasOrg/auth-service/internal/service"
)

// ProviderSet is the whole object graph. The service is small enough
// that one flat set reads better than per-layer groupings.
var ProviderSet = wire.NewSet(
	config.Load,
	provideObservability,
	provideLogger,
	provideDatabase,
	provideRedisClient,
	repository.NewUserRepository,
	provideTokenCodec,
	provideRevocationStore,
	service.NewTokenService,
	service.NewDevPasswordResetNotifier,
	wire.Bind(new(service.PasswordResetNotifier), new(*service.DevPasswordResetNotifier)),
	service.NewAuthService,
	wire.Bind(new(service.AuthServiceInterface), new(*service.AuthService)),
	handler.NewAuthHandler,
	handler.NewUserHandler,
	provideReadiness,
	provideRouterDependencies,
	router.NewRouter,
	provideHTTPServer,
	app.New,
)

func provideObservability(cfg *config.Config) (*observability.Runtime, error) {
	// The real logger needs the OTel pipeline, which needs a logger to
	// report its own startup. The bootstrap logger breaks the cycle.
	return observability.InitRuntime(context.Background(), cfg, observability.NewBootstrapLogger(cfg))
}

func provideLogger(cfg *config.Config, runtime *observability.Runtime) *slog.Logger {
	return observability.InitLogger(cfg, runtime.LoggerProvider)
}

func provideDatabase(cfg *config.Config) (*gorm.DB, error) {
	db, err := database.Open(cfg)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func provideRedisClient(cfg *config.Config) redis.UniversalClient {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
}

func provideTokenCodec(cfg *config.Config) *security.TokenCodec {
	return security.NewTokenCodec(cfg.JWTSecret, cfg.JWTAccessTTL, cfg.ResetTTL)
}

func provideRevocationStore(cfg *config.Config, redisClient redis.UniversalClient) service.TokenRevocationStore {
	return service.NewRedisTokenRevocationStore(redisClient, cfg.RedisPrefix)
}

func provideReadiness(cfg *config.Config, db *gorm.DB, redisClient redis.UniversalClient) *health.ProbeRunner {
	checkers := make([]health.Checker, 0, 2)
	if c := health.NewDBChecker(db); c != nil {
		checkers = append(checkers, c)
	}
	if c := health.NewRedisChecker(redisClient); c != nil {
		checkers = append(checkers, c)
	}
	return health.NewProbeRunner(cfg.ReadinessProbeTimeout, cfg.ServerStartGracePeriod, checkers...)
}

func provideRouterDependencies(
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	tokenSvc *service.TokenService,
	readiness *health.ProbeRunner,
	cfg *config.Config,
) router.Dependencies {
	return router.Dependencies{
		AuthHandler:    authHandler,
		UserHandler:    userHandler,
		TokenService:   tokenSvc,
		CORSOrigins:    cfg.CORSAllowedOrigins,
		BodyLimitBytes: cfg.BodyLimitBytes,
		Readiness:      readiness,
		EnableOTelHTTP: cfg.OTELMetricsEnabled || cfg.OTELTracingEnabled,
	}
}

func provideHTTPServer(cfg *config.Config, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           h,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
