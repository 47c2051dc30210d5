package di

import (
	"context"
	"errors"
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"shop_backend/internal/app/config"
	"shop_backend/internal/app/router"
	authhandler "shop_backend/internal/feature/auth/transport/handler"
	authusecase "shop_backend/internal/feature/auth/usecase"
	producthandler "shop_backend/internal/feature/product/transport/handler"
	productusecase "shop_backend/internal/feature/product/usecase"
	"shop_backend/internal/platform/hasher"
	platformhandler "shop_backend/internal/platform/http/handler"
	jwtmw "shop_backend/internal/platform/jwt"
	"shop_backend/internal/platform/metrics"
	"shop_backend/internal/platform/ratelimit"
	platformredis "shop_backend/internal/platform/redis"
)

// App is the fully wired HTTP application.
type App struct {
	Engine *gin.Engine

	stores *Stores
	rdb    *redis.Client
}

// NewApp connects to the configured stores and wires every handler.
// Redis is optional: when it is unreachable the server runs without cache
// and with an in-process rate limiter.
func NewApp(ctx context.Context, cfg config.Config) (*App, error) {
	stores, err := OpenStores(ctx, cfg)
	if err != nil {
		return nil, err
	}

	rdb, err := platformredis.NewRedisClient(ctx, platformredis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		slog.Warn("Redis unavailable. Running without cache.", "error", err)
		rdb = nil
	}

	return &App{
		Engine: NewEngine(cfg, stores, rdb),
		stores: stores,
		rdb:    rdb,
	}, nil
}

// NewEngine builds the router from already opened stores.
func NewEngine(cfg config.Config, stores *Stores, rdb *redis.Client) *gin.Engine {
	// Auth
	tokens := jwtmw.NewService(cfg.JWTSecret)
	pwHasher := hasher.NewBcryptHasher(cfg.BcryptCost)
	dir := authusecase.NewDirectory(stores.Users, pwHasher)
	authUC := authusecase.NewAuthUsecase(dir, stores.Users, pwHasher, tokens)
	resolver := authusecase.NewIdentityResolver(cfg.IdentityMode, dir)

	// Product（Redisキャッシュでラップ）
	productUC := productusecase.NewProductUsecase(NewProductRepository(rdb, cfg, stores.Products))

	checks := map[string]platformhandler.Pinger{"database": stores.Ping}
	var counter ratelimit.Counter = ratelimit.NewMemoryCounter()
	if rdb != nil {
		checks["redis"] = platformhandler.PingFunc(func(ctx context.Context) error { return rdb.Ping(ctx).Err() })
		counter = ratelimit.NewRedisCounter(rdb)
	}

	var m *metrics.Metrics
	if cfg.MetricsEnabled {
		m = metrics.New()
	}

	slog.Info("auth configured", "identity_mode", resolver.Mode())

	return router.NewRouter(router.Deps{
		Auth:            authhandler.NewAuthHandler(authUC),
		Users:           authhandler.NewUserHandler(dir),
		Products:        producthandler.NewProductHandler(productUC),
		Health:          platformhandler.NewHealthHandler(checks, 0),
		Verifier:        tokens,
		Resolver:        resolver,
		ProductFinder:   productUC,
		RateLimiter:     counter,
		RateLimitMax:    cfg.RateLimitAuthMax,
		RateLimitWindow: cfg.RateLimitWindow,
		Metrics:         m,
		CORSOrigins:     cfg.CORSAllowedOrigins,
	})
}

// Close releases Redis and the store connections.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if a.rdb != nil {
		errs = append(errs, a.rdb.Close())
	}
	if a.stores != nil && a.stores.Close != nil {
		errs = append(errs, a.stores.Close(ctx))
	}
	return errors.Join(errs...)
}
