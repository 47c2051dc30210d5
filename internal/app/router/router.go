// Package router wires HTTP routes to handlers and middleware.
package router

import (
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	authhandler "shop_backend/internal/feature/auth/transport/handler"
	authmw "shop_backend/internal/feature/auth/transport/middleware"
	producthandler "shop_backend/internal/feature/product/transport/handler"
	productmw "shop_backend/internal/feature/product/transport/middleware"
	platformhandler "shop_backend/internal/platform/http/handler"
	platformmw "shop_backend/internal/platform/http/middleware"
	jwtmw "shop_backend/internal/platform/jwt"
	"shop_backend/internal/platform/metrics"
	"shop_backend/internal/platform/ratelimit"
)

// Deps are the handlers and collaborators the routes are built from.
type Deps struct {
	Auth     *authhandler.AuthHandler
	Users    *authhandler.UserHandler
	Products *producthandler.ProductHandler
	Health   *platformhandler.HealthHandler

	Verifier      jwtmw.TokenVerifier
	Resolver      jwtmw.IdentityResolver
	ProductFinder productmw.ProductFinder

	// RateLimiter guards /login and /register. A nil limiter or a
	// non-positive RateLimitMax disables limiting.
	RateLimiter     ratelimit.Counter
	RateLimitMax    int
	RateLimitWindow time.Duration

	// Metrics is optional; nil disables /metrics.
	Metrics *metrics.Metrics
	// CORSOrigins lists allowed origins; "*" allows every origin and an empty list disables CORS.
	CORSOrigins []string
}

func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), platformmw.RequestID(), platformmw.AccessLog())
	if d.Metrics != nil {
		r.Use(d.Metrics.Middleware())
	}
	if len(d.CORSOrigins) > 0 {
		r.Use(cors.New(corsConfig(d.CORSOrigins)))
	}

	// 認証不要
	// 導通確認用
	r.GET("/healthz", d.Health.Health)
	r.HEAD("/healthz", d.Health.Health)
	r.GET("/readyz", d.Health.Ready)
	if d.Metrics != nil {
		r.GET("/metrics", d.Metrics.Handler())
	}

	limit := ratelimit.Middleware(d.RateLimiter, d.RateLimitMax, d.RateLimitWindow, ratelimit.KeyByIPAndPath())
	// 新規ユーザー登録
	r.POST("/register", limit, d.Auth.Register)
	// ログイン（JWT 発行）
	r.POST("/login", limit, d.Auth.Login)

	// 認証必須のルート
	// → リクエストヘッダーに Bearer トークンが必要になる
	auth := r.Group("/")
	auth.Use(jwtmw.AuthRequired(d.Verifier, d.Resolver))
	{
		auth.GET("/users", d.Users.List)
		// 本人のみ
		self := authmw.RequireSelf("id")
		auth.PATCH("/users/:id", self, d.Users.Update)
		auth.DELETE("/users/:id", self, d.Users.Delete)

		auth.GET("/products", d.Products.List)
		auth.GET("/products/:id", d.Products.Get)
		auth.POST("/products", d.Products.Create)
		// 所有者のみ
		owner := productmw.RequireOwner(d.ProductFinder)
		auth.PATCH("/products/:id", owner, d.Products.Update)
		auth.DELETE("/products/:id", owner, d.Products.Delete)
	}

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", platformmw.HeaderRequestID},
		ExposeHeaders: []string{"Content-Length", platformmw.HeaderRequestID, "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		MaxAge:        12 * time.Hour,
	}
	if slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}
