package server

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/zapimob/zapimob/internal/api/handler"
	"github.com/zapimob/zapimob/internal/api/middleware"
)

type Options struct {
	Env            string
	AuthSecret     string
	WebhookHandler *handler.WebhookHandler
	HealthHandler  *handler.HealthHandler
	AuthHandler    *handler.AuthHandler
	RuleHandler    *handler.RuleHandler
	InboxHandler   *handler.InboxHandler
	AccountHandler *handler.AccountHandler
	RateLimit      middleware.RateLimitOption
	LoginRateLimit middleware.IPRateLimitOption
}

func NewRouter(opts Options) *gin.Engine {
	if opts.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Authorization", middleware.HeaderRequestID},
		MaxAge:       12 * time.Hour,
	}))

	// Webhook da Meta fica fora do /api: a verificação é por assinatura
	// HMAC, não por JWT.
	opts.WebhookHandler.Register(&router.RouterGroup)

	api := router.Group("/api")

	opts.HealthHandler.Register(api)

	login := api.Group("")
	login.Use(middleware.IPRateLimit(opts.LoginRateLimit))
	opts.AuthHandler.Register(login)

	protected := api.Group("")
	if opts.RateLimit.Enabled {
		protected.Use(middleware.RateLimit(opts.RateLimit))
	}
	protected.Use(middleware.Auth(opts.AuthSecret))

	opts.RuleHandler.Register(protected)
	opts.InboxHandler.Register(protected)
	opts.AccountHandler.Register(protected)

	return router
}
