package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/zapimob/zapimob/internal/ai"
	"github.com/zapimob/zapimob/internal/api/handler"
	"github.com/zapimob/zapimob/internal/api/middleware"
	"github.com/zapimob/zapimob/internal/app"
	"github.com/zapimob/zapimob/internal/autoreply"
	"github.com/zapimob/zapimob/internal/config"
	"github.com/zapimob/zapimob/internal/dispatch"
	"github.com/zapimob/zapimob/internal/ingest"
	"github.com/zapimob/zapimob/internal/logger"
	"github.com/zapimob/zapimob/internal/platform/meta"
	"github.com/zapimob/zapimob/internal/server"
	accountSvc "github.com/zapimob/zapimob/internal/service/account"
	authSvc "github.com/zapimob/zapimob/internal/service/auth"
	inboxSvc "github.com/zapimob/zapimob/internal/service/inbox"
	ruleSvc "github.com/zapimob/zapimob/internal/service/rule"
	"github.com/zapimob/zapimob/internal/storage"
)

func main() {
	cfg := config.Load()

	logr, err := logger.New(cfg.App.Env, cfg.Log.Level)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logr.Sync()

	logr.Info("iniciando aplicação",
		zap.String("env", cfg.App.Env),
		zap.String("log_level", cfg.Log.Level),
		zap.String("port", cfg.App.Port),
		zap.String("db_driver", cfg.Storage.Driver),
	)

	repos, err := storage.NewRepositories(cfg, logr)
	if err != nil {
		log.Fatalf("storage: %v", err)
	}

	logr.Debug("inicializando cadeia de provedores de IA")
	var providers []ai.Provider
	if cfg.AI.PrimaryAPIKey != "" {
		providers = append(providers, ai.NewOpenAICompatProvider("primary", cfg.AI.PrimaryBaseURL, cfg.AI.PrimaryAPIKey, cfg.AI.PrimaryModel))
	}
	if cfg.AI.SecondaryBaseURL != "" && cfg.AI.SecondaryAPIKey != "" {
		providers = append(providers, ai.NewOpenAICompatProvider("secondary", cfg.AI.SecondaryBaseURL, cfg.AI.SecondaryAPIKey, cfg.AI.SecondaryModel))
	}
	if cfg.AI.TertiaryBaseURL != "" && cfg.AI.TertiaryAPIKey != "" {
		providers = append(providers, ai.NewOpenAICompatProvider("tertiary", cfg.AI.TertiaryBaseURL, cfg.AI.TertiaryAPIKey, cfg.AI.TertiaryModel))
	}
	aiChain := ai.NewChain(logr, time.Duration(cfg.AI.TimeoutSeconds)*time.Second, providers...)
	logr.Info("cadeia de IA configurada", zap.Int("provedores", len(providers)))

	engine := autoreply.NewEngine(repos.Rule, repos.Assistant, aiChain, logr)

	pipeline := ingest.NewPipeline(ingest.PipelineOptions{
		Channels:      repos.Channel,
		Leads:         repos.Lead,
		Conversations: repos.Conversation,
		Messages:      repos.Message,
		WaMessages:    repos.WhatsappMessage,
		IgMessages:    repos.InstagramMessage,
		Notifications: repos.Notification,
		Accounts:      repos.Account,
		Resolver:      engine,
		Logger:        logr,
	})

	igClient := meta.NewInstagramClient(cfg.Meta.GraphBaseURL)
	waClient := meta.NewWhatsAppClient(cfg.Meta.GraphBaseURL)

	accountService := accountSvc.NewService(repos.Account, cfg.Meta.TokenEncKey)

	worker := dispatch.NewWorker(dispatch.WorkerOptions{
		Accounts:   accountService,
		Messages:   repos.Message,
		WaMessages: repos.WhatsappMessage,
		Audit:      repos.Audit,
		Instagram:  igClient,
		WhatsApp:   waClient,
		Logger:     logr,
	})

	pool := dispatch.NewPool(repos.ReplyQueue, worker, logr, cfg.Dispatch.Workers)
	pool.Start(context.Background())
	logr.Info("pool de despacho iniciada", zap.Int("workers", cfg.Dispatch.Workers))

	logr.Debug("inicializando serviços")
	authService := authSvc.NewService(cfg.JWT.Secret, cfg.JWT.ExpHours, repos.User)
	ruleService := ruleSvc.NewService(repos.Rule, repos.Assistant)
	inboxService := inboxSvc.NewService(repos.Lead, repos.Conversation, repos.Message, repos.Notification)

	verifier := ingest.NewSignatureVerifier(cfg.Meta.AppSecret, cfg.App.Env, cfg.Meta.SkipSignatureCheck)

	webhookHandler := handler.NewWebhookHandler(verifier, pipeline, pool, cfg.Meta.VerifyToken, logr)
	healthHandler := handler.NewHealthHandler()
	authHandler := handler.NewAuthHandler(authService)
	ruleHandler := handler.NewRuleHandler(ruleService)
	inboxHandler := handler.NewInboxHandler(inboxService)
	accountHandler := handler.NewAccountHandler(accountService)

	router := server.NewRouter(server.Options{
		Env:            cfg.App.Env,
		AuthSecret:     cfg.JWT.Secret,
		WebhookHandler: webhookHandler,
		HealthHandler:  healthHandler,
		AuthHandler:    authHandler,
		RuleHandler:    ruleHandler,
		InboxHandler:   inboxHandler,
		AccountHandler: accountHandler,
		RateLimit: middleware.RateLimitOption{
			Enabled:  cfg.RateLimit.Enabled,
			Requests: cfg.RateLimit.Requests,
			Window:   time.Duration(cfg.RateLimit.WindowSeconds) * time.Second,
			Prefix:   cfg.RateLimit.Prefix,
			Logger:   logr,
			Limiter:  repos.RateLimiter,
		},
		LoginRateLimit: middleware.IPRateLimitOption{
			Enabled:        cfg.RateLimit.Enabled,
			Requests:       20,
			WindowSeconds:  60,
			Limiter:        repos.RateLimiter,
			Logger:         logr,
			SkipPrivateIPs: true,
		},
	})

	application := app.New(cfg, logr, router)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		if err := application.Run(context.Background()); err != nil {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logr.Info("sinal de encerramento recebido")
	case err := <-errCh:
		if err != nil {
			logr.Error("servidor finalizado com erro", zap.Error(err))
		}
	}

	logr.Info("iniciando shutdown graceful")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool.Stop()
	logr.Info("pool de despacho encerrada")

	if repos.RedisClient != nil {
		if err := repos.RedisClient.Close(); err != nil {
			logr.Warn("erro ao fechar conexão Redis", zap.Error(err))
		}
	}

	if err := application.Shutdown(shutdownCtx); err != nil {
		logr.Error("erro ao encerrar servidor", zap.Error(err))
	} else {
		logr.Info("servidor encerrado com sucesso")
	}
}
