package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/zapimob/zapimob/internal/config"
)

// App embrulha o http.Server com os timeouts padrão da aplicação.
type App struct {
	server *http.Server
	log    *zap.Logger
}

func New(cfg config.Config, log *zap.Logger, router *gin.Engine) *App {
	return &App{
		server: &http.Server{
			Addr:              ":" + cfg.App.Port,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		log: log,
	}
}

func (a *App) Run(ctx context.Context) error {
	a.log.Info("servidor HTTP escutando", zap.String("addr", a.server.Addr))
	if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (a *App) Shutdown(ctx context.Context) error {
	return a.server.Shutdown(ctx)
}
