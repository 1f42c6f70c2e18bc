package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/justinhartfield/cannabis-fantasy-league-public-sub002/internal/config"
	"github.com/justinhartfield/cannabis-fantasy-league-public-sub002/internal/httpapi"
	"github.com/justinhartfield/cannabis-fantasy-league-public-sub002/internal/hub"
	"github.com/justinhartfield/cannabis-fantasy-league-public-sub002/internal/session"
	"github.com/justinhartfield/cannabis-fantasy-league-public-sub002/internal/store"
)

func main() {
	cfg := config.Load()

	logger := newLogger(cfg.LogLevel)
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var sink session.PickSink
	var archive httpapi.PickArchive
	if cfg.DatabaseURL != "" {
		st, err := store.Open(cfg.DatabaseURL, logger)
		if err != nil {
			logger.Fatal("opening pick store", zap.Error(err))
		}
		sink = st
		archive = st
	} else {
		logger.Warn("DATABASE_URL not set; picks are not persisted")
	}

	h := hub.NewHub(ctx, sink, logger, clockwork.NewRealClock())

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: httpapi.SetupRoutes(h, logger, cfg.PickClockSec, archive),
	}

	go func() {
		<-ctx.Done()
		h.Inbox() <- hub.ShutdownHub{}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("listening", zap.String("addr", cfg.Addr))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server exited", zap.Error(err))
	}
}

func newLogger(level string) *zap.Logger {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	logger, err := cfg.Build()
	if err != nil {
		panic(err)
	}
	return logger
}
