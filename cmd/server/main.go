package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/syrixgg/ops-hub/internal/assets"
	"github.com/syrixgg/ops-hub/internal/coach"
	"github.com/syrixgg/ops-hub/internal/config"
	"github.com/syrixgg/ops-hub/internal/dispatch"
	"github.com/syrixgg/ops-hub/internal/httpapi"
	"github.com/syrixgg/ops-hub/internal/hub"
	"github.com/syrixgg/ops-hub/internal/store"
	"github.com/syrixgg/ops-hub/internal/syncer"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := newLogger(cfg.Debug)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := newStore(cfg, logger)
	if err != nil {
		logger.Fatal("store init failed", zap.Error(err))
	}

	h := hub.NewHub(ctx, logger)

	deps := httpapi.Deps{
		Hub:      h,
		Store:    st,
		Dispatch: dispatch.New(st, logger),
		Coach:    coach.New(cfg.GeminiBaseURL, cfg.GeminiModel, cfg.GeminiAPIKey, logger),
		Assets:   assets.New(cfg.AssetsBaseURL, logger),
		Log:      logger,
	}

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: httpapi.SetupRoutes(deps),
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return syncer.NewManager(st, h.Inbox(), logger).Run(gctx)
	})

	g.Go(func() error {
		logger.Info("listening", zap.String("addr", cfg.Addr), zap.String("app_id", cfg.AppID))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal("server exited", zap.Error(err))
	}
	logger.Info("shutdown complete")
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// newStore picks postgres when DATABASE_URL is set, otherwise the
// in-memory store. With postgres, change propagation across instances
// goes through redis when REDIS_URL is set, else stays in-process.
func newStore(cfg config.Config, logger *zap.Logger) (store.Store, error) {
	if cfg.DatabaseURL == "" {
		return store.NewMemory(), nil
	}
	var bus store.Bus
	if cfg.RedisURL != "" {
		rb, err := store.NewRedisBus(cfg.RedisURL, cfg.AppID)
		if err != nil {
			return nil, err
		}
		bus = rb
	} else {
		bus = store.NewMemoryBus()
	}
	return store.NewPostgres(cfg.DatabaseURL, cfg.AppID, bus, logger)
}
