package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/benjaminclark40063-sketch/botbot4xin/internal/adapter/accountapi"
	bothttp "github.com/benjaminclark40063-sketch/botbot4xin/internal/adapter/http"
	bototel "github.com/benjaminclark40063-sketch/botbot4xin/internal/adapter/otel"
	"github.com/benjaminclark40063-sketch/botbot4xin/internal/adapter/postgres"
	"github.com/benjaminclark40063-sketch/botbot4xin/internal/adapter/ristretto"
	"github.com/benjaminclark40063-sketch/botbot4xin/internal/adapter/telegram"
	"github.com/benjaminclark40063-sketch/botbot4xin/internal/config"
	"github.com/benjaminclark40063-sketch/botbot4xin/internal/domain/tenant"
	"github.com/benjaminclark40063-sketch/botbot4xin/internal/logger"
	"github.com/benjaminclark40063-sketch/botbot4xin/internal/resilience"
	"github.com/benjaminclark40063-sketch/botbot4xin/internal/service"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "admin" {
		if err := runAdmin(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	log, closeLog := logger.New(cfg.Logging)
	defer closeLog.Close()
	slog.SetDefault(log)

	t, err := tenant.FromBotToken(cfg.Telegram.Token)
	if err != nil {
		return fmt.Errorf("tenant: %w", err)
	}

	slog.Info("config loaded",
		"tenant", t.ID,
		"port", cfg.Server.Port,
		"log_level", cfg.Logging.Level,
		"pg_max_conns", cfg.Postgres.MaxConns,
		"workers", cfg.Telegram.Workers,
		"proxy", cfg.Account.ProxyURL != "",
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Infrastructure ---

	// PostgreSQL
	pool, err := postgres.NewPool(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	defer pool.Close()
	slog.Info("postgres connected")

	// Run migrations
	if err := postgres.RunMigrations(ctx, cfg.Postgres.DSN); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	slog.Info("migrations applied")

	metrics, err := bototel.NewMetrics()
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}

	postCache, err := ristretto.New(cfg.Cache.MaxCost)
	if err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	defer postCache.Close()

	bot, err := telegram.NewBot(cfg.Telegram.Token)
	if err != nil {
		return err
	}
	msgr := telegram.NewMessenger(bot)

	breaker := resilience.NewBreaker("account-service", cfg.Breaker.MaxFailures, cfg.Breaker.Timeout)
	accounts := accountapi.New(cfg.Account, breaker)

	// --- Services ---
	store := postgres.NewStore(pool, cfg.Postgres)
	identitySvc := service.NewIdentityService(store, t, metrics)
	postSvc := service.NewPostService(store, t, postCache, cfg.Cache.PostTTL, metrics)
	subscriberSvc := service.NewSubscriberService(store, t, metrics)
	linkSvc := service.NewLinkService(accounts, cfg.Account.Secret, metrics)
	renderer := service.NewRenderer(identitySvc, postSvc, msgr, cfg.Lobby.URL, metrics)
	dispatcher := service.NewDispatcher(subscriberSvc, renderer, cfg.Broadcast.Delay, metrics)
	adminSvc := service.NewAdminService(
		service.AdminCredentials{Password: cfg.Admin.Password, Hash: cfg.Admin.PasswordHash},
		t, msgr, postSvc, subscriberSvc, dispatcher,
	)
	router := service.NewRouter(identitySvc, linkSvc, renderer, adminSvc, msgr)
	poller := telegram.NewPoller(bot, cfg.Telegram, router)

	// --- HTTP ---
	addr := ":" + cfg.Server.Port
	srv := &http.Server{
		Addr: addr,
		Handler: bothttp.NewRouter(&bothttp.Handlers{
			DB:          store,
			PingTimeout: cfg.Postgres.ConnectTimeout,
		}),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("starting health server", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("health server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		return poller.Run(gctx)
	})

	return g.Wait()
}
