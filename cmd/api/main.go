package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/digikraal/ledgerview/api"
	"github.com/digikraal/ledgerview/api/routes"
	"github.com/digikraal/ledgerview/internal/auth"
	"github.com/digikraal/ledgerview/internal/ledger"
	"github.com/digikraal/ledgerview/internal/portfolio"
	"github.com/digikraal/ledgerview/internal/scope"
	"github.com/digikraal/ledgerview/internal/transactions"
	"github.com/digikraal/ledgerview/internal/users"
	"github.com/digikraal/ledgerview/pkg/auth/session"
	"github.com/digikraal/ledgerview/pkg/config"
	"github.com/digikraal/ledgerview/pkg/db"
	"github.com/digikraal/ledgerview/pkg/instance"
	"github.com/digikraal/ledgerview/pkg/logger"
	"github.com/digikraal/ledgerview/pkg/metrics"
	"github.com/digikraal/ledgerview/pkg/migrate"
	"github.com/digikraal/ledgerview/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})

	if err := run(cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logg *logger.Logger) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, dbClient.Close())
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return err
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, redisClient.Close())
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	ledgerMetrics := metrics.NewLedgerMetrics(registry)

	userRepo := users.NewRepository(dbClient.DB())
	resolver, err := scope.NewResolver(userRepo, logg)
	if err != nil {
		return err
	}
	ledgerRepo := ledger.NewRepository(dbClient.DB())

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       userRepo,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
		Logger:         logg,
	})
	if err != nil {
		return err
	}
	registerService, err := auth.NewRegisterServiceFromDB(dbClient, cfg.Password)
	if err != nil {
		return err
	}
	portfolioService, err := portfolio.NewService(portfolio.ServiceParams{
		Repo:    ledgerRepo,
		Scopes:  resolver,
		Logger:  logg,
		Metrics: ledgerMetrics,
	})
	if err != nil {
		return err
	}
	transactionsService, err := transactions.NewService(transactions.ServiceParams{
		Repo:    ledgerRepo,
		Scopes:  resolver,
		Logger:  logg,
		Metrics: ledgerMetrics,
	})
	if err != nil {
		return err
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	logCtx := logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": instance.ID(),
		"driver":   cfg.DB.Driver,
	})
	logg.Info(logCtx, "starting api server")

	router := routes.NewRouter(
		cfg,
		logg,
		dbClient,
		redisClient,
		sessionManager,
		authService,
		registerService,
		portfolioService,
		transactionsService,
		resolver,
		routes.Observability{
			HTTP:     metrics.NewHTTPMetrics(registry),
			Gatherer: registry,
		},
	)
	server := api.NewServer(cfg, addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		logg.Info(logCtx, "shutting down api server")
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
