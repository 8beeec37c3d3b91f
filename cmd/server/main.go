// Command server runs the task API.
//
// @title                       Task API
// @version                     1.0
// @description                 Multi-tenant task tracking with bearer token authentication.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"

	"github.com/tasktrack/task-api/internal/api"
	"github.com/tasktrack/task-api/internal/api/handler"
	"github.com/tasktrack/task-api/internal/core/ports"
	"github.com/tasktrack/task-api/internal/core/service"
	"github.com/tasktrack/task-api/internal/infrastructure/config"
	mongodb "github.com/tasktrack/task-api/internal/infrastructure/db/mongo"
	"github.com/tasktrack/task-api/internal/infrastructure/db/postgres"
	redisdb "github.com/tasktrack/task-api/internal/infrastructure/db/redis"
	"github.com/tasktrack/task-api/internal/infrastructure/metrics"
	"github.com/tasktrack/task-api/internal/infrastructure/token"
	"github.com/tasktrack/task-api/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "server: %v\n", err)
		os.Exit(1)
	}
}

// stores groups the persistence adapters selected by STORAGE.
type stores struct {
	users  ports.UserRepository
	tasks  ports.TaskRepository
	checks map[string]handler.Pinger
	close  func(context.Context) error
}

func run(ctx context.Context) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "task-api",
	})

	if cfg.UsesDevelopmentSecret() && !cfg.IsDevelopment() {
		log.Warn().Str("env", cfg.Env).Msg("JWT_SECRET and SECRET_KEY_BASE are unset; signing tokens with the development default")
	}

	st, err := openStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.close(context.Background()); err != nil {
			log.Warn().Err(err).Msg("closing stores")
		}
	}()

	var idem ports.IdempotencyStore
	if cfg.Redis.Addr != "" {
		rdb, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		if err != nil {
			return err
		}
		defer rdb.Close()

		store := redisdb.NewIdempotencyStore(rdb, cfg.Redis.IdempotencyTTL)
		idem = store
		st.checks["redis"] = store
		log.Info().Str("addr", cfg.Redis.Addr).Msg("idempotency keys enabled")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	if err := metrics.Register(reg); err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}

	codec := token.NewJWTCodec(cfg.SigningSecret(), cfg.TokenTTL)

	e := api.NewRouter(api.Dependencies{
		AuthService: service.NewAuthService(st.users, codec, log.With().Str("component", "auth").Logger()),
		TaskService: service.NewTaskService(st.tasks, idem, log.With().Str("component", "tasks").Logger()),
		Tokens:      codec,
		Users:       st.users,
		Checks:      st.checks,
		Registry:    reg,
		Logger:      log,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("storage", cfg.Storage).Msg("server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func openStores(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*stores, error) {
	switch cfg.Storage {
	case config.StoragePostgres:
		db, err := postgres.Open(ctx, cfg.Postgres.DSN)
		if err != nil {
			return nil, err
		}
		if err := postgres.RunMigrations(ctx, db); err != nil {
			_ = db.Close()
			return nil, err
		}
		log.Info().Msg("postgres migrations applied")

		return &stores{
			users:  postgres.NewUserRepository(db),
			tasks:  postgres.NewTaskRepository(db),
			checks: map[string]handler.Pinger{"postgres": postgres.NewPinger(db)},
			close:  func(context.Context) error { return db.Close() },
		}, nil

	default:
		client, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, err
		}
		if err := mongodb.EnsureIndexes(ctx, db); err != nil {
			_ = client.Disconnect(ctx)
			return nil, err
		}
		log.Info().Str("database", cfg.Mongo.Database).Msg("mongodb connected")

		return &stores{
			users:  mongodb.NewUserRepository(db),
			tasks:  mongodb.NewTaskRepository(db),
			checks: map[string]handler.Pinger{"mongodb": mongodb.NewPinger(db)},
			close:  client.Disconnect,
		}, nil
	}
}
