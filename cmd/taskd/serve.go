package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	_ "github.com/tasktrack/task-api/docs"
	"github.com/tasktrack/task-api/internal/api"
	"github.com/tasktrack/task-api/internal/core/ports"
	"github.com/tasktrack/task-api/internal/core/service"
	"github.com/tasktrack/task-api/internal/infrastructure/db/mongo"
	"github.com/tasktrack/task-api/internal/infrastructure/db/postgres"
	redisstore "github.com/tasktrack/task-api/internal/infrastructure/db/redis"
	"github.com/tasktrack/task-api/internal/infrastructure/http/handlers"
	"github.com/tasktrack/task-api/internal/infrastructure/security"
	"github.com/tasktrack/task-api/internal/pkg/config"
	"github.com/tasktrack/task-api/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE:  runServe,
	}
}

// stores groups the repositories and probes of the selected backend.
type stores struct {
	users     ports.UserRepository
	tasks     ports.TaskRepository
	readiness map[string]handlers.Pinger
	closers   []func()
}

func (s *stores) close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	log := logger.New(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "taskd",
	})

	st, err := openStores(ctx, cfg, log)
	if err != nil {
		log.Error().Err(err).Str("driver", cfg.StoreDriver).Msg("failed to open stores")
		return err
	}
	defer st.close()

	throttle, err := openThrottle(ctx, cfg, st)
	if err != nil {
		log.Error().Err(err).Str("addr", cfg.Redis.Addr).Msg("failed to connect to redis")
		return err
	}

	hasher := security.NewArgon2idHasher(security.Params{
		Time:      cfg.Argon2.Time,
		MemoryKiB: cfg.Argon2.MemoryKiB,
		Threads:   cfg.Argon2.Threads,
	})
	authService := service.NewAuthService(st.users, hasher, throttle, cfg.JWTSecret, cfg.JWTTTL, log)
	taskService := service.NewTaskService(st.tasks, log)

	e := api.NewRouter(api.Deps{
		Logger:      log,
		JWTSecret:   cfg.JWTSecret,
		AuthService: authService,
		TaskService: taskService,
		Users:       st.users,
		Readiness:   st.readiness,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("driver", cfg.StoreDriver).Msg("server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("server failed")
			return err
		}
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
		return err
	}
	return nil
}

func openStores(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*stores, error) {
	switch cfg.StoreDriver {
	case config.StoreDriverMongo:
		client, db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, err
		}
		st := &stores{
			users: mongo.NewUserRepository(db, log),
			tasks: mongo.NewTaskRepository(db, log),
			readiness: map[string]handlers.Pinger{
				"mongodb": func(ctx context.Context) error { return client.Ping(ctx, nil) },
			},
			closers: []func(){func() { _ = client.Disconnect(context.Background()) }},
		}
		if err := mongo.EnsureIndexes(ctx, db); err != nil {
			st.close()
			return nil, err
		}
		return st, nil

	case config.StoreDriverPostgres:
		if cfg.Postgres.AutoMigrate {
			version, err := applyMigrations(cfg.Postgres.URL)
			if err != nil {
				return nil, err
			}
			log.Info().Uint("version", version).Msg("database schema up to date")
		}
		pool, err := postgres.Connect(ctx, postgres.Config{URL: cfg.Postgres.URL})
		if err != nil {
			return nil, err
		}
		return &stores{
			users: postgres.NewUserRepository(pool, log),
			tasks: postgres.NewTaskRepository(pool, log),
			readiness: map[string]handlers.Pinger{
				"postgres": pool.Ping,
			},
			closers: []func(){pool.Close},
		}, nil
	}
	return nil, oops.Code("CONFIG_INVALID").Errorf("unsupported store driver %q", cfg.StoreDriver)
}

// openThrottle returns nil when no Redis address is configured, which leaves
// sign-in unthrottled.
func openThrottle(ctx context.Context, cfg *config.Config, st *stores) (ports.LoginThrottle, error) {
	if cfg.Redis.Addr == "" {
		return nil, nil
	}

	rdb, err := redisstore.Connect(ctx, redisstore.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return nil, err
	}
	st.readiness["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	st.closers = append(st.closers, func() { _ = rdb.Close() })

	return redisstore.NewLoginThrottle(rdb, cfg.Login.MaxFailures, cfg.Login.Lockout), nil
}
