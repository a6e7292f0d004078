// @title        Acquisitions API
// @version      1.0
// @description  User management API with JWT authentication and role-based access control.
// @BasePath     /
//
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/gabrielmilitaosantos/acquisitions/internal/api"
	"github.com/gabrielmilitaosantos/acquisitions/internal/api/handler"
	"github.com/gabrielmilitaosantos/acquisitions/internal/core/ports"
	"github.com/gabrielmilitaosantos/acquisitions/internal/core/service"
	"github.com/gabrielmilitaosantos/acquisitions/internal/infrastructure/config"
	mongostore "github.com/gabrielmilitaosantos/acquisitions/internal/infrastructure/db/mongo"
	redisstore "github.com/gabrielmilitaosantos/acquisitions/internal/infrastructure/db/redis"
	"github.com/gabrielmilitaosantos/acquisitions/internal/infrastructure/db/sqldb"
	"github.com/gabrielmilitaosantos/acquisitions/internal/infrastructure/queue"
	"github.com/gabrielmilitaosantos/acquisitions/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "acquisitions: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "acquisitions",
	})

	// --- Relational store (required) ---
	db, err := sqldb.Open(ctx, sqldb.Config{
		Driver:       cfg.Database.Driver,
		DSN:          cfg.Database.URL,
		MaxOpenConns: cfg.Database.MaxOpenConns,
	})
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	if err := sqldb.EnsureSchema(ctx, db); err != nil {
		return err
	}
	userRepo := sqldb.NewUserRepository(db)

	checks := map[string]handler.PingFunc{"sql": db.PingContext}

	// --- Revocation store (optional) ---
	var revocations ports.RevocationStore
	if cfg.Redis.Addr != "" {
		rdb, err := redisstore.Connect(ctx, redisstore.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return err
		}
		defer func() { _ = rdb.Close() }()

		revocations = redisstore.NewRevocationStore(rdb, cfg.Auth.TokenTTL)
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	} else {
		log.Warn().Msg("REDIS_ADDR not set, token revocation disabled")
	}

	// --- Audit trail (optional) ---
	var (
		auditSink    ports.AuditSink
		auditService ports.AuditService
		dispatcher   *queue.Dispatcher
	)
	if cfg.Mongo.URI != "" {
		client, mdb, err := mongostore.Connect(ctx, mongostore.Config{
			URI:      cfg.Mongo.URI,
			Database: cfg.Mongo.Database,
		})
		if err != nil {
			return err
		}
		defer disconnect(client.Disconnect, log)

		auditRepo := mongostore.NewAuditRepository(mdb)
		if err := auditRepo.EnsureIndexes(ctx); err != nil {
			return err
		}

		auditLog := logger.Component("audit")
		auditService = service.NewAuditService(auditRepo, auditLog)
		dispatcher = queue.NewDispatcher(cfg.Audit.Workers, auditService, auditLog)
		// Workers outlive the signal so Stop can drain them after shutdown.
		dispatcher.Start(context.WithoutCancel(ctx))
		auditSink = dispatcher
		checks["mongo"] = func(ctx context.Context) error { return client.Ping(ctx, nil) }
	} else {
		log.Warn().Msg("MONGO_URI not set, audit trail disabled")
	}

	// --- Services ---
	authService := service.NewAuthService(userRepo, revocations, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, logger.Component("auth"))
	userService := service.NewUserService(userRepo, revocations, auditSink, service.UserOptions{
		GuardLastAdminDemotion: cfg.Policy.GuardLastAdminDemotion,
	}, logger.Component("users"))

	e := api.NewRouter(api.Dependencies{
		Users:           userService,
		Auth:            authService,
		Audit:           auditService,
		Health:          checks,
		Logger:          logger.Component("http"),
		CookieSecure:    cfg.Auth.CookieSecure || cfg.IsProduction(),
		SignInRateLimit: cfg.Auth.SignInRateLimit,
		Production:      cfg.IsProduction(),
	})

	// --- Serve until a signal arrives ---
	addr := net.JoinHostPort("", cfg.Port)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Str("addr", addr).Str("env", cfg.Env).Msg("http server listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})

	err = g.Wait()

	// Drain queued audit events once no handler can enqueue anymore.
	if dispatcher != nil {
		dispatcher.Stop()
	}

	log.Info().Msg("server stopped")
	return err
}

func disconnect(fn func(context.Context) error, log zerolog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := fn(ctx); err != nil {
		log.Warn().Err(err).Msg("mongo disconnect failed")
	}
}
