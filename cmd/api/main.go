package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/geocoder89/valehub/internal/auth"
	"github.com/geocoder89/valehub/internal/config"
	"github.com/geocoder89/valehub/internal/db"
	httpx "github.com/geocoder89/valehub/internal/http"
	"github.com/geocoder89/valehub/internal/http/handlers"
	"github.com/geocoder89/valehub/internal/observability"
	"github.com/geocoder89/valehub/internal/redisclient"
	"github.com/geocoder89/valehub/internal/repo/memory"
	"github.com/geocoder89/valehub/internal/repo/postgres"
	"github.com/geocoder89/valehub/internal/seed"
	"github.com/geocoder89/valehub/internal/service"
	"github.com/geocoder89/valehub/internal/session"
	"github.com/geocoder89/valehub/internal/worker"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var errShuttingDown = errors.New("shutting down")

func main() {
	// .env is optional
	_ = godotenv.Load()

	cfg := config.Load()

	log := observability.NewLogger(cfg.Env)
	slog.SetDefault(log)

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.TracingEnabled {
		shutdownTracer, err := observability.InitTracer(ctx, observability.TracerConfig{
			ServiceName: "valehub",
			Env:         cfg.Env,
			Endpoint:    cfg.OTLPEndpoint,
			SampleRatio: cfg.TraceSampleRatio,
		})
		if err != nil {
			log.Error("tracer init failed", "err", err)
			os.Exit(1)
		}
		defer func() {
			tctx, cancel := config.WithTimeout(5 * time.Second)
			defer cancel()
			_ = shutdownTracer(tctx)
		}()
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	prom := observability.NewProm(reg)

	var draining atomic.Bool
	checks := map[string]handlers.Check{
		"shutdown": func(context.Context) error {
			if draining.Load() {
				return errShuttingDown
			}
			return nil
		},
	}

	// store

	var store service.Store
	switch cfg.DataBackend {
	case config.BackendPostgres:
		if err := db.RunMigrations(ctx, cfg.DBURL); err != nil {
			log.Error("migrations failed", "err", err)
			os.Exit(1)
		}

		pool, err := db.NewPool(ctx, db.PoolConfig{URL: cfg.DBURL, MaxConns: int32(cfg.DBMaxConns)})
		if err != nil {
			log.Error("db connect failed", "err", err)
			os.Exit(1)
		}
		defer pool.Close()

		store = postgres.NewStore(pool, prom)
	default:
		log.Warn("using the in-memory store; data is lost on restart")
		store = memory.NewStore()
	}
	checks["store"] = store.Ping

	err := seed.EnsureAdmin(ctx, store, seed.Admin{
		ID:       cfg.AdminID,
		Email:    cfg.AdminEmail,
		Password: cfg.AdminPassword,
		Name:     cfg.AdminName,
	}, log)
	if err != nil {
		log.Error("admin seed failed", "err", err)
		os.Exit(1)
	}
	if cfg.SeedDemo {
		if err := seed.Demo(ctx, store, log); err != nil {
			log.Error("demo seed failed", "err", err)
			os.Exit(1)
		}
	}

	// sessions

	var revocations session.RevocationStore
	switch cfg.SessionStore {
	case config.SessionStoreRedis:
		rdb := redisclient.New(redisclient.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer rdb.Close()

		pctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := rdb.Ping(pctx)
		cancel()
		if err != nil {
			log.Error("redis connect failed", "err", err, "addr", cfg.RedisAddr)
			os.Exit(1)
		}

		revocations = session.NewRedisRevocations(rdb)
		checks["redis"] = rdb.Ping
	default:
		mem := session.NewMemoryRevocations()
		revocations = mem
		go worker.NewSweeper(worker.Config{Name: "session-revocations", Interval: 10 * time.Minute}, mem.Sweep, log).Run(ctx)
	}

	sessions := session.NewManager(auth.NewManager(cfg.SessionSecret, cfg.SessionTTL()), revocations, store, log)

	router := httpx.NewRouter(httpx.Deps{
		Log:            log,
		Env:            cfg.Env,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		LoginRateLimit: cfg.LoginRateLimit,
		Tracing:        cfg.TracingEnabled,
		Sessions:       sessions,
		Users:          service.NewUserService(store, cfg.AdminID, log),
		Vouchers:       service.NewVoucherService(store, log),
		Checks:         checks,
		Prom:           prom,
		Gatherer:       reg,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.Port, "env", cfg.Env, "backend", cfg.DataBackend, "sessions", cfg.SessionStore)
		err := srv.ListenAndServe()

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	// graceful shutdown

	<-ctx.Done()
	draining.Store(true)
	log.Info("server shutting down")

	shutdownCh := make(chan struct{})

	go func() {
		defer close(shutdownCh)

		sctx, cancel := config.WithTimeout(10 * time.Second)
		defer cancel()

		if err := srv.Shutdown(sctx); err != nil {
			log.Error("graceful shutdown failed", "err", err)
		}
	}()

	select {
	case <-shutdownCh:
		log.Info("shutdown complete")

	case <-time.After(12 * time.Second):
		log.Error("shutdown timed out")
	}
}
