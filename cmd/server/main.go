package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cadre-be/internal/api"
	"cadre-be/internal/config"
	"cadre-be/internal/db"
	"cadre-be/internal/kafka"
	"cadre-be/internal/listing"
	"cadre-be/internal/logger"
	"cadre-be/internal/memstore"
	"cadre-be/internal/middleware"
	"cadre-be/internal/order"
	"cadre-be/internal/redisx"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	shutdownTimeout = 10 * time.Second
	producerName    = "cadre-api"
)

// Seams for tests.
var (
	initDBFunc      = db.NewDatabase
	startServerFunc = func(srv *http.Server) error { return srv.ListenAndServe() }
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Fatal(err)
	}
}

// app is everything the HTTP layer needs plus what must be closed on exit.
type app struct {
	deps    api.Deps
	closers []func() error
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			logger.L().Warn("close failed", zap.Error(err))
		}
	}
}

// newServer wires storage and the optional collaborators. conn may be nil
// for the memory driver.
func newServer(cfg *config.Config, conn *sql.DB) *app {
	a := &app{}

	var (
		uow      order.UnitOfWork
		listings listing.Repository
	)
	if conn != nil {
		uow = order.NewSQLUnitOfWork(conn)
		listings = listing.NewRepository(conn)
		a.deps.Ping = conn.PingContext
	} else {
		store := memstore.New()
		uow = store
		listings = store.Listings()
	}

	var publisher order.Publisher
	if len(cfg.KafkaBrokers) > 0 {
		p := kafka.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, producerName)
		publisher = p
		a.closers = append(a.closers, p.Close)
	}

	var idem order.IdempotencyStore = memstore.NewIdempotency()
	if cfg.RedisAddr != "" {
		rdb := redisx.New(cfg.RedisAddr)
		idem = redisx.NewIdempotency(rdb, redisx.TTLIdempotency)
		a.closers = append(a.closers, rdb.Close)
	}

	a.deps.Orders = order.NewService(uow, publisher, idem, cfg.ShipmentFee)
	a.deps.Listings = listing.NewService(listings)
	a.deps.JWTSecret = []byte(cfg.JWTSecret)
	a.deps.Limiter = middleware.NewRateLimiter(cfg.InternalServiceKey)

	return a
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger.Init(cfg.AppEnv)
	defer logger.Sync()
	log := logger.L()

	if cfg.JWTSecret == "" {
		log.Warn("JWT_SECRET is empty; every protected route will answer 401")
	}

	var conn *sql.DB
	if cfg.StorageDriver == config.StorageDriverPostgres {
		conn, err = initDBFunc(cfg)
		if err != nil {
			return fmt.Errorf("init database: %w", err)
		}
		defer conn.Close()
	}

	a := newServer(cfg, conn)
	defer a.close()

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           api.NewRouter(a.deps),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.deps.Limiter.Cleanup(gctx)
		return nil
	})

	g.Go(func() error {
		log.Info("http server listening",
			zap.String("addr", srv.Addr),
			zap.String("storage", cfg.StorageDriver),
			zap.Bool("kafka", len(cfg.KafkaBrokers) > 0),
			zap.Bool("redis", cfg.RedisAddr != ""),
		)
		if err := startServerFunc(srv); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
