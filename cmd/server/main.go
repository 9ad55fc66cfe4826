package main // Entry point package

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/iliyamo/booklist-service/internal/config"
	"github.com/iliyamo/booklist-service/internal/database"
	"github.com/iliyamo/booklist-service/internal/handler"
	"github.com/iliyamo/booklist-service/internal/logger"
	"github.com/iliyamo/booklist-service/internal/metrics"
	"github.com/iliyamo/booklist-service/internal/middleware"
	"github.com/iliyamo/booklist-service/internal/queue"
	"github.com/iliyamo/booklist-service/internal/repository"
	"github.com/iliyamo/booklist-service/internal/router"
	"github.com/iliyamo/booklist-service/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("load config: %v", err)
	}
	log := logger.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var db *sql.DB
	if cfg.StoreDriver == repository.DriverMySQL {
		db, err = database.Open(cfg.DBDSN)
		if err != nil {
			log.Fatalf("open database: %v", err)
		}
		defer db.Close()
	}
	stores, err := repository.New(cfg.StoreDriver, db)
	if err != nil {
		log.Fatalf("build stores: %v", err)
	}
	if err := stores.Users.Init(ctx); err != nil {
		log.Fatalf("init user store: %v", err)
	}
	if err := stores.Books.Init(ctx); err != nil {
		log.Fatalf("init book store: %v", err)
	}

	rdb := config.NewRedisClient(cfg.Redis)
	if rdb == nil {
		log.Warn("redis unavailable; response cache and rate limiting disabled")
	} else {
		defer rdb.Close()
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	col := metrics.NewCollector(reg)

	auth := service.NewAuthService(stores.Users, cfg.JWTSecret, cfg.BcryptCost,
		service.WithLogger(log), service.WithRecorder(col))

	purge := func(ctx context.Context, ev queue.BookUpdatedEvent) error {
		n, err := middleware.PurgeCache(ctx, rdb, cfg.Cache.Prefix)
		if err != nil {
			return err
		}
		log.WithFields(logrus.Fields{"isbn": ev.ISBN, "keys": n}).Debug("cache purged")
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)

	var events service.EventPublisher
	if cfg.RabbitURL != "" {
		events = service.NewAMQPPublisher(cfg.RabbitURL, log)
		g.Go(func() error {
			return queue.StartBookConsumer(gctx, cfg.RabbitURL, purge, log)
		})
	} else {
		events = service.PublisherFunc(purge)
	}
	catalog := service.NewCatalogService(stores.Books, auth, events, log)

	e := router.New(router.Deps{
		Auth:      handler.NewAuthHandler(auth, log),
		Books:     handler.NewBookHandler(catalog, log),
		Verifier:  auth,
		Redis:     rdb,
		Cache:     cfg.Cache,
		RateLimit: cfg.RateLimit,
		Metrics:   col,
		Gatherer:  metrics.Handler(reg),
		Log:       log,
	})

	addr := ":" + cfg.Port
	g.Go(func() error {
		log.WithFields(logrus.Fields{"addr": addr, "env": cfg.Env, "store": cfg.StoreDriver}).Info("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.WithError(err).Error("server stopped with error")
		os.Exit(1)
	}
	log.Info("server stopped")
}
