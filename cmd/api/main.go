package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	amqp "github.com/rabbitmq/amqp091-go"
	redisclient "github.com/redis/go-redis/v9"
	"github.com/robertarktes/sponsored-events/internal/adapters/crdb"
	mongoadapter "github.com/robertarktes/sponsored-events/internal/adapters/mongo"
	"github.com/robertarktes/sponsored-events/internal/adapters/rabbit"
	redisadapter "github.com/robertarktes/sponsored-events/internal/adapters/redis"
	"github.com/robertarktes/sponsored-events/internal/clock"
	"github.com/robertarktes/sponsored-events/internal/config"
	"github.com/robertarktes/sponsored-events/internal/engine"
	httphandler "github.com/robertarktes/sponsored-events/internal/http"
	"github.com/robertarktes/sponsored-events/internal/idempotency"
	"github.com/robertarktes/sponsored-events/internal/inventory"
	"github.com/robertarktes/sponsored-events/internal/ledger"
	"github.com/robertarktes/sponsored-events/internal/observability"
	"github.com/robertarktes/sponsored-events/internal/outcome"
	"github.com/robertarktes/sponsored-events/internal/rateLimit"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdown, err := observability.SetupOTel(ctx, cfg, "sev-api")
	if err != nil {
		log.Fatalf("failed to setup otel: %v", err)
	}
	defer shutdown()

	logger := observability.NewLogger()
	runID := uuid.NewString()
	clk := clock.NewSystem()
	var checks []httphandler.ReadyCheck

	ledgerOpts := []ledger.Option{ledger.WithClock(clk)}
	if cfg.CRDBDSN != "" {
		pool, err := pgxpool.New(ctx, cfg.CRDBDSN)
		if err != nil {
			log.Fatalf("failed to connect to crdb: %v", err)
		}
		defer pool.Close()
		repo := crdb.NewRepository(pool)
		if err := repo.Migrate(ctx); err != nil {
			log.Fatalf("failed to migrate crdb: %v", err)
		}
		ledgerOpts = append(ledgerOpts, ledger.WithJournal(crdb.NewJournal(repo, runID, logger)))
		checks = append(checks, repo.Ping)
	}
	payments := ledger.New(logger, ledgerOpts...)

	outcomeOpts := []outcome.Option{outcome.WithClock(clk)}
	if cfg.MongoURI != "" {
		mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			log.Fatalf("failed to connect to mongo: %v", err)
		}
		defer mongoClient.Disconnect(context.Background())
		sink := mongoadapter.NewOutcomeSink(mongoClient.Database("sev"), runID, logger)
		outcomeOpts = append(outcomeOpts, outcome.WithSink(sink))
		checks = append(checks, func(ctx context.Context) error { return mongoClient.Ping(ctx, nil) })
	}
	outcomes := outcome.New(logger, outcomeOpts...)

	routerOpts := httphandler.RouterOptions{
		RateLimit:   cfg.RateLimit,
		RatePeriod:  cfg.RatePeriod,
		Idempotency: idempotency.NewIdempotency(idempotency.NewMemory(), cfg.IdempotencyTTL),
	}
	inv := inventory.MemoryFactory()
	if cfg.RedisAddr != "" {
		redisClient := redisclient.NewClient(&redisclient.Options{Addr: cfg.RedisAddr})
		defer redisClient.Close()
		cache := redisadapter.NewCache(redisClient)
		routerOpts.Idempotency = idempotency.NewIdempotency(redisadapter.NewIdempotency(redisClient), cfg.IdempotencyTTL)
		routerOpts.RateLimiter = rateLimit.NewRateLimiter(cache, logger)
		if cfg.InventoryBackend == config.InventoryRedis {
			inv = redisadapter.InventoryFactory(redisClient, runID, logger)
		}
		checks = append(checks, cache.Ping)
	}

	if cfg.RabbitURL != "" {
		rabbitConn, err := amqp.Dial(cfg.RabbitURL)
		if err != nil {
			log.Fatalf("failed to connect to rabbitmq: %v", err)
		}
		defer rabbitConn.Close()
		rabbitPub, err := rabbit.NewPublisher(rabbitConn)
		if err != nil {
			log.Fatalf("failed to create publisher: %v", err)
		}
		defer rabbitPub.Close()
		inv = rabbit.NotifyingFactory(inv, rabbitPub, logger)
		checks = append(checks, func(context.Context) error {
			if rabbitConn.IsClosed() {
				return errors.New("rabbitmq connection closed")
			}
			return nil
		})
	}

	eng := engine.New(engine.Deps{
		Payments:     payments,
		Inventory:    inv,
		Outcomes:     outcomes,
		Clock:        clk,
		Logger:       logger,
		PasswordCost: cfg.BcryptCost,
	})
	seeded, err := eng.SeedGovernmentRepresentative(cfg.GovRepEmail, cfg.GovRepPassword, cfg.GovRepPaymentAccount)
	if err != nil {
		log.Fatalf("failed to seed government representative: %v", err)
	}
	logger.WithFields(map[string]interface{}{"email": cfg.GovRepEmail, "seeded": seeded}).Info("government representative ready")

	sessions := httphandler.NewSessions()
	handlers := httphandler.NewHandlers(eng, sessions, func(ctx context.Context) error {
		for _, check := range checks {
			if err := check(ctx); err != nil {
				return err
			}
		}
		return nil
	})
	r := httphandler.SetupRouter(handlers, sessions, logger, routerOpts)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		outcomes.Run(gctx)
		return nil
	})
	g.Go(func() error {
		logger.WithFields(map[string]interface{}{"addr": cfg.HTTPAddr, "run_id": runID}).Info("api listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "listen")
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutdown Server ...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server stopped: ", err)
		os.Exit(1)
	}
	logger.Info("Server exiting")
}
