package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"google.golang.org/grpc"

	"github.com/rl1809/cart-inventory/internal/adapter/events"
	"github.com/rl1809/cart-inventory/internal/adapter/handler"
	"github.com/rl1809/cart-inventory/internal/adapter/storage"
	"github.com/rl1809/cart-inventory/internal/config"
	"github.com/rl1809/cart-inventory/internal/core/service"
	"github.com/rl1809/cart-inventory/internal/observability"
	"github.com/rl1809/cart-inventory/internal/port"
	"github.com/rl1809/cart-inventory/internal/telemetry"
)

// store is what both SQL adapters provide.
type store interface {
	port.CartRepository
	port.InventoryRepository
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	setupLogger(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTelemetry, err := telemetry.Init(ctx, cfg.OTLPEndpoint, cfg.ServiceName)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init telemetry")
	}

	// Initialize store
	repo, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.StoreDriver).Msg("failed to open store")
	}
	log.Info().Str("driver", cfg.StoreDriver).Msg("connected to store")

	var (
		serviceOpts    []service.Option
		dispatcherOpts = []handler.Option{
			handler.WithLogger(log.Logger),
			handler.WithLowStockThreshold(cfg.LowStockThreshold),
		}
		rdb *redis.Client
	)

	// Initialize Redis
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			PoolSize: 100,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatal().Err(err).Msg("failed to connect redis")
		}
		redisAdapter := storage.NewRedisAdapter(rdb)
		serviceOpts = append(serviceOpts, service.WithLocker(redisAdapter))
		dispatcherOpts = append(dispatcherOpts, handler.WithIdempotency(redisAdapter))
		log.Info().Str("addr", cfg.RedisAddr).Msg("connected to redis")
	}

	// Initialize services
	instruments, err := observability.NewInstruments(log.Logger, otel.GetTracerProvider(), otel.GetMeterProvider())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create instruments")
	}

	var inventory port.InventoryEngine = service.NewInventoryService(repo, serviceOpts...)
	var publisher *events.RabbitPublisher
	if cfg.RabbitMQURL != "" {
		publisher, err = events.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQExchange)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect rabbitmq")
		}
		inventory = events.NewInventoryEngine(inventory, publisher, cfg.LowStockThreshold, log.Logger)
		log.Info().Str("exchange", cfg.RabbitMQExchange).Msg("publishing inventory events")
	}

	cart := observability.NewCartEngine(service.NewCartService(repo, serviceOpts...), instruments)
	dispatcher := handler.NewDispatcher(cart, observability.NewInventoryEngine(inventory, instruments), dispatcherOpts...)

	// Start gRPC server
	grpcServer := grpc.NewServer()
	handler.RegisterToolServiceServer(grpcServer, handler.NewGRPCHandler(dispatcher))

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		log.Fatal().Err(err).Str("addr", cfg.GRPCAddr).Msg("failed to listen")
	}

	go func() {
		log.Info().Str("addr", cfg.GRPCAddr).Msg("gRPC server listening")
		if err := grpcServer.Serve(lis); err != nil {
			log.Error().Err(err).Msg("gRPC server error")
		}
	}()

	// Start HTTP server
	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), otelgin.Middleware(cfg.ServiceName))
	handler.NewHTTPHandler(dispatcher).Register(router)

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", handler.HeaderUserID, handler.HeaderRequestID},
	})

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           c.Handler(router),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("HTTP server listening")
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("HTTP server error")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP shutdown")
	}
	log.Info().Msg("HTTP server stopped")

	grpcServer.GracefulStop()
	log.Info().Msg("gRPC server stopped")

	if publisher != nil {
		if err := publisher.Close(); err != nil {
			log.Error().Err(err).Msg("close rabbitmq")
		}
	}
	if rdb != nil {
		rdb.Close()
	}
	closeStore()
	if err := shutdownTelemetry(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("telemetry shutdown")
	}
	log.Info().Msg("connections closed")
}

func setupLogger(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339Nano

	if cfg.LogFormat == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	}
	log.Logger = log.With().Str("service", cfg.ServiceName).Logger()
}

func openStore(ctx context.Context, cfg *config.Config) (store, func(), error) {
	switch cfg.StoreDriver {
	case config.DriverMySQL:
		db, err := sql.Open("mysql", cfg.MySQLDSN)
		if err != nil {
			return nil, nil, err
		}
		db.SetMaxOpenConns(50)
		db.SetMaxIdleConns(25)
		db.SetConnMaxLifetime(5 * time.Minute)

		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("ping mysql: %w", err)
		}
		if err := storage.EnsureMySQLSchema(ctx, db); err != nil {
			db.Close()
			return nil, nil, err
		}
		return storage.NewMySQLAdapter(db), func() { db.Close() }, nil

	case config.DriverPostgres:
		poolCfg, err := pgxpool.ParseConfig(cfg.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		poolCfg.MaxConns = 50
		poolCfg.MaxConnLifetime = 5 * time.Minute

		pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
		if err != nil {
			return nil, nil, err
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("ping postgres: %w", err)
		}
		if err := storage.EnsurePostgresSchema(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return storage.NewPostgresAdapter(pool), pool.Close, nil

	default:
		return nil, nil, fmt.Errorf("unsupported store driver %q", cfg.StoreDriver)
	}
}
