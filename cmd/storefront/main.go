package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/NidinaKoirala/artisan-market/internal/cart"
	"github.com/NidinaKoirala/artisan-market/internal/catalog"
	"github.com/NidinaKoirala/artisan-market/internal/checkout"
	"github.com/NidinaKoirala/artisan-market/internal/httpapi"
	"github.com/NidinaKoirala/artisan-market/internal/outbox"
	"github.com/NidinaKoirala/artisan-market/internal/payment"
	"github.com/NidinaKoirala/artisan-market/internal/postgres"
	"github.com/NidinaKoirala/artisan-market/internal/session"
	"github.com/NidinaKoirala/artisan-market/internal/user"
)

type Config struct {
	HTTPPort        string
	MongoURI        string
	MongoDBName     string
	RedisAddr       string
	RedisPassword   string
	KafkaBrokers    string
	GatewayURL      string
	GatewayKey      string
	JWTSecret       string
	CODFee          string
	Currency        string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

func loadConfig() *Config {
	return &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		MongoURI:        getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDBName:     getEnv("MONGO_DB_NAME", "storefront"),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		KafkaBrokers:    getEnv("KAFKA_BROKERS", "localhost:9092"),
		GatewayURL:      getEnv("PAYMENT_GATEWAY_URL", "http://localhost:4242"),
		GatewayKey:      getEnv("PAYMENT_GATEWAY_KEY", ""),
		JWTSecret:       getEnv("JWT_SECRET", "dev-secret"),
		CODFee:          getEnv("COD_FEE", "1.25"),
		Currency:        getEnv("CURRENCY", "USD"),
		RequestTimeout:  30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	cfg := loadConfig()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()

	// MongoDB holds carts and users.
	mongoDB, err := cart.ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDBName)
	if err != nil {
		logger.Fatal("failed to connect to mongodb", zap.Error(err))
	}
	if err := cart.CreateIndexes(ctx, mongoDB); err != nil {
		logger.Fatal("failed to create mongo indexes", zap.Error(err))
	}
	logger.Info("connected to mongodb", zap.String("uri", cfg.MongoURI))

	// Postgres holds the catalog, checkout sessions, and orders.
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		logger.Fatal("invalid DB_PORT", zap.Error(err))
	}
	creds := &postgres.Credentials{
		Host:              getEnv("DB_HOST", "localhost"),
		Port:              dbPort,
		User:              getEnv("DB_USER", "postgres"),
		Password:          getEnv("DB_PASSWORD", "postgres"),
		DBName:            getEnv("DB_NAME", "storefront"),
		MigrationsDirPath: getEnv("MIGRATIONS_PATH", "./migrations"),
	}
	db, err := postgres.Open(creds)
	if err != nil {
		logger.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	if err := postgres.RunMigrations(db, creds); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}
	logger.Info("database migrations completed")

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	defer redisClient.Close()

	codFee, err := decimal.NewFromString(cfg.CODFee)
	if err != nil {
		logger.Fatal("invalid COD_FEE", zap.Error(err))
	}

	cartService := cart.NewService(
		cart.NewMongoRepository(mongoDB),
		cart.NewRedisCache(redisClient),
		logger,
	)
	catalogRepo := catalog.NewRepository(db)
	sessionStore := session.NewStore(redisClient)
	userService := user.NewService(user.NewMongoStore(mongoDB))
	gateway := payment.NewHTTPGateway(payment.Config{
		BaseURL: cfg.GatewayURL,
		APIKey:  cfg.GatewayKey,
	})

	checkoutStore := checkout.NewStore(db)
	orchestrator := checkout.NewOrchestrator(
		checkoutStore,
		cartService,
		sessionStore,
		sessionStore,
		catalogRepo,
		gateway,
		logger,
		checkout.OrchestratorConfig{CODFee: codFee, Currency: cfg.Currency},
	)

	// Outbox poller publishes placed orders and unsticks dead submissions.
	pollerCtx, stopPoller := context.WithCancel(ctx)
	poller := outbox.NewPoller(checkoutStore, logger, cfg.KafkaBrokers)
	go poller.Run(pollerCtx)

	auth := httpapi.NewAuth(cfg.JWTSecret)
	router := httpapi.NewRouter(httpapi.RouterConfig{
		RequestTimeout: cfg.RequestTimeout,
		Auth:           auth,
		Cart:           httpapi.NewCartHandler(cartService, catalogRepo, cfg.RequestTimeout),
		Checkout:       httpapi.NewCheckoutHandler(orchestrator, cfg.RequestTimeout),
		Catalog:        httpapi.NewCatalogHandler(catalogRepo, cfg.RequestTimeout),
		User:           httpapi.NewUserHandler(userService, auth, cfg.RequestTimeout),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("storefront starting", zap.String("port", cfg.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")
	stopPoller()
	poller.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server exited")
}
