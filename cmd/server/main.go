package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"plumise.backend/internal/config"
	"plumise.backend/internal/infrastructure/blockchain"
	"plumise.backend/internal/infrastructure/jobs"
	"plumise.backend/internal/infrastructure/repositories"
	"plumise.backend/internal/interfaces/http/handlers"
	"plumise.backend/internal/interfaces/http/middleware"
	"plumise.backend/internal/metrics"
	"plumise.backend/internal/usecases"
	"plumise.backend/pkg/jwt"
	"plumise.backend/pkg/logger"
	"plumise.backend/pkg/nonce"
	"plumise.backend/pkg/redis"
)

var (
	loadDotenv = godotenv.Load
	loadCfg    = config.Load
	initLog    = logger.Init
	initRedis  = redis.Init
	openDB     = func(dsn string) (*gorm.DB, error) {
		return gorm.Open(postgres.New(postgres.Config{
			DSN:                  dsn,
			PreferSimpleProtocol: true,
		}), &gorm.Config{
			PrepareStmt: false,
		})
	}
	runServer = func(r *gin.Engine, port string) error { return r.Run(":" + port) }
	getStdDB  = func(db *gorm.DB) (*sql.DB, error) { return db.DB() }
)

func main() {
	if err := runMainProcess(); err != nil {
		log.Fatal(err)
	}
}

func runMainProcess() error {
	// Load .env file
	if err := loadDotenv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Load configuration
	cfg := loadCfg()

	// Initialize Logger
	initLog(cfg.Server.Env)
	logger.Info(context.Background(), "Logger initialized", zap.String("env", cfg.Server.Env))

	// Payment verification is optional; a partial configuration is an
	// operator mistake worth shouting about at boot.
	for _, problem := range cfg.Payment.BootErrors() {
		log.Printf("⚠️ Payment config: %s", problem)
	}

	// Pick the nonce store. Redis survives restarts and multiple
	// replicas; without it a single in-process store plus a sweep job
	// is enough.
	var nonceStore nonce.Store
	var sweepJob *jobs.NonceSweepJob
	if cfg.Redis.URL != "" {
		if err := initRedis(cfg.Redis.URL, cfg.Redis.Password); err != nil {
			logger.Error(context.Background(), "Failed to initialize Redis", zap.Error(err))
			return fmt.Errorf("failed to initialize redis: %w", err)
		}
		logger.Info(context.Background(), "Redis initialized, using Redis nonce store")
		nonceStore = nonce.NewRedisStore()
	} else {
		memStore := nonce.NewMemoryStore()
		nonceStore = memStore
		sweepJob = jobs.NewNonceSweepJob(memStore)
		log.Println("ℹ️ REDIS_URL not set, using in-memory nonce store")
	}

	// Set Gin mode
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database using GORM
	dsn := cfg.Database.URL()
	db, err := openDB(dsn)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := getStdDB(db)
	if err != nil {
		return fmt.Errorf("failed to get generic database object: %w", err)
	}
	defer sqlDB.Close()

	if err := sqlDB.Ping(); err != nil {
		log.Printf("⚠️ Database not available: %v (endpoints will return errors)", err)
	} else {
		log.Println("✅ Connected to PostgreSQL via GORM")
	}

	// Initialize JWT service
	jwtService := jwt.NewJWTService(
		cfg.JWT.Secret,
		cfg.JWT.AccessExpiry,
		cfg.JWT.RefreshExpiry,
	)

	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	paymentRepo := repositories.NewPlanPaymentRepository(db)
	balanceRepo := repositories.NewBalanceRepository(db)
	ledgerRepo := repositories.NewLedgerTransactionRepository(db)
	uow := repositories.NewUnitOfWork(db)

	// Initialize metrics
	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	// Initialize blockchain client factory
	clientFactory := blockchain.NewClientFactory()
	oracleFor := func(rpcURL string) (usecases.ChainOracle, error) {
		return clientFactory.GetEVMClient(rpcURL)
	}

	// Initialize usecases
	catalog := usecases.NewPlanCatalog(config.PlanCatalogSource)
	entitlements := usecases.NewEntitlementResolver(config.AgentFreeWalletsSource)
	siweUsecase := usecases.NewSiweUsecase(nonceStore, userRepo, jwtService, m)
	billingUsecase := usecases.NewBillingUsecase(catalog, entitlements, userRepo, paymentRepo, balanceRepo, ledgerRepo, uow, m, config.LoadPayment, oracleFor)
	usageUsecase := usecases.NewUsageUsecase(userRepo, balanceRepo, ledgerRepo, entitlements)

	// Initialize handlers
	siweHandler := handlers.NewSiweHandler(siweUsecase)
	billingHandler := handlers.NewBillingHandler(billingUsecase, usageUsecase)

	// Start background jobs
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if sweepJob != nil {
		go sweepJob.Start(ctx)
	}

	// Initialize router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggerMiddleware())
	r.Use(middleware.MetricsMiddleware(m))

	applyCORSMiddleware(r)
	registerHealthRoute(r)
	registerMetricsRoute(r, registry)
	registerAPIV1Routes(r, routeDeps{
		siweHandler:    siweHandler,
		billingHandler: billingHandler,
		authMiddleware: middleware.AuthMiddleware(jwtService),
	})

	// Print all registered routes for debugging
	log.Println("📋 Registered Routes:")
	for _, route := range r.Routes() {
		log.Printf("   %s %s", route.Method, route.Path)
	}

	// Graceful shutdown
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Println("🛑 Shutting down server...")
		if sweepJob != nil {
			sweepJob.Stop()
		}
		cancel()
	}()

	// Start server
	log.Printf("🚀 Plumise Backend starting on port %s", cfg.Server.Port)
	log.Printf("📚 API: http://localhost:%s/api/v1", cfg.Server.Port)
	log.Printf("❤️ Health: http://localhost:%s/health", cfg.Server.Port)

	if err := runServer(r, cfg.Server.Port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}
