package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	pkgvalidator "github.com/johnquangdev/meeting-insights/pkg/validator"

	"github.com/johnquangdev/meeting-insights/internal/adapter/handler"
	"github.com/johnquangdev/meeting-insights/internal/adapter/repository"
	"github.com/johnquangdev/meeting-insights/internal/infrastructure/cache"
	"github.com/johnquangdev/meeting-insights/internal/infrastructure/database"
	"github.com/johnquangdev/meeting-insights/internal/infrastructure/external/backend"
	httpmw "github.com/johnquangdev/meeting-insights/internal/infrastructure/http/middleware"
	"github.com/johnquangdev/meeting-insights/internal/infrastructure/storage"
	"github.com/johnquangdev/meeting-insights/internal/usecase/presentation"
	"github.com/johnquangdev/meeting-insights/internal/usecase/summary"
	"github.com/johnquangdev/meeting-insights/pkg/config"
	"github.com/johnquangdev/meeting-insights/pkg/jwt"
	"github.com/johnquangdev/meeting-insights/pkg/llm"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize Echo instance
	e := echo.New()

	// Register validator for request validation
	e.Validator = pkgvalidator.New()

	// Configure Echo
	e.HideBanner = true
	e.HidePort = false

	// Custom logger format
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "${time_rfc3339} | ${status} | ${method} ${uri} | ${latency_human}\n",
	}))

	// Recover from panics
	e.Use(middleware.Recover())

	// CORS middleware
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.Server.AllowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Initialize dependencies
	log.Println("🔧 Initializing dependencies...")

	// Backend API client (metadata store + presigned upload path)
	log.Println("🔗 Connecting to backend API...")
	backendClient := backend.NewClient(&cfg.Backend)
	{
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := backendClient.Ping(ctx); err != nil {
			log.Printf("⚠️  Backend API not reachable at startup: %v", err)
		} else {
			log.Printf("✅ Backend API reachable at %s", cfg.Backend.APIURL)
		}
		cancel()
	}

	// Idempotency store: Redis when configured, in-process otherwise
	var store cache.Store
	if cfg.Redis.Addr != "" {
		log.Println("📦 Connecting to Redis...")
		redisStore, err := cache.NewRedisStore(&cfg.Redis)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisStore.Close()
		store = redisStore
	} else {
		log.Println("📦 Redis not configured, using in-memory idempotency store")
		store = cache.NewMemoryStore()
	}

	// Optional run-audit database
	var recorder summary.RunRecorder
	var runLister handler.RunLister
	if cfg.Database.Enabled {
		log.Println("📦 Connecting to database...")
		db, err := database.NewPostgresDB(cfg)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer database.CloseDB(db)

		// Run AutoMigrate only when explicitly enabled in config.
		// Production deployments should manage schema via sql-migrate.
		if cfg.Database.AutoMigrate {
			if cfg.Server.Environment == "production" {
				log.Fatalf("AutoMigrate is enabled in production. Disable DB_AUTO_MIGRATE or manage schema with sql-migrate.")
			}
			log.Println("🔄 Running GORM AutoMigrate (development only) ...")
			if err := database.AutoMigrate(db); err != nil {
				log.Fatalf("Failed to run AutoMigrate: %v", err)
			}
		} else {
			log.Println("🔄 Skipping GORM AutoMigrate; use sql-migrate for schema migrations in CI/CD/production")
		}

		runRepo := repository.NewRunRepository(db)
		recorder = runRepo
		runLister = runRepo
	} else {
		log.Println("📦 Run-audit database disabled, stage transitions stay in logs only")
	}

	// Upload path: backend presigned URLs by default, MinIO direct when configured
	var uploader summary.ArtifactUploader = backendClient
	if cfg.Storage.Mode == "minio" {
		log.Println("🗄️  Initializing MinIO storage...")
		minioUploader, err := storage.NewMinIOUploader(&cfg.Storage)
		if err != nil {
			log.Fatalf("Failed to initialize MinIO: %v", err)
		}
		uploader = minioUploader
		log.Printf("✅ MinIO storage ready at %s", cfg.Storage.Endpoint)
	}

	// AI client
	log.Println("🤖 Initializing AI client...")
	llmClient := llm.NewClient(&cfg.LLM)

	// Summarization pipeline
	log.Println("⚙️  Initializing summarization pipeline...")
	schema := summary.NewSchemaValidator()
	pipeline := summary.NewPipeline(schema, llmClient, backendClient, presentation.NewRenderer(), uploader, recorder, logger)

	// Handlers
	log.Println("🪝 Initializing webhook handler...")
	webhookHandler := handler.NewWebhook(pipeline, store, logger)
	meetingHandler := handler.NewMeeting(schema, backendClient, runLister, logger)

	// Webhook auth: both checks optional, enabled by their secrets
	var verifier *jwt.Verifier
	if cfg.Webhook.JWTSecret != "" {
		log.Println("🔑 Webhook bearer authentication enabled")
		verifier = jwt.NewVerifier(cfg.Webhook.JWTSecret)
	}
	authMW := httpmw.NewAuthMiddleware(verifier, cfg.Webhook.SigningSecret)

	// Setup router with handlers
	log.Println("🛣️  Setting up routes...")
	router := handler.NewRouter(cfg, webhookHandler, meetingHandler, authMW)
	router.Setup(e)

	// Start server
	go func() {
		addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
		log.Printf("🚀 Starting server on %s", addr)
		log.Printf("📝 Environment: %s", cfg.Server.Environment)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Fatalf("Failed to shut down server: %v", err)
	}
	log.Println("✅ Server stopped")
}
