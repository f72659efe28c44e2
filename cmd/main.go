package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"course-material-service/internal/ai"
	"course-material-service/internal/config"
	"course-material-service/internal/logger"
	"course-material-service/internal/queue"
	"course-material-service/internal/repositories"
	"course-material-service/internal/storage"
	"course-material-service/internal/telemetry"
	"course-material-service/internal/vectorstore"
	"course-material-service/middleware"
	"course-material-service/routes"
	"course-material-service/services"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger.InitLogger(cfg)

	if cfg.TracingEnabled {
		shutdownTracer, err := telemetry.InitTracer("course-material-service", cfg.OTLPEndpoint)
		if err != nil {
			log.Fatal("Failed to initialize tracer:", err)
		}
		defer shutdownTracer()
	}

	// Connect to MongoDB
	mongoClient, err := config.ConnectMongoDB(cfg)
	if err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		mongoClient.Disconnect(ctx)
	}()

	// Redis for token revocation, rate limiting and the task queue
	rdb, err := config.NewRedisClient(cfg)
	if err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}
	defer rdb.Close()

	redisOpt, err := queue.RedisConnOpt(cfg)
	if err != nil {
		log.Fatal("Failed to parse Redis connection settings:", err)
	}
	asynqClient := asynq.NewClient(redisOpt)
	defer asynqClient.Close()

	// Blob and vector stores
	blobStore, err := storage.NewS3BlobStore(context.Background(), cfg)
	if err != nil {
		log.Fatal("Failed to initialize S3 blob store:", err)
	}

	vectorStore, err := vectorstore.NewQdrantStore(cfg)
	if err != nil {
		log.Fatal("Failed to initialize Qdrant store:", err)
	}

	embedder, err := ai.NewEmbedder(cfg)
	if err != nil {
		log.Fatal("Failed to initialize embedder:", err)
	}

	// Repositories and services
	db := mongoClient.Database(cfg.DBName)
	jobRepo := repositories.NewMongoJobRepository(db)
	docRepo := repositories.NewMongoDocumentRepository(db)
	courseRepo := repositories.NewMongoCourseRepository(db)

	courseService := services.NewCourseService(courseRepo)
	documentService := services.NewDocumentService(docRepo, courseRepo, blobStore, vectorStore)
	ingestionService := services.NewIngestionService(jobRepo, docRepo, courseRepo)

	// Initialize Gin router
	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORSMiddleware(cfg.CORSOrigins))
	router.Use(middleware.RateLimitMiddleware(rdb, cfg))
	if cfg.TracingEnabled {
		router.Use(middleware.TracingMiddleware())
		router.Use(middleware.EnrichTrace())
	}

	metrics, err := telemetry.InitMetrics()
	if err != nil {
		log.Fatal("Failed to initialize metrics:", err)
	}
	router.Use(middleware.MetricsMiddleware(metrics))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := "healthy"
		code := http.StatusOK
		if err := mongoClient.Ping(ctx, nil); err != nil {
			status = "degraded"
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{"status": status, "timestamp": time.Now().UTC()})
	})

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(cfg, rdb)
	roleMiddleware := middleware.NewRoleMiddleware()

	// Setup routes
	routes.SetupAuthRoutes(router, cfg, mongoClient, rdb)
	routes.SetupCourseRoutes(router, courseService, authMiddleware, roleMiddleware)
	routes.SetupDocumentRoutes(router, cfg, documentService, authMiddleware, roleMiddleware)
	routes.SetupIngestionRoutes(router, ingestionService, asynqClient, authMiddleware, roleMiddleware)
	routes.SetupSearchRoutes(router, vectorStore, embedder, authMiddleware, roleMiddleware)

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("server starting", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	logger.Info("server exited")
}
