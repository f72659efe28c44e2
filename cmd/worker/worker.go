package main

import (
	"context"
	"log"

	"course-material-service/internal/ai"
	"course-material-service/internal/config"
	"course-material-service/internal/logger"
	"course-material-service/internal/queue"
	"course-material-service/internal/repositories"
	"course-material-service/internal/storage"
	"course-material-service/internal/telemetry"
	"course-material-service/internal/vectorstore"
	"course-material-service/services"

	"github.com/hibiken/asynq"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger.InitLogger(cfg)

	// Connect to MongoDB
	mongoClient, err := config.ConnectMongoDB(cfg)
	if err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer mongoClient.Disconnect(context.Background())

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

	db := mongoClient.Database(cfg.DBName)
	jobRepo := repositories.NewMongoJobRepository(db)
	docRepo := repositories.NewMongoDocumentRepository(db)

	metrics, err := telemetry.InitMetrics()
	if err != nil {
		log.Fatal("Failed to initialize metrics:", err)
	}

	worker := services.NewIngestionWorker(
		jobRepo, docRepo, blobStore, vectorStore, embedder, metrics,
		cfg.ChunkSize, cfg.ChunkOverlap,
	)

	redisOpt, err := queue.RedisConnOpt(cfg)
	if err != nil {
		log.Fatal("Failed to parse Redis connection settings:", err)
	}

	// Create Asynq server
	server := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"ingestion": 1,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				logger.Error("task failed", "type", task.Type(), "error", err.Error())
			}),
		},
	)

	processor := queue.NewTaskProcessor(worker, metrics)

	mux := asynq.NewServeMux()
	mux.HandleFunc(queue.TaskIngestionProcess, processor.ProcessIngestion)

	logger.Info("ingestion worker starting",
		"concurrency", 10, "queue", "ingestion", "redis", cfg.RedisURL)

	// Start the server
	if err := server.Run(mux); err != nil {
		log.Fatal("Failed to start worker:", err)
	}
}
