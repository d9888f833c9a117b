package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"legaldata-backend/config"
	"legaldata-backend/handlers"
	"legaldata-backend/models"
	"legaldata-backend/repository"
	"legaldata-backend/service"
	"legaldata-backend/storage"

	"github.com/gin-gonic/gin"
	"github.com/google/generative-ai-go/genai"
	"github.com/jackc/pgx/v5/pgxpool"
	"google.golang.org/api/option"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	db, err := initPostgres(cfg)
	if err != nil {
		log.Fatal("Failed to initialize Postgres:", err)
	}
	defer db.Close()

	fileStorage, err := storage.NewStorage(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	logger.Info("storage initialized", "type", cfg.StorageType)

	attorneyRepo := repository.NewAttorneyRepository(db)
	sourceRepo := repository.NewSourceRepository(db)
	fileRepo := repository.NewFileRepository(db)

	geminiClient, err := initGemini(cfg)
	if err != nil {
		log.Fatal("Failed to initialize Gemini:", err)
	}
	defer geminiClient.Close()

	attorneyService := service.NewAttorneyService(
		service.WithAttorneyRepository(attorneyRepo),
		service.WithAttorneyLogger(logger),
	)

	sourceService := service.NewSourceService(
		service.WithSourceRepository(sourceRepo),
		service.WithSourceLogger(logger),
	)

	enrichmentService, err := service.NewEnrichmentService(cfg.EnrichWorkers,
		service.WithEnrichmentRepository(sourceRepo),
		service.WithSummarizer(service.NewGeminiSummarizer(geminiClient, cfg.GeminiModel)),
		service.WithContentFetcher(service.NewHTTPContentFetcher(cfg.FetchTimeout)),
		service.WithMaxRetries(cfg.EnrichMaxRetries),
		service.WithEnrichmentLogger(logger),
	)
	if err != nil {
		log.Fatal("Failed to initialize enrichment service:", err)
	}
	defer enrichmentService.Close()

	attorneyHandler := handlers.NewAttorneyHandler(attorneyService, cfg.MaxUploadBytes)
	sourceHandler := handlers.NewSourceHandler(sourceService, enrichmentService, cfg.MaxUploadBytes, logger)
	fileHandler := handlers.NewFileHandler(fileRepo, fileStorage, cfg.LinkTTL, cfg.MaxUploadBytes)

	r := gin.Default()

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})

	api := r.Group("/api/v1")
	{
		api.POST("/attorneys", attorneyHandler.CreateAttorney)
		api.GET("/attorneys", attorneyHandler.ListAttorneys)
		api.GET("/attorneys/:id", attorneyHandler.GetAttorney)
		api.PUT("/attorneys/:id", attorneyHandler.UpdateAttorney)
		api.DELETE("/attorneys/:id", attorneyHandler.DeleteAttorney)
		api.POST("/attorneys/bulk/excel", attorneyHandler.BulkUploadAttorneys)

		api.POST("/public-sources", sourceHandler.CreateSource)
		api.GET("/public-sources", sourceHandler.ListSources)
		api.GET("/public-sources/:id", sourceHandler.GetSource)
		api.PUT("/public-sources/:id", sourceHandler.UpdateSource)
		api.PATCH("/public-sources/:id/enrich", sourceHandler.RequestEnrichment)
		api.DELETE("/public-sources/:id", sourceHandler.DeleteSource)
		api.POST("/public-sources/bulk/excel", sourceHandler.BulkUploadSources)
	}

	r.POST("/upload/internal", fileHandler.UploadFile(models.CategoryInternal))
	r.POST("/upload/attorney-history", fileHandler.UploadFile(models.CategoryAttorneyHistory))
	r.GET("/list/internal", fileHandler.ListFiles(models.CategoryInternal))
	r.GET("/list/attorney-history", fileHandler.ListFiles(models.CategoryAttorneyHistory))
	r.GET("/files/signed", fileHandler.DownloadSigned)
	r.GET("/files/:id", fileHandler.GetFile)

	logger.Info("server starting", "addr", cfg.Addr)
	if err := r.Run(cfg.Addr); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}

func initPostgres(cfg *config.Config) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(context.Background()); err != nil {
		return nil, err
	}

	return pool, nil
}

func initGemini(cfg *config.Config) (*genai.Client, error) {
	if cfg.GeminiAPIKey == "" {
		log.Println("Warning: GEMINI_API_KEY not set")
	}

	client, err := genai.NewClient(context.Background(), option.WithAPIKey(cfg.GeminiAPIKey))
	if err != nil {
		return nil, err
	}

	return client, nil
}
