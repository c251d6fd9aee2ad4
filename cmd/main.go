package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/concursoprep/backend/internal/db"
	"github.com/concursoprep/backend/internal/handlers"
	"github.com/concursoprep/backend/internal/logger"
	"github.com/concursoprep/backend/internal/middleware"
	"github.com/concursoprep/backend/internal/observability"
	"github.com/concursoprep/backend/internal/repos"
	"github.com/concursoprep/backend/internal/server"
	"github.com/concursoprep/backend/internal/services"
	"github.com/concursoprep/backend/internal/utils"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Tracing (opt-in)
	shutdownOtel := observability.InitOTel(context.Background(), log, observability.OtelConfig{
		ServiceName: "concursoprep-backend",
		Environment: utils.GetEnv("APP_ENV", "development", log),
	})
	if shutdownOtel != nil {
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdownOtel(ctx)
		}()
	}

	// Env
	jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "", log)
	if jwtSecretKey == "" {
		log.Error("JWT_SECRET_KEY is not set")
		os.Exit(1)
	}

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	if err := postgresService.AutoMigrateAll(); err != nil {
		log.Error("Postgres auto migration failed", "error", err)
		os.Exit(1)
	}
	thePG := postgresService.DB()

	// Repos
	log.Info("Setting up repos...")
	questionRepo := repos.NewQuestionRepo(thePG, log)
	notebookRepo := repos.NewNotebookRepo(thePG, log)
	noteRepo := repos.NewQuestionNoteRepo(thePG, log)

	// Services
	log.Info("Setting up services...")
	aiClient, err := services.NewAIClient(log)
	if err != nil {
		// The upstream credential is process-wide configuration; its absence
		// is fatal at startup, not a per-request error.
		log.Error("Could not init AIClient", "error", err)
		os.Exit(1)
	}
	bucketService, err := services.NewBucketService(log)
	if err != nil {
		log.Warn("Could not init BucketService, image URLs will be empty", "error", err)
		bucketService = nil
	}
	retrievalCache, err := services.NewRetrievalCache(log)
	if err != nil {
		log.Warn("Could not init RetrievalCache, caching disabled", "error", err)
		retrievalCache = nil
	}

	searchService := services.NewQuestionSearchService(log, aiClient)
	retrievalService := services.NewRetrievalService(thePG, log, questionRepo, bucketService, retrievalCache)
	refinementService := services.NewRefinementService(log, aiClient)
	explanationService := services.NewExplanationService(log, aiClient)
	notebookService := services.NewNotebookService(thePG, log, notebookRepo, noteRepo, questionRepo)

	// Handlers
	log.Info("Setting up handlers...")
	searchHandler := handlers.NewSearchHandler(log, searchService)
	questionsHandler := handlers.NewQuestionsHandler(log, retrievalService)
	refineHandler := handlers.NewRefineHandler(log, refinementService)
	explainHandler := handlers.NewExplainHandler(log, explanationService)
	notebookHandler := handlers.NewNotebookHandler(log, notebookService)

	// Middleware
	authMiddleware := middleware.NewAuthMiddleware(log, jwtSecretKey)

	// Router
	log.Info("Setting up router...")
	router := server.NewRouter(server.RouterConfig{
		AuthMiddleware:   authMiddleware,
		SearchHandler:    searchHandler,
		QuestionsHandler: questionsHandler,
		RefineHandler:    refineHandler,
		ExplainHandler:   explainHandler,
		NotebookHandler:  notebookHandler,
	})

	port := utils.GetEnv("PORT", "8080", log)
	log.Info("Server listening", "port", port)
	if err := router.Run(":" + port); err != nil {
		log.Error("Server failed", "error", err)
	}
}
