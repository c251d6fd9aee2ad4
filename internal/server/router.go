package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/concursoprep/backend/internal/handlers"
	"github.com/concursoprep/backend/internal/middleware"
	"github.com/concursoprep/backend/internal/observability"
)

type RouterConfig struct {
	AuthMiddleware   *middleware.AuthMiddleware
	SearchHandler    *handlers.SearchHandler
	QuestionsHandler *handlers.QuestionsHandler
	RefineHandler    *handlers.RefineHandler
	ExplainHandler   *handlers.ExplainHandler
	NotebookHandler  *handlers.NotebookHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	if observability.Enabled() {
		router.Use(otelgin.Middleware("concursoprep-backend"))
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"http://localhost:3000",
			"http://localhost:5173",
			"http://localhost:5174",
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	// Public
	router.GET("/healthcheck", handlers.HealthCheck)

	// Protected
	api := router.Group("/api")
	api.Use(cfg.AuthMiddleware.RequireAuth())

	api.POST("/search-questions", cfg.SearchHandler.SearchQuestions)
	api.POST("/fetch-questions", cfg.QuestionsHandler.FetchQuestions)
	api.POST("/refine-search", cfg.RefineHandler.RefineSearch)
	api.POST("/refine-search/parse", cfg.RefineHandler.ParseRefinement)
	api.POST("/explain-question", cfg.ExplainHandler.ExplainQuestion)

	api.GET("/notebooks", cfg.NotebookHandler.ListNotebooks)
	api.POST("/notebooks", cfg.NotebookHandler.CreateNotebook)
	api.DELETE("/notebooks/:id", cfg.NotebookHandler.DeleteNotebook)
	api.GET("/notebooks/:id/questions", cfg.NotebookHandler.ListQuestions)
	api.POST("/notebooks/:id/questions", cfg.NotebookHandler.SaveQuestion)
	api.DELETE("/notebooks/:id/questions/:questionID", cfg.NotebookHandler.RemoveQuestion)
	api.PUT("/questions/:id/note", cfg.NotebookHandler.UpsertNote)
	api.GET("/questions/:id/note", cfg.NotebookHandler.GetNote)

	return router
}
