package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/concursoprep/backend/internal/logger"
	"github.com/concursoprep/backend/internal/services"
)

type QuestionsHandler struct {
	log          *logger.Logger
	retrievalSvc services.RetrievalService
}

func NewQuestionsHandler(log *logger.Logger, retrievalSvc services.RetrievalService) *QuestionsHandler {
	return &QuestionsHandler{
		log:          log.With("handler", "QuestionsHandler"),
		retrievalSvc: retrievalSvc,
	}
}

type fetchQuestionsRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit"`
}

// POST /api/fetch-questions
// Ranked full-text retrieval over the indexed corpus; zero matches is a
// success with an explanatory message.
func (h *QuestionsHandler) FetchQuestions(c *gin.Context) {
	var req fetchQuestionsRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Query == "" {
		RespondError(c, http.StatusBadRequest, "Query é obrigatória")
		return
	}

	result, err := h.retrievalSvc.Retrieve(c.Request.Context(), req.Query, req.Limit)
	if err != nil {
		h.log.Error("Erro ao buscar questões", "query", req.Query, "error", err)
		RespondError(c, http.StatusInternalServerError, "Erro ao buscar questões")
		return
	}
	RespondOK(c, result)
}
