package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/concursoprep/backend/internal/logger"
	"github.com/concursoprep/backend/internal/services"
)

type SearchHandler struct {
	log       *logger.Logger
	searchSvc services.QuestionSearchService
}

func NewSearchHandler(log *logger.Logger, searchSvc services.QuestionSearchService) *SearchHandler {
	return &SearchHandler{
		log:       log.With("handler", "SearchHandler"),
		searchSvc: searchSvc,
	}
}

type searchQuestionsRequest struct {
	Query string `json:"query"`
}

type searchQuestionsResponse struct {
	Result string `json:"result"`
}

// POST /api/search-questions
// Generate exam-style questions about a free-text topic.
func (h *SearchHandler) SearchQuestions(c *gin.Context) {
	var req searchQuestionsRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Query == "" {
		RespondError(c, http.StatusBadRequest, "Query é obrigatória")
		return
	}

	result, err := h.searchSvc.Generate(c.Request.Context(), req.Query)
	if err != nil {
		h.log.Error("Erro ao processar busca", "error", err)
		respondUpstreamError(c, err, "Erro ao processar a busca")
		return
	}
	RespondOK(c, searchQuestionsResponse{Result: result})
}
