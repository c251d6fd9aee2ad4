package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/concursoprep/backend/internal/logger"
	"github.com/concursoprep/backend/internal/services"
)

type ExplainHandler struct {
	log        *logger.Logger
	explainSvc services.ExplanationService
}

func NewExplainHandler(log *logger.Logger, explainSvc services.ExplanationService) *ExplainHandler {
	return &ExplainHandler{
		log:        log.With("handler", "ExplainHandler"),
		explainSvc: explainSvc,
	}
}

type explainQuestionRequest struct {
	QuestionStem  string `json:"questionStem"`
	CorrectAnswer string `json:"correctAnswer"`
	UserQuestion  string `json:"userQuestion"`
}

type explainQuestionResponse struct {
	Explanation string `json:"explanation"`
}

// POST /api/explain-question
// Tutoring explanation for an answered question. All three fields are
// required and validated before anything goes upstream.
func (h *ExplainHandler) ExplainQuestion(c *gin.Context) {
	var req explainQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "Dados incompletos")
		return
	}

	explanation, err := h.explainSvc.Explain(c.Request.Context(), req.QuestionStem, req.CorrectAnswer, req.UserQuestion)
	if err != nil {
		if errors.Is(err, services.ErrMissingFields) {
			RespondError(c, http.StatusBadRequest, "Dados incompletos")
			return
		}
		h.log.Error("Erro ao processar explicação", "error", err)
		respondUpstreamError(c, err, "Erro ao processar explicação")
		return
	}
	RespondOK(c, explainQuestionResponse{Explanation: explanation})
}
