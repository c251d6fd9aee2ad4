package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/concursoprep/backend/internal/logger"
	"github.com/concursoprep/backend/internal/services"
)

type RefineHandler struct {
	log       *logger.Logger
	refineSvc services.RefinementService
}

func NewRefineHandler(log *logger.Logger, refineSvc services.RefinementService) *RefineHandler {
	return &RefineHandler{
		log:       log.With("handler", "RefineHandler"),
		refineSvc: refineSvc,
	}
}

type refineSearchRequest struct {
	Messages []services.AIMessage `json:"messages"`
}

type refineSearchResponse struct {
	Result string `json:"result"`
}

// POST /api/refine-search
// Replay the caller-owned transcript and return the next assistant turn.
// Completion detection stays on the caller, matching the browser client.
func (h *RefineHandler) RefineSearch(c *gin.Context) {
	var req refineSearchRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.Messages) == 0 {
		RespondError(c, http.StatusBadRequest, "Messages array é obrigatória")
		return
	}

	result, err := h.refineSvc.NextTurn(c.Request.Context(), req.Messages)
	if err != nil {
		h.log.Error("Erro ao processar refinamento", "error", err)
		respondUpstreamError(c, err, "Erro ao processar refinamento")
		return
	}
	RespondOK(c, refineSearchResponse{Result: result})
}

type parseRefinementRequest struct {
	Content string `json:"content"`
}

type parseRefinementResponse struct {
	Complete bool            `json:"complete"`
	Facets   services.Facets `json:"facets"`
}

// POST /api/refine-search/parse
// Marker/facet parsing for API consumers that do not reimplement the line
// protocol client-side.
func (h *RefineHandler) ParseRefinement(c *gin.Context) {
	var req parseRefinementRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Content == "" {
		RespondError(c, http.StatusBadRequest, "Content é obrigatório")
		return
	}

	facets, complete := services.ParseFacets(req.Content)
	RespondOK(c, parseRefinementResponse{Complete: complete, Facets: facets})
}
