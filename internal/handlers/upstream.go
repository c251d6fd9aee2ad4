package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/concursoprep/backend/internal/services"
)

const (
	msgRateLimited    = "Limite de requisições excedido. Tente novamente mais tarde."
	msgQuotaExhausted = "Créditos insuficientes. Por favor, adicione créditos ao seu workspace."
)

// respondUpstreamError maps the classified upstream failure onto the wire:
// 429 retry-later, 402 add-credits, everything else an opaque 500 with the
// operation's generic message. Detail was already logged at the client.
func respondUpstreamError(c *gin.Context, err error, genericMessage string) {
	switch {
	case services.IsRateLimited(err):
		RespondError(c, http.StatusTooManyRequests, msgRateLimited)
	case services.IsQuotaExhausted(err):
		RespondError(c, http.StatusPaymentRequired, msgQuotaExhausted)
	default:
		RespondError(c, http.StatusInternalServerError, genericMessage)
	}
}
