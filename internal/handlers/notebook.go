package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/concursoprep/backend/internal/logger"
	"github.com/concursoprep/backend/internal/requestdata"
	"github.com/concursoprep/backend/internal/services"
)

type NotebookHandler struct {
	log         *logger.Logger
	notebookSvc services.NotebookService
}

func NewNotebookHandler(log *logger.Logger, notebookSvc services.NotebookService) *NotebookHandler {
	return &NotebookHandler{
		log:         log.With("handler", "NotebookHandler"),
		notebookSvc: notebookSvc,
	}
}

func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		return uuid.Nil, false
	}
	return rd.UserID, true
}

func (h *NotebookHandler) respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		RespondError(c, http.StatusNotFound, "Caderno não encontrado")
	case errors.Is(err, services.ErrForbidden):
		RespondError(c, http.StatusForbidden, "Acesso negado")
	default:
		h.log.Error("notebook operation failed", "error", err)
		RespondError(c, http.StatusInternalServerError, "Erro ao processar a solicitação")
	}
}

// GET /api/notebooks
func (h *NotebookHandler) ListNotebooks(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		RespondError(c, http.StatusUnauthorized, "missing or invalid token")
		return
	}
	notebooks, err := h.notebookSvc.ListNotebooks(c.Request.Context(), userID)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"notebooks": notebooks})
}

// POST /api/notebooks
func (h *NotebookHandler) CreateNotebook(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		RespondError(c, http.StatusUnauthorized, "missing or invalid token")
		return
	}
	var req struct {
		Name string `json:"name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Name == "" {
		RespondError(c, http.StatusBadRequest, "Nome é obrigatório")
		return
	}
	notebook, err := h.notebookSvc.CreateNotebook(c.Request.Context(), userID, req.Name)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}
	RespondOK(c, notebook)
}

// DELETE /api/notebooks/:id
func (h *NotebookHandler) DeleteNotebook(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		RespondError(c, http.StatusUnauthorized, "missing or invalid token")
		return
	}
	notebookID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "ID inválido")
		return
	}
	if err := h.notebookSvc.DeleteNotebook(c.Request.Context(), userID, notebookID); err != nil {
		h.respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// POST /api/notebooks/:id/questions
func (h *NotebookHandler) SaveQuestion(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		RespondError(c, http.StatusUnauthorized, "missing or invalid token")
		return
	}
	notebookID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "ID inválido")
		return
	}
	var req struct {
		QuestionID uuid.UUID `json:"question_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.QuestionID == uuid.Nil {
		RespondError(c, http.StatusBadRequest, "question_id é obrigatório")
		return
	}
	if err := h.notebookSvc.SaveQuestion(c.Request.Context(), userID, notebookID, req.QuestionID); err != nil {
		h.respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DELETE /api/notebooks/:id/questions/:questionID
func (h *NotebookHandler) RemoveQuestion(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		RespondError(c, http.StatusUnauthorized, "missing or invalid token")
		return
	}
	notebookID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "ID inválido")
		return
	}
	questionID, err := uuid.Parse(c.Param("questionID"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "ID inválido")
		return
	}
	if err := h.notebookSvc.RemoveQuestion(c.Request.Context(), userID, notebookID, questionID); err != nil {
		h.respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GET /api/notebooks/:id/questions
func (h *NotebookHandler) ListQuestions(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		RespondError(c, http.StatusUnauthorized, "missing or invalid token")
		return
	}
	notebookID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "ID inválido")
		return
	}
	questions, err := h.notebookSvc.ListQuestions(c.Request.Context(), userID, notebookID)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"questions": questions, "count": len(questions)})
}

// PUT /api/questions/:id/note
func (h *NotebookHandler) UpsertNote(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		RespondError(c, http.StatusUnauthorized, "missing or invalid token")
		return
	}
	questionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "ID inválido")
		return
	}
	var req struct {
		Content string `json:"content"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "Conteúdo inválido")
		return
	}
	note, err := h.notebookSvc.UpsertNote(c.Request.Context(), userID, questionID, req.Content)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}
	RespondOK(c, note)
}

// GET /api/questions/:id/note
func (h *NotebookHandler) GetNote(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		RespondError(c, http.StatusUnauthorized, "missing or invalid token")
		return
	}
	questionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "ID inválido")
		return
	}
	note, err := h.notebookSvc.GetNote(c.Request.Context(), userID, questionID)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}
	RespondOK(c, note)
}
