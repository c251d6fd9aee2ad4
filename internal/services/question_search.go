package services

import (
	"context"
	"fmt"

	"github.com/concursoprep/backend/internal/logger"
)

const generationSystemPrompt = "Você é um assistente especializado em gerar questões de concursos públicos brasileiros. Quando o usuário pedir sobre um tópico, gere 3-5 questões de múltipla escolha relevantes, bem formatadas e com gabarito. Seja claro, objetivo e educacional."

// QuestionSearchService is the generation gateway: it hands the free-text
// topic (optionally already carrying resolved facet suffixes) to the language
// model and returns the generated question block verbatim.
type QuestionSearchService interface {
	Generate(ctx context.Context, query string) (string, error)
}

type questionSearchService struct {
	log      *logger.Logger
	aiClient AIClient
}

func NewQuestionSearchService(log *logger.Logger, ai AIClient) QuestionSearchService {
	return &questionSearchService{
		log:      log.With("service", "QuestionSearchService"),
		aiClient: ai,
	}
}

func (s *questionSearchService) Generate(ctx context.Context, query string) (string, error) {
	if query == "" {
		return "", fmt.Errorf("query required")
	}
	s.log.Debug("Processando busca", "query", query)
	return s.aiClient.Chat(ctx, []AIMessage{
		{Role: RoleSystem, Content: generationSystemPrompt},
		{Role: RoleUser, Content: fmt.Sprintf("Gere questões de concurso sobre: %s", query)},
	})
}
