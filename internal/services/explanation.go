package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/concursoprep/backend/internal/logger"
)

// ErrMissingFields marks a client-side validation failure. Nothing is sent
// upstream when it is returned.
var ErrMissingFields = errors.New("dados incompletos")

const explanationSystemPrompt = `Você é um professor especializado em concursos públicos brasileiros.
Sua função é explicar questões de forma clara e didática, ajudando o aluno a entender:
- Por que a resposta correta está correta
- Métodos alternativos de resolução
- Conceitos-chave envolvidos
- Dicas para questões similares

Seja objetivo, didático e use linguagem acessível.`

type ExplanationService interface {
	Explain(ctx context.Context, questionStem, correctAnswer, userQuestion string) (string, error)
}

type explanationService struct {
	log      *logger.Logger
	aiClient AIClient
}

func NewExplanationService(log *logger.Logger, ai AIClient) ExplanationService {
	return &explanationService{
		log:      log.With("service", "ExplanationService"),
		aiClient: ai,
	}
}

func (s *explanationService) Explain(ctx context.Context, questionStem, correctAnswer, userQuestion string) (string, error) {
	if questionStem == "" || correctAnswer == "" || userQuestion == "" {
		return "", ErrMissingFields
	}

	userPrompt := fmt.Sprintf("Questão: %s\n\nResposta correta: %s\n\nPergunta do aluno: %s", questionStem, correctAnswer, userQuestion)
	return s.aiClient.Chat(ctx, []AIMessage{
		{Role: RoleSystem, Content: explanationSystemPrompt},
		{Role: RoleUser, Content: userPrompt},
	})
}
