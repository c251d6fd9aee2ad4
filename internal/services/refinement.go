package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/concursoprep/backend/internal/logger"
)

// CompletionMarker is the literal the assistant emits when the dialogue has
// gathered enough information and is returning the structured summary.
const CompletionMarker = "REFINAMENTO_COMPLETO:"

// FacetAny is the sentinel the assistant writes for a facet the user
// expressed no preference about.
const FacetAny = "qualquer"

// Facets are the refinement dimensions extracted from a terminal assistant
// turn. A nil field means unset (absent line or the "qualquer" sentinel).
type Facets struct {
	Topico      *string `json:"topico,omitempty"`
	Banca       *string `json:"banca,omitempty"`
	Instituicao *string `json:"instituicao,omitempty"`
	Cargo       *string `json:"cargo,omitempty"`
	Periodo     *string `json:"periodo,omitempty"`
	Disciplina  *string `json:"disciplina,omitempty"`
}

// SkippedFacets models the user abandoning refinement: all facets unset.
// Skipping is a normal transition to complete, not an error.
func SkippedFacets() Facets {
	return Facets{}
}

// ParseFacets inspects one assistant turn. complete is true iff the turn
// contains the completion marker; facets are then read from the labeled
// lines, each split on its first colon and trimmed.
func ParseFacets(content string) (facets Facets, complete bool) {
	if !strings.Contains(content, CompletionMarker) {
		return Facets{}, false
	}
	for _, line := range strings.Split(content, "\n") {
		switch {
		case strings.Contains(line, "Tópico:"):
			facets.Topico = facetValue(line)
		case strings.Contains(line, "Banca:"):
			facets.Banca = facetValue(line)
		case strings.Contains(line, "Instituição:"):
			facets.Instituicao = facetValue(line)
		case strings.Contains(line, "Cargo:"):
			facets.Cargo = facetValue(line)
		case strings.Contains(line, "Período:"):
			facets.Periodo = facetValue(line)
		case strings.Contains(line, "Disciplina:"):
			facets.Disciplina = facetValue(line)
		}
	}
	return facets, true
}

func facetValue(line string) *string {
	parts := strings.SplitN(line, ":", 2)
	if len(parts) != 2 {
		return nil
	}
	v := strings.TrimSpace(parts[1])
	if v == "" || strings.EqualFold(v, FacetAny) {
		return nil
	}
	return &v
}

// NewTranscript starts a caller-owned transcript. The synthetic first turn
// restates the topic so the model has full context on every round; the client
// resends the whole transcript each call.
func NewTranscript(topic string) []AIMessage {
	return []AIMessage{{Role: RoleUser, Content: "Tópico inicial: " + topic}}
}

// BuildQuery appends resolved facets to the topic as structured suffixes for
// the generation gateway. Unset facets contribute nothing.
func BuildQuery(topic string, facets Facets) string {
	parts := []string{topic}
	if facets.Banca != nil {
		parts = append(parts, "banca "+*facets.Banca)
	}
	if facets.Instituicao != nil {
		parts = append(parts, "instituição "+*facets.Instituicao)
	}
	if facets.Cargo != nil {
		parts = append(parts, "cargo "+*facets.Cargo)
	}
	if facets.Periodo != nil {
		parts = append(parts, *facets.Periodo)
	}
	if facets.Disciplina != nil {
		parts = append(parts, *facets.Disciplina)
	}
	return strings.Join(parts, " ")
}

const refinementSystemPrompt = `Você é um assistente especializado em ajudar estudantes a encontrar questões de concursos públicos brasileiros. Seu objetivo é coletar informações para refinar a busca.

IMPORTANTE: Analise o tópico inicial do usuário e identifique quais informações ele NÃO mencionou. Pergunte APENAS sobre os aspectos que faltam.

Aspectos para verificar:
- Banca organizadora (ex: CESGRANRIO, FCC, CESPE, FGV, Fundação CEPERJ)
- Instituição (ex: BNDES, ANM, Petrobras, Banco do Brasil)
- Cargo (ex: Cientista de Dados, Analista, Técnico, Auditor)
- Data da questão (ex: 2024, 2022, últimos 5 anos)
- Disciplina (ex: Português, Matemática, Direito, Raciocínio Lógico)

FORMATO DA RESPOSTA:
1. Cumprimente brevemente e mencione o tópico
2. Liste com bullets (•) APENAS os aspectos não mencionados
3. Mantenha clean, sem emojis ou numeração
4. Inclua exemplos entre parênteses

Exemplo de resposta:
"Para refinar sua busca sobre [tópico], informe os detalhes que desejar:

• Banca organizadora (CESGRANRIO, FCC, CESPE, etc.)
• Instituição (BNDES, Petrobras, Banco do Brasil)
• Cargo (Analista, Técnico, Auditor)
• Período (2024, últimos 5 anos)
• Disciplina (Português, Matemática, Direito)

Você pode informar o que souber ou pular."

Quando o usuário responder, resuma em:
REFINAMENTO_COMPLETO:
- Tópico: [tópico original]
- Banca: [nome ou "qualquer"]
- Instituição: [nome ou "qualquer"]
- Cargo: [cargo ou "qualquer"]
- Período: [ano ou "qualquer"]
- Disciplina: [disciplina ou "qualquer"]`

type RefinementService interface {
	// NextTurn replays the full caller-owned transcript and returns the next
	// assistant turn. The component itself holds no dialogue state.
	NextTurn(ctx context.Context, transcript []AIMessage) (string, error)
}

type refinementService struct {
	log      *logger.Logger
	aiClient AIClient
}

func NewRefinementService(log *logger.Logger, ai AIClient) RefinementService {
	return &refinementService{
		log:      log.With("service", "RefinementService"),
		aiClient: ai,
	}
}

func (s *refinementService) NextTurn(ctx context.Context, transcript []AIMessage) (string, error) {
	if len(transcript) == 0 {
		return "", fmt.Errorf("transcript required")
	}
	messages := make([]AIMessage, 0, len(transcript)+1)
	messages = append(messages, AIMessage{Role: RoleSystem, Content: refinementSystemPrompt})
	messages = append(messages, transcript...)

	s.log.Debug("Processando refinamento de busca", "turns", len(transcript))
	return s.aiClient.Chat(ctx, messages)
}
