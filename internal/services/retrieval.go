package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/concursoprep/backend/internal/logger"
	"github.com/concursoprep/backend/internal/repos"
	"github.com/concursoprep/backend/internal/types"
)

const DefaultRetrievalLimit = 3

const noResultsMessage = "Nenhuma questão encontrada sobre este tópico no momento."

// RetrievalResult is the wire shape for the fetch operation. Zero matches is
// success with a message, never an error.
type RetrievalResult struct {
	Questions []QuestionResult `json:"questions"`
	Count     int              `json:"count"`
	Message   string           `json:"message,omitempty"`
}

type QuestionResult struct {
	ID           uuid.UUID      `json:"id"`
	Stem         string         `json:"stem"`
	StemImageURL string         `json:"stem_image_url,omitempty"`
	Type         string         `json:"type"`
	Difficulty   *string        `json:"difficulty,omitempty"`
	Source       *string        `json:"source,omitempty"`
	Instituicao  *string        `json:"instituicao,omitempty"`
	Banca        *string        `json:"banca,omitempty"`
	Cargo        *string        `json:"cargo,omitempty"`
	Ano          *int           `json:"ano,omitempty"`
	Explanation  *string        `json:"explanation,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	Choices      []ChoiceResult `json:"choices"`
}

type ChoiceResult struct {
	ID        uuid.UUID `json:"id"`
	Label     string    `json:"label"`
	Content   string    `json:"content"`
	ImageURL  string    `json:"image_url,omitempty"`
	IsCorrect bool      `json:"is_correct"`
	Position  int       `json:"position"`
}

// RetrievalService runs the two-phase fetch: ranked search over the
// lightweight index first, then hydration of only the bounded result set.
// A search-phase error fails the request; there is no unranked fallback.
type RetrievalService interface {
	Retrieve(ctx context.Context, query string, limit int) (*RetrievalResult, error)
}

type retrievalService struct {
	db           *gorm.DB
	log          *logger.Logger
	questionRepo repos.QuestionRepo
	bucket       BucketService
	cache        RetrievalCache
}

// NewRetrievalService wires the retriever. bucket and cache may be nil:
// without a bucket image keys resolve to empty URLs, without a cache every
// call hits the database.
func NewRetrievalService(db *gorm.DB, log *logger.Logger, questionRepo repos.QuestionRepo, bucket BucketService, cache RetrievalCache) RetrievalService {
	return &retrievalService{
		db:           db,
		log:          log.With("service", "RetrievalService"),
		questionRepo: questionRepo,
		bucket:       bucket,
		cache:        cache,
	}
}

func (s *retrievalService) Retrieve(ctx context.Context, query string, limit int) (*RetrievalResult, error) {
	if query == "" {
		return nil, fmt.Errorf("query required")
	}
	if limit <= 0 {
		limit = DefaultRetrievalLimit
	}

	if s.cache != nil {
		if raw, ok := s.cache.Get(ctx, query, limit); ok {
			var cached RetrievalResult
			if err := json.Unmarshal(raw, &cached); err == nil {
				s.log.Debug("retrieval cache hit", "query", query, "limit", limit)
				return &cached, nil
			}
		}
	}

	ids, err := s.questionRepo.SearchIDs(ctx, nil, query, limit)
	if err != nil {
		s.log.Error("Erro ao buscar questões", "query", query, "error", err)
		return nil, fmt.Errorf("question search failed: %w", err)
	}

	if len(ids) == 0 {
		s.log.Debug("Nenhuma questão encontrada", "query", query)
		return &RetrievalResult{
			Questions: []QuestionResult{},
			Message:   noResultsMessage,
		}, nil
	}

	questions, err := s.questionRepo.GetByIDs(ctx, nil, ids)
	if err != nil {
		s.log.Error("Erro ao buscar detalhes das questões", "error", err)
		return nil, fmt.Errorf("question hydration failed: %w", err)
	}

	result := &RetrievalResult{
		Questions: make([]QuestionResult, 0, len(questions)),
		Count:     len(questions),
	}
	for _, q := range questions {
		result.Questions = append(result.Questions, s.toResult(q))
	}

	if s.cache != nil {
		if payload, err := json.Marshal(result); err == nil {
			s.cache.Set(ctx, query, limit, payload)
		}
	}
	return result, nil
}

func (s *retrievalService) toResult(q *types.Question) QuestionResult {
	out := QuestionResult{
		ID:          q.ID,
		Stem:        q.Stem,
		Type:        q.Type,
		Difficulty:  q.Difficulty,
		Source:      q.Source,
		Instituicao: q.Instituicao,
		Banca:       q.Banca,
		Cargo:       q.Cargo,
		Ano:         q.Ano,
		Explanation: q.Explanation,
		CreatedAt:   q.CreatedAt,
		Choices:     make([]ChoiceResult, 0, len(q.Choices)),
	}
	if q.StemImagePath != nil {
		out.StemImageURL = s.publicURL(*q.StemImagePath)
	}
	for _, c := range q.Choices {
		cr := ChoiceResult{
			ID:        c.ID,
			Label:     c.Label,
			Content:   c.Content,
			IsCorrect: c.IsCorrect,
			Position:  c.Position,
		}
		if c.ImagePath != nil {
			cr.ImageURL = s.publicURL(*c.ImagePath)
		}
		out.Choices = append(out.Choices, cr)
	}
	return out
}

func (s *retrievalService) publicURL(key string) string {
	if s.bucket == nil {
		return ""
	}
	return s.bucket.GetPublicURL(key)
}
