package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/concursoprep/backend/internal/types"
)

type fakeQuestionRepo struct {
	searchCalls  int
	gotQuery     string
	gotLimit     int
	ids          []uuid.UUID
	searchErr    error
	hydrateCalls int
	gotIDs       []uuid.UUID
	questions    []*types.Question
	hydrateErr   error
}

func (r *fakeQuestionRepo) SearchIDs(_ context.Context, _ *gorm.DB, query string, limit int) ([]uuid.UUID, error) {
	r.searchCalls++
	r.gotQuery = query
	r.gotLimit = limit
	return r.ids, r.searchErr
}

func (r *fakeQuestionRepo) GetByIDs(_ context.Context, _ *gorm.DB, ids []uuid.UUID) ([]*types.Question, error) {
	r.hydrateCalls++
	r.gotIDs = ids
	return r.questions, r.hydrateErr
}

func (r *fakeQuestionRepo) Create(_ context.Context, _ *gorm.DB, questions []*types.Question) ([]*types.Question, error) {
	return questions, nil
}

type fakeCache struct {
	store    map[string][]byte
	getCalls int
	setCalls int
}

func newFakeCache() *fakeCache {
	return &fakeCache{store: map[string][]byte{}}
}

func (c *fakeCache) cacheKey(query string, limit int) string {
	return fmt.Sprintf("%d:%s", limit, query)
}

func (c *fakeCache) Get(_ context.Context, query string, limit int) ([]byte, bool) {
	c.getCalls++
	raw, ok := c.store[c.cacheKey(query, limit)]
	return raw, ok
}

func (c *fakeCache) Set(_ context.Context, query string, limit int, payload []byte) {
	c.setCalls++
	c.store[c.cacheKey(query, limit)] = payload
}

func (c *fakeCache) Close() error { return nil }

type fakeBucket struct{}

func (fakeBucket) UploadFile(context.Context, string, io.Reader) error { return nil }
func (fakeBucket) DeleteFile(context.Context, string) error            { return nil }
func (fakeBucket) GetPublicURL(key string) string                      { return "https://cdn.test/" + key }

func TestRetrieveRequiresQuery(t *testing.T) {
	t.Parallel()

	svc := NewRetrievalService(nil, testLogger(), &fakeQuestionRepo{}, nil, nil)
	if _, err := svc.Retrieve(context.Background(), "", 3); err == nil {
		t.Fatal("expected error for empty query")
	}
}

func TestRetrieveDefaultsLimit(t *testing.T) {
	t.Parallel()

	repo := &fakeQuestionRepo{}
	svc := NewRetrievalService(nil, testLogger(), repo, nil, nil)
	if _, err := svc.Retrieve(context.Background(), "matemática", 0); err != nil {
		t.Fatalf("Retrieve returned error: %v", err)
	}
	if repo.gotLimit != DefaultRetrievalLimit {
		t.Fatalf("expected default limit %d, got %d", DefaultRetrievalLimit, repo.gotLimit)
	}
}

func TestRetrieveZeroMatchesIsSuccess(t *testing.T) {
	t.Parallel()

	repo := &fakeQuestionRepo{}
	svc := NewRetrievalService(nil, testLogger(), repo, nil, nil)

	result, err := svc.Retrieve(context.Background(), "tópico inexistente", 3)
	if err != nil {
		t.Fatalf("zero matches must not be an error: %v", err)
	}
	if result.Count != 0 || len(result.Questions) != 0 {
		t.Fatalf("expected empty result, got %+v", result)
	}
	if result.Message != "Nenhuma questão encontrada sobre este tópico no momento." {
		t.Fatalf("unexpected message %q", result.Message)
	}
	if repo.hydrateCalls != 0 {
		t.Fatal("hydration must be skipped when search matches nothing")
	}
}

func TestRetrieveSearchErrorFailsRequest(t *testing.T) {
	t.Parallel()

	repo := &fakeQuestionRepo{searchErr: fmt.Errorf("index offline")}
	svc := NewRetrievalService(nil, testLogger(), repo, nil, nil)

	if _, err := svc.Retrieve(context.Background(), "matemática", 3); err == nil {
		t.Fatal("search failure must fail the request, not fall back")
	}
	if repo.hydrateCalls != 0 {
		t.Fatal("hydration must not run after a search failure")
	}
}

func TestRetrieveHydratesAndResolvesImageURLs(t *testing.T) {
	t.Parallel()

	stemImage := "questions/q1/stem.png"
	choiceImage := "questions/q1/a.png"
	qID := uuid.New()
	repo := &fakeQuestionRepo{
		ids: []uuid.UUID{qID},
		questions: []*types.Question{{
			ID:            qID,
			Stem:          "Qual é a capital do Brasil?",
			StemImagePath: &stemImage,
			Type:          types.QuestionTypeMultipleSingle,
			CreatedAt:     time.Now().UTC(),
			Choices: []types.Choice{
				{ID: uuid.New(), Label: "A", Content: "Brasília", ImagePath: &choiceImage, IsCorrect: true, Position: 1},
				{ID: uuid.New(), Label: "B", Content: "Rio de Janeiro", Position: 2},
			},
		}},
	}
	svc := NewRetrievalService(nil, testLogger(), repo, fakeBucket{}, nil)

	result, err := svc.Retrieve(context.Background(), "capital", 3)
	if err != nil {
		t.Fatalf("Retrieve returned error: %v", err)
	}
	if result.Count != 1 || len(result.Questions) != 1 {
		t.Fatalf("expected one question, got %+v", result)
	}
	q := result.Questions[0]
	if q.StemImageURL != "https://cdn.test/"+stemImage {
		t.Fatalf("stem image key not resolved, got %q", q.StemImageURL)
	}
	if len(q.Choices) != 2 {
		t.Fatalf("expected two choices, got %d", len(q.Choices))
	}
	if q.Choices[0].ImageURL != "https://cdn.test/"+choiceImage {
		t.Fatalf("choice image key not resolved, got %q", q.Choices[0].ImageURL)
	}
	if q.Choices[1].ImageURL != "" {
		t.Fatalf("choice without image must have empty URL, got %q", q.Choices[1].ImageURL)
	}
	if len(repo.gotIDs) != 1 || repo.gotIDs[0] != qID {
		t.Fatalf("hydration must receive the searched ids, got %v", repo.gotIDs)
	}
}

func TestRetrieveWithoutBucketLeavesURLsEmpty(t *testing.T) {
	t.Parallel()

	stemImage := "questions/q1/stem.png"
	qID := uuid.New()
	repo := &fakeQuestionRepo{
		ids: []uuid.UUID{qID},
		questions: []*types.Question{{
			ID:            qID,
			Stem:          "enunciado",
			StemImagePath: &stemImage,
			Type:          types.QuestionTypeOpen,
		}},
	}
	svc := NewRetrievalService(nil, testLogger(), repo, nil, nil)

	result, err := svc.Retrieve(context.Background(), "enunciado", 3)
	if err != nil {
		t.Fatalf("Retrieve returned error: %v", err)
	}
	if result.Questions[0].StemImageURL != "" {
		t.Fatalf("no bucket means no URL, got %q", result.Questions[0].StemImageURL)
	}
}

func TestRetrieveUsesCache(t *testing.T) {
	t.Parallel()

	qID := uuid.New()
	repo := &fakeQuestionRepo{
		ids:       []uuid.UUID{qID},
		questions: []*types.Question{{ID: qID, Stem: "enunciado", Type: types.QuestionTypeOpen}},
	}
	cache := newFakeCache()
	svc := NewRetrievalService(nil, testLogger(), repo, nil, cache)

	first, err := svc.Retrieve(context.Background(), "enunciado", 3)
	if err != nil {
		t.Fatalf("Retrieve returned error: %v", err)
	}
	if cache.setCalls != 1 {
		t.Fatalf("expected result to be cached, set calls = %d", cache.setCalls)
	}

	second, err := svc.Retrieve(context.Background(), "enunciado", 3)
	if err != nil {
		t.Fatalf("cached Retrieve returned error: %v", err)
	}
	if repo.searchCalls != 1 {
		t.Fatalf("second call must be served from cache, search calls = %d", repo.searchCalls)
	}

	a, _ := json.Marshal(first)
	b, _ := json.Marshal(second)
	if string(a) != string(b) {
		t.Fatalf("cached result differs:\n%s\n%s", a, b)
	}
}
