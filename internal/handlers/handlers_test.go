package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/concursoprep/backend/internal/logger"
	"github.com/concursoprep/backend/internal/services"
)

func testLogger() *logger.Logger {
	return &logger.Logger{SugaredLogger: zap.NewNop().Sugar()}
}

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func postJSON(t *testing.T, router *gin.Engine, path string, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var envelope struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("error body is not the flat envelope: %v (%s)", err, w.Body.String())
	}
	return envelope.Error
}

type stubGenerator struct {
	result string
	err    error
}

func (s stubGenerator) Generate(context.Context, string) (string, error) {
	return s.result, s.err
}

type stubRefiner struct {
	result string
	err    error
}

func (s stubRefiner) NextTurn(context.Context, []services.AIMessage) (string, error) {
	return s.result, s.err
}

type stubExplainer struct {
	explanation string
	err         error
}

func (s stubExplainer) Explain(_ context.Context, stem, answer, question string) (string, error) {
	if stem == "" || answer == "" || question == "" {
		return "", services.ErrMissingFields
	}
	return s.explanation, s.err
}

type stubRetriever struct {
	result *services.RetrievalResult
	err    error
}

func (s stubRetriever) Retrieve(context.Context, string, int) (*services.RetrievalResult, error) {
	return s.result, s.err
}

func TestSearchQuestionsValidatesQuery(t *testing.T) {
	t.Parallel()

	router := newTestRouter()
	router.POST("/search-questions", NewSearchHandler(testLogger(), stubGenerator{}).SearchQuestions)

	for _, body := range []string{`{}`, `{"query":""}`, `not json`} {
		w := postJSON(t, router, "/search-questions", body)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("body %q: expected 400, got %d", body, w.Code)
		}
		if msg := decodeError(t, w); msg != "Query é obrigatória" {
			t.Fatalf("unexpected error message %q", msg)
		}
	}
}

func TestSearchQuestionsSuccess(t *testing.T) {
	t.Parallel()

	router := newTestRouter()
	router.POST("/search-questions", NewSearchHandler(testLogger(), stubGenerator{result: "Questão 1..."}).SearchQuestions)

	w := postJSON(t, router, "/search-questions", `{"query":"direito administrativo"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Result string `json:"result"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if resp.Result != "Questão 1..." {
		t.Fatalf("unexpected result %q", resp.Result)
	}
}

func TestUpstreamErrorMapping(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{
			name:       "rate limited",
			err:        &services.UpstreamError{Kind: services.UpstreamRateLimited, StatusCode: 429},
			wantStatus: http.StatusTooManyRequests,
			wantMsg:    "Limite de requisições excedido. Tente novamente mais tarde.",
		},
		{
			name:       "quota exhausted",
			err:        &services.UpstreamError{Kind: services.UpstreamQuotaExhausted, StatusCode: 402},
			wantStatus: http.StatusPaymentRequired,
			wantMsg:    "Créditos insuficientes. Por favor, adicione créditos ao seu workspace.",
		},
		{
			name:       "generic",
			err:        &services.UpstreamError{Kind: services.UpstreamGeneric, StatusCode: 500},
			wantStatus: http.StatusInternalServerError,
			wantMsg:    "Erro ao processar a busca",
		},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			router := newTestRouter()
			router.POST("/search-questions", NewSearchHandler(testLogger(), stubGenerator{err: tc.err}).SearchQuestions)

			w := postJSON(t, router, "/search-questions", `{"query":"português"}`)
			if w.Code != tc.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tc.wantStatus, w.Code, w.Body.String())
			}
			if msg := decodeError(t, w); msg != tc.wantMsg {
				t.Fatalf("unexpected error message %q", msg)
			}
		})
	}
}

func TestRefineSearchValidatesMessages(t *testing.T) {
	t.Parallel()

	router := newTestRouter()
	router.POST("/refine-search", NewRefineHandler(testLogger(), stubRefiner{}).RefineSearch)

	for _, body := range []string{`{}`, `{"messages":[]}`} {
		w := postJSON(t, router, "/refine-search", body)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("body %q: expected 400, got %d", body, w.Code)
		}
		if msg := decodeError(t, w); msg != "Messages array é obrigatória" {
			t.Fatalf("unexpected error message %q", msg)
		}
	}
}

func TestRefineSearchMapsUpstreamErrors(t *testing.T) {
	t.Parallel()

	router := newTestRouter()
	refineErr := &services.UpstreamError{Kind: services.UpstreamRateLimited, StatusCode: 429}
	router.POST("/refine-search", NewRefineHandler(testLogger(), stubRefiner{err: refineErr}).RefineSearch)

	w := postJSON(t, router, "/refine-search", `{"messages":[{"role":"user","content":"Tópico inicial: direito"}]}`)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", w.Code)
	}
}

func TestRefineSearchSuccess(t *testing.T) {
	t.Parallel()

	router := newTestRouter()
	router.POST("/refine-search", NewRefineHandler(testLogger(), stubRefiner{result: "Para refinar sua busca..."}).RefineSearch)

	w := postJSON(t, router, "/refine-search", `{"messages":[{"role":"user","content":"Tópico inicial: direito"}]}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Result string `json:"result"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if resp.Result != "Para refinar sua busca..." {
		t.Fatalf("unexpected result %q", resp.Result)
	}
}

func TestParseRefinement(t *testing.T) {
	t.Parallel()

	router := newTestRouter()
	router.POST("/refine-search/parse", NewRefineHandler(testLogger(), stubRefiner{}).ParseRefinement)

	w := postJSON(t, router, "/refine-search/parse", `{"content":"REFINAMENTO_COMPLETO:\n- Banca: FGV\n- Cargo: qualquer"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Complete bool            `json:"complete"`
		Facets   services.Facets `json:"facets"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if !resp.Complete {
		t.Fatal("expected complete=true")
	}
	if resp.Facets.Banca == nil || *resp.Facets.Banca != "FGV" {
		t.Fatalf("banca not parsed: %+v", resp.Facets)
	}
	if resp.Facets.Cargo != nil {
		t.Fatalf("cargo 'qualquer' must be unset: %+v", resp.Facets)
	}

	if w := postJSON(t, router, "/refine-search/parse", `{"content":""}`); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty content, got %d", w.Code)
	}
}

func TestExplainQuestionValidation(t *testing.T) {
	t.Parallel()

	router := newTestRouter()
	router.POST("/explain-question", NewExplainHandler(testLogger(), stubExplainer{explanation: "Porque..."}).ExplainQuestion)

	w := postJSON(t, router, "/explain-question", `{"questionStem":"enunciado","correctAnswer":"","userQuestion":"por quê?"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing field, got %d", w.Code)
	}
	if msg := decodeError(t, w); msg != "Dados incompletos" {
		t.Fatalf("unexpected error message %q", msg)
	}
}

func TestExplainQuestionSuccess(t *testing.T) {
	t.Parallel()

	router := newTestRouter()
	router.POST("/explain-question", NewExplainHandler(testLogger(), stubExplainer{explanation: "Porque Brasília é a capital."}).ExplainQuestion)

	w := postJSON(t, router, "/explain-question", `{"questionStem":"Qual é a capital?","correctAnswer":"Brasília","userQuestion":"Por quê?"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Explanation string `json:"explanation"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if resp.Explanation != "Porque Brasília é a capital." {
		t.Fatalf("unexpected explanation %q", resp.Explanation)
	}
}

func TestExplainQuestionMapsQuotaExhausted(t *testing.T) {
	t.Parallel()

	router := newTestRouter()
	quotaErr := &services.UpstreamError{Kind: services.UpstreamQuotaExhausted, StatusCode: 402}
	router.POST("/explain-question", NewExplainHandler(testLogger(), stubExplainer{err: quotaErr}).ExplainQuestion)

	w := postJSON(t, router, "/explain-question", `{"questionStem":"enunciado","correctAnswer":"B","userQuestion":"por quê?"}`)
	if w.Code != http.StatusPaymentRequired {
		t.Fatalf("expected 402, got %d", w.Code)
	}
	if msg := decodeError(t, w); msg != "Créditos insuficientes. Por favor, adicione créditos ao seu workspace." {
		t.Fatalf("unexpected error message %q", msg)
	}
}

func TestFetchQuestionsValidatesQuery(t *testing.T) {
	t.Parallel()

	router := newTestRouter()
	router.POST("/fetch-questions", NewQuestionsHandler(testLogger(), stubRetriever{}).FetchQuestions)

	w := postJSON(t, router, "/fetch-questions", `{"limit":3}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if msg := decodeError(t, w); msg != "Query é obrigatória" {
		t.Fatalf("unexpected error message %q", msg)
	}
}

func TestFetchQuestionsZeroMatches(t *testing.T) {
	t.Parallel()

	router := newTestRouter()
	result := &services.RetrievalResult{
		Questions: []services.QuestionResult{},
		Message:   "Nenhuma questão encontrada sobre este tópico no momento.",
	}
	router.POST("/fetch-questions", NewQuestionsHandler(testLogger(), stubRetriever{result: result}).FetchQuestions)

	w := postJSON(t, router, "/fetch-questions", `{"query":"tópico raro"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("zero matches must be 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp services.RetrievalResult
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if resp.Message == "" || len(resp.Questions) != 0 {
		t.Fatalf("unexpected body %s", w.Body.String())
	}
}

func TestFetchQuestionsDatabaseFailure(t *testing.T) {
	t.Parallel()

	router := newTestRouter()
	router.POST("/fetch-questions", NewQuestionsHandler(testLogger(), stubRetriever{err: context.DeadlineExceeded}).FetchQuestions)

	w := postJSON(t, router, "/fetch-questions", `{"query":"matemática"}`)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	if msg := decodeError(t, w); msg != "Erro ao buscar questões" {
		t.Fatalf("unexpected error message %q", msg)
	}
}

func TestHealthCheck(t *testing.T) {
	t.Parallel()

	router := newTestRouter()
	router.GET("/healthcheck", HealthCheck)

	req := httptest.NewRequest(http.MethodGet, "/healthcheck", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}
