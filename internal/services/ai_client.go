package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/concursoprep/backend/internal/logger"
	"github.com/concursoprep/backend/internal/utils"
)

// AIClient is the injected capability for the upstream language-model
// gateway. Every operation sends a full message list and gets back one
// assistant turn; there is no streaming and no server-side session.
type AIClient interface {
	Chat(ctx context.Context, messages []AIMessage) (string, error)
}

type AIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Upstream failure classes. Handlers map these to 429/402/500 so the client
// can distinguish "wait and retry" from "add credits" from a dead end.
type UpstreamErrorKind int

const (
	UpstreamGeneric UpstreamErrorKind = iota
	UpstreamRateLimited
	UpstreamQuotaExhausted
)

type UpstreamError struct {
	Kind       UpstreamErrorKind
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("ai gateway http %d: %s", e.StatusCode, e.Body)
}

func IsRateLimited(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue) && ue.Kind == UpstreamRateLimited
}

func IsQuotaExhausted(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue) && ue.Kind == UpstreamQuotaExhausted
}

type aiClient struct {
	log        *logger.Logger
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

func NewAIClient(log *logger.Logger) (AIClient, error) {
	serviceLog := log.With("service", "AIClient")

	apiKey := utils.GetEnv("LLM_API_KEY", "", log)
	if apiKey == "" {
		return nil, fmt.Errorf("missing LLM_API_KEY")
	}
	baseURL := utils.GetEnv("LLM_BASE_URL", "https://ai.gateway.lovable.dev", log)
	model := utils.GetEnv("LLM_MODEL", "google/gemini-2.5-flash", log)
	timeoutSec := utils.GetEnvAsInt("LLM_TIMEOUT_SECONDS", 60, log)

	return &aiClient{
		log:        serviceLog,
		baseURL:    baseURL,
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: time.Duration(timeoutSec) * time.Second},
	}, nil
}

type chatCompletionRequest struct {
	Model    string      `json:"model"`
	Messages []AIMessage `json:"messages"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Chat performs exactly one upstream call. No automatic retries: the caller
// surfaces the classified failure and retry is always user-initiated.
func (c *aiClient) Chat(ctx context.Context, messages []AIMessage) (string, error) {
	if len(messages) == 0 {
		return "", fmt.Errorf("messages required")
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(chatCompletionRequest{
		Model:    c.model,
		Messages: messages,
	}); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat/completions", &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &UpstreamError{Kind: UpstreamGeneric, StatusCode: 0, Body: err.Error()}
	}
	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return "", &UpstreamError{Kind: UpstreamGeneric, StatusCode: resp.StatusCode, Body: readErr.Error()}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		kind := UpstreamGeneric
		switch resp.StatusCode {
		case http.StatusTooManyRequests:
			kind = UpstreamRateLimited
		case http.StatusPaymentRequired:
			kind = UpstreamQuotaExhausted
		}
		if kind == UpstreamGeneric {
			c.log.Error("AI gateway returned non-2xx", "status", resp.StatusCode, "body", string(raw))
		}
		return "", &UpstreamError{Kind: kind, StatusCode: resp.StatusCode, Body: string(raw)}
	}

	var out chatCompletionResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		c.log.Error("AI gateway returned malformed body", "status", resp.StatusCode, "body", string(raw))
		return "", &UpstreamError{Kind: UpstreamGeneric, StatusCode: resp.StatusCode, Body: string(raw)}
	}
	if len(out.Choices) == 0 || out.Choices[0].Message.Content == "" {
		c.log.Error("AI gateway response missing content", "status", resp.StatusCode, "body", string(raw))
		return "", &UpstreamError{Kind: UpstreamGeneric, StatusCode: resp.StatusCode, Body: string(raw)}
	}
	return out.Choices[0].Message.Content, nil
}
