package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/kuanpern/lg-utils/internal/utils"
	"github.com/kuanpern/lg-utils/providers/ai"
)

const (
	defaultBaseURL = "https://api.openai.com/v1"
	defaultModel   = "gpt-4o-mini"
)

// Provider talks to any OpenAI-compatible chat-completions endpoint. It does
// not retry; transient failures surface as plain errors for the caller's
// retry layer to classify.
type Provider struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

// New creates a Provider configured from the OPENAI_API_KEY environment
// variable, with sensible defaults for everything else.
func New() *Provider {
	return &Provider{
		apiKey:     os.Getenv("OPENAI_API_KEY"),
		baseURL:    defaultBaseURL,
		model:      defaultModel,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// WithAPIKey sets the API key used for authenticating requests.
func (p *Provider) WithAPIKey(apiKey string) *Provider {
	p.apiKey = apiKey
	return p
}

// WithBaseURL overrides the default base URL for API requests.
func (p *Provider) WithBaseURL(baseURL string) *Provider {
	p.baseURL = baseURL
	return p
}

// WithModel sets the default model used when the request does not name one.
func (p *Provider) WithModel(model string) *Provider {
	p.model = model
	return p
}

// WithHTTPClient sets the HTTP client used for outbound requests.
func (p *Provider) WithHTTPClient(httpClient *http.Client) *Provider {
	p.httpClient = httpClient
	return p
}

var _ ai.Provider = (*Provider)(nil)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float32       `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatCompletionResponse struct {
	Id      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Message      chatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Usage *ai.Usage `json:"usage"`
}

// SendMessage posts the request to /chat/completions and decodes the first
// choice into an ai.ChatResponse.
func (p *Provider) SendMessage(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
	model := request.Model
	if model == "" {
		model = p.model
	}

	payload := chatCompletionRequest{
		Model:       model,
		Temperature: request.Temperature,
		MaxTokens:   request.MaxTokens,
	}
	for _, message := range request.Messages {
		payload.Messages = append(payload.Messages, chatMessage{
			Role:    string(message.Role),
			Content: message.Content,
		})
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding chat request: %w", err)
	}

	httpRequest, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building chat request: %w", err)
	}
	httpRequest.Header.Set("Content-Type", "application/json")
	httpRequest.Header.Set("Authorization", "Bearer "+p.apiKey)

	httpResponse, err := p.httpClient.Do(httpRequest)
	if err != nil {
		return nil, fmt.Errorf("sending chat request: %w", err)
	}
	defer httpResponse.Body.Close()

	raw, err := io.ReadAll(httpResponse.Body)
	if err != nil {
		return nil, fmt.Errorf("reading chat response: %w", err)
	}
	if httpResponse.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("chat request failed with status %d: %s",
			httpResponse.StatusCode, utils.TruncateStringDefault(string(raw)))
	}

	var decoded chatCompletionResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("decoding chat response: %w", err)
	}
	if len(decoded.Choices) == 0 {
		return nil, fmt.Errorf("chat response contains no choices")
	}

	choice := decoded.Choices[0]
	return &ai.ChatResponse{
		Id:           decoded.Id,
		Model:        decoded.Model,
		Content:      choice.Message.Content,
		FinishReason: choice.FinishReason,
		Usage:        decoded.Usage,
	}, nil
}
