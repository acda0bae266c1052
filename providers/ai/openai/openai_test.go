package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kuanpern/lg-utils/providers/ai"
)

func TestSendMessage(t *testing.T) {
	var gotAuth string
	var gotPayload chatCompletionRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotPayload); err != nil {
			t.Errorf("decoding request payload: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":    "chatcmpl-1",
			"model": "gpt-4o-mini",
			"choices": []map[string]any{
				{
					"message":       map[string]any{"role": "assistant", "content": "title: A"},
					"finish_reason": "stop",
				},
			},
			"usage": map[string]any{"prompt_tokens": 12, "completion_tokens": 4, "total_tokens": 16},
		})
	}))
	defer server.Close()

	provider := New().WithAPIKey("test-key").WithBaseURL(server.URL)
	response, err := provider.SendMessage(context.Background(), ai.ChatRequest{
		Messages: []ai.Message{
			{Role: ai.RoleSystem, Content: "be terse"},
			{Role: ai.RoleUser, Content: "name a recipe"},
		},
	})
	if err != nil {
		t.Fatalf("SendMessage() error = %v", err)
	}

	if gotAuth != "Bearer test-key" {
		t.Errorf("Authorization = %q, want Bearer test-key", gotAuth)
	}
	if gotPayload.Model != defaultModel {
		t.Errorf("request model = %q, want the provider default %q", gotPayload.Model, defaultModel)
	}
	if len(gotPayload.Messages) != 2 || gotPayload.Messages[0].Role != "system" {
		t.Errorf("request messages = %+v, want both roles forwarded", gotPayload.Messages)
	}
	if response.Content != "title: A" {
		t.Errorf("Content = %q, want title: A", response.Content)
	}
	if response.FinishReason != "stop" {
		t.Errorf("FinishReason = %q, want stop", response.FinishReason)
	}
	if response.Usage == nil || response.Usage.TotalTokens != 16 {
		t.Errorf("Usage = %+v, want total 16", response.Usage)
	}
}

func TestSendMessage_RequestModelWins(t *testing.T) {
	var gotPayload chatCompletionRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&gotPayload)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{"message": map[string]any{"content": "ok"}}},
		})
	}))
	defer server.Close()

	provider := New().WithAPIKey("k").WithBaseURL(server.URL).WithModel("fallback-model")
	_, err := provider.SendMessage(context.Background(), ai.ChatRequest{Model: "gpt-4.1"})
	if err != nil {
		t.Fatalf("SendMessage() error = %v", err)
	}
	if gotPayload.Model != "gpt-4.1" {
		t.Errorf("request model = %q, want gpt-4.1", gotPayload.Model)
	}
}

func TestSendMessage_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "rate limited"}`, http.StatusTooManyRequests)
	}))
	defer server.Close()

	provider := New().WithAPIKey("k").WithBaseURL(server.URL)
	_, err := provider.SendMessage(context.Background(), ai.ChatRequest{})
	if err == nil {
		t.Fatal("SendMessage() error = nil, want status error")
	}
	if !strings.Contains(err.Error(), "429") {
		t.Errorf("SendMessage() error = %v, want status 429 in message", err)
	}
	if !strings.Contains(err.Error(), "rate limited") {
		t.Errorf("SendMessage() error = %v, want response body excerpt", err)
	}
}

func TestSendMessage_NoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	}))
	defer server.Close()

	provider := New().WithAPIKey("k").WithBaseURL(server.URL)
	_, err := provider.SendMessage(context.Background(), ai.ChatRequest{})
	if err == nil || !strings.Contains(err.Error(), "no choices") {
		t.Errorf("SendMessage() error = %v, want no-choices error", err)
	}
}
