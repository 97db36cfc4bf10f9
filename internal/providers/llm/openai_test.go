package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Nikhil-Sawant-141/ai-survey-copilot/internal/core"
)

func TestOpenAIComplete_ForcedToolCall(t *testing.T) {
	var gotPayload map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("unexpected auth header %q", r.Header.Get("Authorization"))
		}
		if err := json.NewDecoder(r.Body).Decode(&gotPayload); err != nil {
			t.Fatalf("decode payload: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"choices": [{"message": {"tool_calls": [{"function": {"name": "quality_check", "arguments": "{\"score\": 0.82}"}}]}}],
			"usage": {"total_tokens": 321}
		}`))
	}))
	defer srv.Close()

	o := &OpenAI{baseProvider: newBaseProvider(srv.URL, "test-key", "gpt-4o")}

	res, err := o.Complete(context.Background(), core.CompletionRequest{
		System: "You evaluate surveys.",
		User:   "Check this survey.",
		Tool: &core.ToolSpec{
			Name:   "quality_check",
			Schema: json.RawMessage(`{"type": "object"}`),
		},
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}

	if string(res.ToolArgs) != `{"score": 0.82}` {
		t.Errorf("tool args = %s", res.ToolArgs)
	}
	if res.TokensUsed != 321 {
		t.Errorf("tokens = %d, want 321", res.TokensUsed)
	}

	choice, ok := gotPayload["tool_choice"].(map[string]any)
	if !ok {
		t.Fatalf("tool_choice missing from payload: %v", gotPayload)
	}
	if choice["type"] != "function" {
		t.Errorf("tool_choice type = %v", choice["type"])
	}
}

func TestOpenAIComplete_JSONMode(t *testing.T) {
	var gotPayload map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotPayload)
		w.Write([]byte(`{
			"choices": [{"message": {"content": "{\"themes\": []}"}}],
			"usage": {"total_tokens": 40}
		}`))
	}))
	defer srv.Close()

	o := &OpenAI{baseProvider: newBaseProvider(srv.URL, "test-key", "gpt-4o")}

	res, err := o.Complete(context.Background(), core.CompletionRequest{
		User:     "Summarize.",
		JSONOnly: true,
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if res.Text != `{"themes": []}` {
		t.Errorf("text = %q", res.Text)
	}

	format, ok := gotPayload["response_format"].(map[string]any)
	if !ok || format["type"] != "json_object" {
		t.Errorf("response_format = %v", gotPayload["response_format"])
	}
}

func TestOpenAIComplete_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "overloaded"}`, http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	o := &OpenAI{baseProvider: newBaseProvider(srv.URL, "test-key", "gpt-4o")}

	_, err := o.Complete(context.Background(), core.CompletionRequest{User: "hi"})
	if !errors.Is(err, core.ErrProviderUnavailable) {
		t.Errorf("expected ErrProviderUnavailable, got %v", err)
	}
}

func TestParseOpenAICompletion_Malformed(t *testing.T) {
	tool := &core.ToolSpec{Name: "quality_check"}

	tests := []struct {
		name string
		data string
		tool *core.ToolSpec
	}{
		{"not json", `<html>gateway</html>`, nil},
		{"empty choices", `{"choices": []}`, nil},
		{"missing tool call", `{"choices": [{"message": {"content": "plain text"}}]}`, tool},
		{"invalid tool arguments", `{"choices": [{"message": {"tool_calls": [{"function": {"name": "quality_check", "arguments": "{broken"}}]}}]}`, tool},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseOpenAICompletion([]byte(tt.data), tt.tool)
			if !errors.Is(err, core.ErrMalformedResponse) {
				t.Errorf("expected ErrMalformedResponse, got %v", err)
			}
		})
	}
}
