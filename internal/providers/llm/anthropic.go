package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/Nikhil-Sawant-141/ai-survey-copilot/internal/core"
)

const anthropicVersion = "2023-06-01"

// Anthropic completes against the messages API. Structured output uses a
// forced tool; there is no native JSON response mode, so JSONOnly requests
// rely on the prompt and on downstream parsing.
type Anthropic struct {
	baseProvider
}

var _ core.Completer = (*Anthropic)(nil)

func NewAnthropic(apiKey, model string) *Anthropic {
	return &Anthropic{
		baseProvider: newBaseProvider("https://api.anthropic.com", apiKey, model),
	}
}

func (a *Anthropic) Complete(ctx context.Context, req core.CompletionRequest) (*core.CompletionResult, error) {
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = 4096
	}

	payload := map[string]any{
		"model":      a.model,
		"max_tokens": maxTokens,
		"messages": []map[string]string{
			{"role": "user", "content": req.User},
		},
	}
	if req.System != "" {
		payload["system"] = req.System
	}
	if req.Temperature > 0 {
		payload["temperature"] = req.Temperature
	}
	if req.Tool != nil {
		payload["tools"] = []map[string]any{{
			"name":         req.Tool.Name,
			"description":  req.Tool.Description,
			"input_schema": req.Tool.Schema,
		}}
		payload["tool_choice"] = map[string]string{
			"type": "tool",
			"name": req.Tool.Name,
		}
	}

	headers := map[string]string{
		"x-api-key":         a.apiKey,
		"anthropic-version": anthropicVersion,
	}

	resp, err := a.doRequest(ctx, http.MethodPost, "/v1/messages", payload, headers)
	if err != nil {
		return nil, err
	}
	data, err := readBody(resp)
	if err != nil {
		return nil, err
	}

	return parseAnthropicCompletion(data, req.Tool)
}

func parseAnthropicCompletion(data []byte, tool *core.ToolSpec) (*core.CompletionResult, error) {
	var result struct {
		Content []struct {
			Type  string          `json:"type"`
			Text  string          `json:"text"`
			Input json.RawMessage `json:"input"`
		} `json:"content"`
		Usage struct {
			InputTokens  int `json:"input_tokens"`
			OutputTokens int `json:"output_tokens"`
		} `json:"usage"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", core.ErrMalformedResponse, err)
	}

	out := &core.CompletionResult{
		TokensUsed: result.Usage.InputTokens + result.Usage.OutputTokens,
	}

	if tool != nil {
		for _, c := range result.Content {
			if c.Type == "tool_use" {
				out.ToolArgs = c.Input
				return out, nil
			}
		}
		return nil, fmt.Errorf("%w: no tool_use block for %s", core.ErrMalformedResponse, tool.Name)
	}

	var text string
	for _, c := range result.Content {
		if c.Type == "text" {
			text += c.Text
		}
	}
	if text == "" {
		return nil, fmt.Errorf("%w: no text blocks", core.ErrMalformedResponse)
	}
	out.Text = text
	return out, nil
}
