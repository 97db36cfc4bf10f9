package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/Nikhil-Sawant-141/ai-survey-copilot/internal/core"
)

// OpenAI completes against the chat completions API. Structured output uses
// a forced function call; JSONOnly requests use the json_object response
// format.
type OpenAI struct {
	baseProvider
}

var _ core.Completer = (*OpenAI)(nil)

func NewOpenAI(apiKey, model string) *OpenAI {
	return &OpenAI{
		baseProvider: newBaseProvider("https://api.openai.com", apiKey, model),
	}
}

func (o *OpenAI) Complete(ctx context.Context, req core.CompletionRequest) (*core.CompletionResult, error) {
	type message struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}

	var messages []message
	if req.System != "" {
		messages = append(messages, message{Role: "system", Content: req.System})
	}
	messages = append(messages, message{Role: "user", Content: req.User})

	payload := map[string]any{
		"model":    o.model,
		"messages": messages,
	}
	if req.Temperature > 0 {
		payload["temperature"] = req.Temperature
	}
	if req.MaxTokens > 0 {
		payload["max_tokens"] = req.MaxTokens
	}

	switch {
	case req.Tool != nil:
		payload["tools"] = []map[string]any{{
			"type": "function",
			"function": map[string]any{
				"name":        req.Tool.Name,
				"description": req.Tool.Description,
				"parameters":  req.Tool.Schema,
			},
		}}
		payload["tool_choice"] = map[string]any{
			"type":     "function",
			"function": map[string]string{"name": req.Tool.Name},
		}
	case req.JSONOnly:
		payload["response_format"] = map[string]string{"type": "json_object"}
	}

	headers := map[string]string{
		"Authorization": "Bearer " + o.apiKey,
	}

	resp, err := o.doRequest(ctx, http.MethodPost, "/v1/chat/completions", payload, headers)
	if err != nil {
		return nil, err
	}
	data, err := readBody(resp)
	if err != nil {
		return nil, err
	}

	return parseOpenAICompletion(data, req.Tool)
}

func parseOpenAICompletion(data []byte, tool *core.ToolSpec) (*core.CompletionResult, error) {
	var result struct {
		Choices []struct {
			Message struct {
				Content   string `json:"content"`
				ToolCalls []struct {
					Function struct {
						Name      string `json:"name"`
						Arguments string `json:"arguments"`
					} `json:"function"`
				} `json:"tool_calls"`
			} `json:"message"`
		} `json:"choices"`
		Usage struct {
			TotalTokens int `json:"total_tokens"`
		} `json:"usage"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", core.ErrMalformedResponse, err)
	}
	if len(result.Choices) == 0 {
		return nil, fmt.Errorf("%w: empty choices", core.ErrMalformedResponse)
	}

	msg := result.Choices[0].Message
	out := &core.CompletionResult{TokensUsed: result.Usage.TotalTokens}

	if tool != nil {
		if len(msg.ToolCalls) == 0 {
			return nil, fmt.Errorf("%w: no tool call for %s", core.ErrMalformedResponse, tool.Name)
		}
		// Arguments arrive as a JSON-encoded string, not an object.
		args := msg.ToolCalls[0].Function.Arguments
		if !json.Valid([]byte(args)) {
			return nil, fmt.Errorf("%w: tool arguments for %s are not valid JSON", core.ErrMalformedResponse, tool.Name)
		}
		out.ToolArgs = json.RawMessage(args)
		return out, nil
	}

	out.Text = msg.Content
	return out, nil
}
