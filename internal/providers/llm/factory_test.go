package llm

import (
	"context"
	"testing"

	"github.com/Nikhil-Sawant-141/ai-survey-copilot/internal/config"
	"github.com/Nikhil-Sawant-141/ai-survey-copilot/internal/core"
)

func TestForAgent(t *testing.T) {
	ctx := context.Background()
	cfg := &config.LLMConfig{
		OpenAIAPIKey:    "ok",
		OpenAIModel:     "gpt-4o",
		AnthropicAPIKey: "ak",
		AnthropicModel:  "claude-3-5-sonnet-20241022",
		DesignProvider:  "anthropic",
		AttemptProvider: "openai",
		InsightProvider: "anthropic",
	}

	design, err := ForAgent(ctx, core.AgentDesign, cfg)
	if err != nil {
		t.Fatalf("design: %v", err)
	}
	if _, ok := design.(*Anthropic); !ok {
		t.Errorf("design completer = %T, want *Anthropic", design)
	}

	attempt, err := ForAgent(ctx, core.AgentAttempt, cfg)
	if err != nil {
		t.Fatalf("attempt: %v", err)
	}
	if _, ok := attempt.(*OpenAI); !ok {
		t.Errorf("attempt completer = %T, want *OpenAI", attempt)
	}

	if _, err := ForAgent(ctx, "unknown", cfg); err == nil {
		t.Error("expected error for unknown agent kind")
	}

	cfg.InsightProvider = "bedrock"
	if _, err := ForAgent(ctx, core.AgentInsight, cfg); err == nil {
		t.Error("expected error for unknown provider")
	}
}
