package llm

import (
	"context"
	"fmt"

	"github.com/Nikhil-Sawant-141/ai-survey-copilot/internal/config"
	"github.com/Nikhil-Sawant-141/ai-survey-copilot/internal/core"
	"github.com/Nikhil-Sawant-141/ai-survey-copilot/pkg/log"
)

// ForAgent creates the Completer configured for one agent kind. Each agent
// can point at a different provider so the heavier design work and the
// high-volume clarification traffic are billed and tuned independently.
func ForAgent(ctx context.Context, agent string, cfg *config.LLMConfig) (core.Completer, error) {
	var provider string
	switch agent {
	case core.AgentDesign:
		provider = cfg.DesignProvider
	case core.AgentAttempt:
		provider = cfg.AttemptProvider
	case core.AgentInsight:
		provider = cfg.InsightProvider
	default:
		return nil, fmt.Errorf("unknown agent kind: %s", agent)
	}

	switch provider {
	case "openai":
		log.FromCtx(ctx).Info().
			Str("agent", agent).
			Str("provider", provider).
			Str("model", cfg.OpenAIModel).
			Msg("starting llm provider")
		return NewOpenAI(cfg.OpenAIAPIKey, cfg.OpenAIModel), nil
	case "anthropic":
		log.FromCtx(ctx).Info().
			Str("agent", agent).
			Str("provider", provider).
			Str("model", cfg.AnthropicModel).
			Msg("starting llm provider")
		return NewAnthropic(cfg.AnthropicAPIKey, cfg.AnthropicModel), nil
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", provider)
	}
}
