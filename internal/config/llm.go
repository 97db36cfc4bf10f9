package config

import (
	"context"

	"github.com/caarlos0/env/v11"

	"github.com/Nikhil-Sawant-141/ai-survey-copilot/pkg/log"
)

// LLMConfig selects a provider per agent. The design and insight agents
// default to Anthropic, the attempt agent to OpenAI; any agent can be
// repointed via env without code changes.
type LLMConfig struct {
	OpenAIAPIKey    string `env:"OPENAI_API_KEY"`
	OpenAIModel     string `env:"OPENAI_LLM_MODEL" envDefault:"gpt-4o"`
	AnthropicAPIKey string `env:"ANTHROPIC_API_KEY"`
	AnthropicModel  string `env:"ANTHROPIC_MODEL" envDefault:"claude-3-5-sonnet-20241022"`

	EmbeddingModel string `env:"OPENAI_EMBEDDING_MODEL" envDefault:"text-embedding-3-small"`

	DesignProvider  string `env:"DESIGN_LLM_PROVIDER" envDefault:"anthropic"`
	AttemptProvider string `env:"ATTEMPT_LLM_PROVIDER" envDefault:"openai"`
	InsightProvider string `env:"INSIGHT_LLM_PROVIDER" envDefault:"anthropic"`
}

func NewLLMConfig(ctx context.Context) *LLMConfig {
	c := &LLMConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse llm config")
	}
	return c
}
