package config

import (
	"context"

	"github.com/caarlos0/env/v11"

	"github.com/Nikhil-Sawant-141/ai-survey-copilot/pkg/log"
)

// RateLimitConfig holds the two active quota policies: design-type actions
// per admin per hour, and clarifications per doctor per survey per day.
type RateLimitConfig struct {
	SuggestionsPerHour      int `env:"RATE_LIMIT_AI_SUGGESTIONS_PER_HOUR" envDefault:"100"`
	ClarificationsPerSurvey int `env:"RATE_LIMIT_CLARIFICATION_PER_SURVEY" envDefault:"10"`
}

func NewRateLimitConfig(ctx context.Context) *RateLimitConfig {
	c := &RateLimitConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse rate limit config")
	}
	return c
}
