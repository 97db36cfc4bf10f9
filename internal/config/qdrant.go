package config

import (
	"context"

	"github.com/caarlos0/env/v11"

	"github.com/Nikhil-Sawant-141/ai-survey-copilot/pkg/log"
)

type QdrantConfig struct {
	Host   string `env:"QDRANT_HOST" envDefault:"localhost"`
	Port   int    `env:"QDRANT_PORT" envDefault:"6334"`
	APIKey string `env:"QDRANT_API_KEY"`
	UseTLS bool   `env:"QDRANT_USE_TLS" envDefault:"false"`

	GuidelinesCollection string `env:"QDRANT_COLLECTION_GUIDELINES" envDefault:"survey-guidelines"`
	TemplatesCollection  string `env:"QDRANT_COLLECTION_TEMPLATES" envDefault:"survey-templates"`
}

func NewQdrantConfig(ctx context.Context) *QdrantConfig {
	c := &QdrantConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse qdrant config")
	}
	return c
}
