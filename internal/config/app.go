package config

import (
	"context"

	"github.com/caarlos0/env/v11"

	"github.com/Nikhil-Sawant-141/ai-survey-copilot/pkg/log"
)

type AppConfig struct {
	Env   string `env:"APP_ENV" envDefault:"development"`
	Debug bool   `env:"DEBUG" envDefault:"false"`

	HTTPAddr string `env:"HTTP_ADDR" envDefault:":8000"`

	// DatabasePath is the SQLite file holding surveys, responses, insights
	// and the agent interaction log.
	DatabasePath string `env:"DATABASE_PATH" envDefault:"data/copilot.db"`

	// WorkerEnabled runs the task worker inside the API process. Disable to
	// run a dedicated worker deployment.
	WorkerEnabled bool `env:"WORKER_ENABLED" envDefault:"true"`
}

func NewAppConfig(ctx context.Context) *AppConfig {
	c := &AppConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse app config")
	}
	return c
}

func (c AppConfig) IsProduction() bool {
	return c.Env == "production"
}
