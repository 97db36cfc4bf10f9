package config

import (
	"context"

	"github.com/caarlos0/env/v11"

	"github.com/Nikhil-Sawant-141/ai-survey-copilot/pkg/log"
)

// RedisConfig carries two URLs: StateURL backs quota counters, caches and
// sessions; BrokerURL backs the task queue. They default to separate logical
// databases on one instance.
type RedisConfig struct {
	StateURL  string `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`
	BrokerURL string `env:"TASK_BROKER_URL" envDefault:"redis://localhost:6379/1"`
}

func NewRedisConfig(ctx context.Context) *RedisConfig {
	c := &RedisConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse redis config")
	}
	return c
}
