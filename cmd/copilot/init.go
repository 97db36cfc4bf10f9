package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Nikhil-Sawant-141/ai-survey-copilot/internal/config"
	"github.com/Nikhil-Sawant-141/ai-survey-copilot/pkg/env"
	"github.com/Nikhil-Sawant-141/ai-survey-copilot/pkg/log"
)

var initCmd = &cobra.Command{
	Use:           "init",
	Short:         "Write a starter .env file",
	Long:          `Writes a .env file with the default configuration. Secrets are left as commented placeholders; fill them in before running 'copilot serve'.`,
	SilenceUsage:  true,
	SilenceErrors: false,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		var flushLog func()
		ctx, flushLog = setupLogger(ctx)
		defer flushLog()

		logger := log.FromCtx(ctx)

		if _, err := os.Stat(".env"); err == nil {
			return fmt.Errorf(".env file already exists")
		}

		content, err := starterEnv()
		if err != nil {
			return err
		}

		if err := os.WriteFile(".env", []byte(content), 0600); err != nil {
			return err
		}

		logger.Info().Msg("wrote .env")
		logger.Info().Msg("add your API keys, then run 'copilot serve'")
		return nil
	},
}

// starterEnv marshals each config struct populated with its defaults.
// Empty secrets are skipped by the marshaller, so they are appended as
// commented placeholders instead.
func starterEnv() (string, error) {
	sections := []struct {
		title   string
		cfg     any
		secrets []string
	}{
		{
			title: "Application",
			cfg: &config.AppConfig{
				Env:           "development",
				HTTPAddr:      ":8000",
				DatabasePath:  "data/copilot.db",
				WorkerEnabled: true,
			},
		},
		{
			title: "Redis (state store and task broker)",
			cfg: &config.RedisConfig{
				StateURL:  "redis://localhost:6379/0",
				BrokerURL: "redis://localhost:6379/1",
			},
		},
		{
			title: "LLM providers",
			cfg: &config.LLMConfig{
				OpenAIModel:     "gpt-4o",
				AnthropicModel:  "claude-3-5-sonnet-20241022",
				EmbeddingModel:  "text-embedding-3-small",
				DesignProvider:  "anthropic",
				AttemptProvider: "openai",
				InsightProvider: "anthropic",
			},
			secrets: []string{"OPENAI_API_KEY", "ANTHROPIC_API_KEY"},
		},
		{
			title: "Qdrant vector store",
			cfg: &config.QdrantConfig{
				Host:                 "localhost",
				Port:                 6334,
				GuidelinesCollection: "survey-guidelines",
				TemplatesCollection:  "survey-templates",
			},
			secrets: []string{"QDRANT_API_KEY"},
		},
		{
			title: "Rate limits",
			cfg: &config.RateLimitConfig{
				SuggestionsPerHour:      100,
				ClarificationsPerSurvey: 10,
			},
		},
	}

	var b strings.Builder
	for _, s := range sections {
		body, err := env.MarshalEnv(s.cfg)
		if err != nil {
			return "", err
		}
		b.WriteString("# " + s.title + "\n")
		b.WriteString(body)
		for _, key := range s.secrets {
			b.WriteString("# " + key + "=\n")
		}
		b.WriteString("\n")
	}
	return b.String(), nil
}

func init() {
	rootCmd.AddCommand(initCmd)
}
