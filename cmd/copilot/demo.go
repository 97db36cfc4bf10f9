package main

import (
	"github.com/spf13/cobra"

	"github.com/Nikhil-Sawant-141/ai-survey-copilot/internal/agents"
	"github.com/Nikhil-Sawant-141/ai-survey-copilot/internal/config"
	"github.com/Nikhil-Sawant-141/ai-survey-copilot/internal/core"
	"github.com/Nikhil-Sawant-141/ai-survey-copilot/internal/knowledge"
	"github.com/Nikhil-Sawant-141/ai-survey-copilot/internal/providers/llm"
	"github.com/Nikhil-Sawant-141/ai-survey-copilot/internal/providers/vector"
	"github.com/Nikhil-Sawant-141/ai-survey-copilot/internal/ratelimit"
	"github.com/Nikhil-Sawant-141/ai-survey-copilot/internal/safety"
	"github.com/Nikhil-Sawant-141/ai-survey-copilot/internal/state"
	"github.com/Nikhil-Sawant-141/ai-survey-copilot/internal/storage/sqlite"
	"github.com/Nikhil-Sawant-141/ai-survey-copilot/internal/tui"
)

var demoCmd = &cobra.Command{
	Use:           "demo",
	Short:         "Run the interactive agent demo",
	Long:          `Walks a sample telemedicine survey through all three agents: quality check and variants, respondent assistance, then insight analysis. Needs LLM API keys; Redis is not required.`,
	SilenceUsage:  true,
	SilenceErrors: false,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		var flushLog func()
		ctx, flushLog = setupLogger(ctx)
		defer flushLog()

		if err := initEnv(ctx); err != nil {
			return err
		}

		appCfg := config.NewAppConfig(ctx)
		limitsCfg := config.NewRateLimitConfig(ctx)
		llmCfg := config.NewLLMConfig(ctx)
		qdrantCfg := config.NewQdrantConfig(ctx)

		designLLM, err := llm.ForAgent(ctx, core.AgentDesign, llmCfg)
		if err != nil {
			return err
		}
		attemptLLM, err := llm.ForAgent(ctx, core.AgentAttempt, llmCfg)
		if err != nil {
			return err
		}
		insightLLM, err := llm.ForAgent(ctx, core.AgentInsight, llmCfg)
		if err != nil {
			return err
		}

		// Retrieval degrades to the built-in fallback when Qdrant is down,
		// so the demo wires the real index unconditionally.
		embedder := llm.NewOpenAIEmbedder(llmCfg.OpenAIAPIKey, llmCfg.EmbeddingModel)
		qdrant, err := vector.NewQdrant(qdrantCfg)
		if err != nil {
			return err
		}
		defer qdrant.Close()
		index := knowledge.NewIndex(qdrant, embedder, qdrantCfg)

		// Demo audit entries land in the regular interaction log.
		db, err := sqlite.NewDB(ctx, appCfg.DatabasePath)
		if err != nil {
			return err
		}
		defer db.Close()

		memory := state.NewMemoryStore()
		orch := agents.NewOrchestrator(
			agents.NewDesignAgent(designLLM, index),
			agents.NewAttemptAgent(attemptLLM, memory),
			agents.NewInsightAgent(insightLLM),
			ratelimit.New(memory),
			safety.NewModerator(),
			sqlite.NewAuditRepo(db),
			limitsCfg,
		)

		return tui.RunDemo(ctx, orch)
	},
}

func init() {
	rootCmd.AddCommand(demoCmd)
}
