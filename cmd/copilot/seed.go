package main

import (
	"github.com/spf13/cobra"

	"github.com/Nikhil-Sawant-141/ai-survey-copilot/internal/config"
	"github.com/Nikhil-Sawant-141/ai-survey-copilot/internal/knowledge"
	"github.com/Nikhil-Sawant-141/ai-survey-copilot/internal/providers/llm"
	"github.com/Nikhil-Sawant-141/ai-survey-copilot/internal/providers/vector"
	"github.com/Nikhil-Sawant-141/ai-survey-copilot/pkg/log"
)

var seedCmd = &cobra.Command{
	Use:           "seed",
	Short:         "Seed the guideline knowledge base",
	Long:          `Embeds the survey methodology guidelines and upserts them into the vector store. Safe to re-run; points are overwritten in place.`,
	SilenceUsage:  true,
	SilenceErrors: false,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		// Setup logger
		var flushLog func()
		ctx, flushLog = setupLogger(ctx)
		defer flushLog()

		logger := log.FromCtx(ctx)

		if err := initEnv(ctx); err != nil {
			return err
		}

		llmCfg := config.NewLLMConfig(ctx)
		qdrantCfg := config.NewQdrantConfig(ctx)

		embedder := llm.NewOpenAIEmbedder(llmCfg.OpenAIAPIKey, llmCfg.EmbeddingModel)
		qdrant, err := vector.NewQdrant(qdrantCfg)
		if err != nil {
			return err
		}
		defer qdrant.Close()

		index := knowledge.NewIndex(qdrant, embedder, qdrantCfg)
		if err := index.Seed(ctx); err != nil {
			return err
		}

		logger.Info().Msg("knowledge base seeded")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
