package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"

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
	"github.com/Nikhil-Sawant-141/ai-survey-copilot/internal/tasks"
	httpapi "github.com/Nikhil-Sawant-141/ai-survey-copilot/internal/transport/http"
	"github.com/Nikhil-Sawant-141/ai-survey-copilot/pkg/log"
	"github.com/Nikhil-Sawant-141/ai-survey-copilot/pkg/srv"
)

func NewServices(ctx context.Context) []srv.Service {
	logger := log.FromCtx(ctx)
	services := make([]srv.Service, 0)

	// init env
	if err := initEnv(ctx); err != nil {
		logger.Fatal().Err(err).Msg("failed to init env")
	}

	// 1. Configuration
	appCfg := config.NewAppConfig(ctx)
	limitsCfg := config.NewRateLimitConfig(ctx)
	llmCfg := config.NewLLMConfig(ctx)
	qdrantCfg := config.NewQdrantConfig(ctx)
	redisCfg := config.NewRedisConfig(ctx)

	// 2. Storage
	db, err := sqlite.NewDB(ctx, appCfg.DatabasePath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize storage")
	}
	services = append(services, srv.NewCleanup(db.Close))

	surveys := sqlite.NewSurveyRepo(db)
	responses := sqlite.NewResponseRepo(db)
	insights := sqlite.NewInsightRepo(db)
	events := sqlite.NewEventRepo(db)
	audit := sqlite.NewAuditRepo(db)

	// 3. State store (quota counters, session resume) and task broker
	stateClient, err := state.NewRedisClient(ctx, redisCfg.StateURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect state redis")
	}
	services = append(services, srv.NewCleanup(stateClient.Close))
	stateStore := state.NewRedisStore(stateClient)

	brokerClient, err := state.NewRedisClient(ctx, redisCfg.BrokerURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect broker redis")
	}
	services = append(services, srv.NewCleanup(brokerClient.Close))
	queue := tasks.NewQueue(brokerClient)

	// 4. LLM providers, one completer per agent
	designLLM, err := llm.ForAgent(ctx, core.AgentDesign, llmCfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize design LLM provider")
	}
	attemptLLM, err := llm.ForAgent(ctx, core.AgentAttempt, llmCfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize attempt LLM provider")
	}
	insightLLM, err := llm.ForAgent(ctx, core.AgentInsight, llmCfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize insight LLM provider")
	}

	// 5. Knowledge base (embeddings + vector search)
	embedder := llm.NewOpenAIEmbedder(llmCfg.OpenAIAPIKey, llmCfg.EmbeddingModel)
	qdrant, err := vector.NewQdrant(qdrantCfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize vector store")
	}
	services = append(services, srv.NewCleanup(qdrant.Close))
	index := knowledge.NewIndex(qdrant, embedder, qdrantCfg)

	// 6. Agents behind one orchestrator. The moderator is shared with the
	// HTTP layer so both screen with the same rules.
	moderator := safety.NewModerator()
	orch := agents.NewOrchestrator(
		agents.NewDesignAgent(designLLM, index),
		agents.NewAttemptAgent(attemptLLM, stateStore),
		agents.NewInsightAgent(insightLLM),
		ratelimit.New(stateStore),
		moderator,
		audit,
		limitsCfg,
	)

	// 7. Transport
	handler := httpapi.NewHandler(orch, moderator, surveys, responses, insights, events, queue)
	services = append(services, httpapi.NewServer(ctx, appCfg, handler))

	// 8. Background worker, in-process unless a dedicated deployment runs it
	if appCfg.WorkerEnabled {
		worker := tasks.NewWorker(queue)
		tasks.NewHandlers(surveys, responses, insights, events, orch, index, queue).Register(worker)
		services = append(services, worker)
	}

	return services
}

func initEnv(ctx context.Context) error {
	logger := log.FromCtx(ctx)

	if _, err := os.Stat(".env"); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	if err := godotenv.Load(".env"); err != nil {
		logger.Warn().Err(err).Msg("failed to load .env file")
		return err
	}

	logger.Debug().Msg("loaded .env file")
	return nil
}
