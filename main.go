package main

import (
	"context"
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/wismo-agent/server/internal/agent/graph"
	"github.com/wismo-agent/server/internal/agent/handoff"
	"github.com/wismo-agent/server/internal/agent/intent"
	"github.com/wismo-agent/server/internal/agent/llm"
	"github.com/wismo-agent/server/internal/agent/model"
	"github.com/wismo-agent/server/internal/agent/repo"
	"github.com/wismo-agent/server/internal/api"
	"github.com/wismo-agent/server/internal/core"
	logx "github.com/wismo-agent/server/pkg/logger"
	pkgredis "github.com/wismo-agent/server/pkg/redis"
)

// AppConfig defines all configurable parameters for the server, sourced from
// environment variables (loaded from .env for local runs).
type AppConfig struct {
	// Infrastructure
	Redis pkgredis.Config
	Port  string `envconfig:"PORT" default:"8080"`

	// Deployment environment and the API key clients must present.
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
	APIKey      string `envconfig:"API_KEY"`

	// LLMMode selects the extraction strategy: "rules" runs the
	// deterministic keyword extractor, "gemini" uses the generative one
	// with rules as fallback.
	LLMMode       string `envconfig:"LLM_MODE" default:"rules"`
	GeminiAPIKey  string `envconfig:"GEMINI_API_KEY"`
	GeminiBaseURL string `envconfig:"GEMINI_BASE_URL"`

	// Agent configs
	Extractor model.ExtractorModelConfig
	Handoff   model.HandoffModelConfig
	Guardrail model.GuardrailConfig
	Session   model.SessionConfig
}

func main() {
	ctx := context.Background()

	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	var envCfg AppConfig
	if err := envconfig.Process("", &envCfg); err != nil {
		log.Fatalf("Failed to process environment config: %v", err)
	}

	env := core.ParseEnvironment(envCfg.Environment)
	logx.Init(logx.LoggerOpts{Environment: env})

	rdb, err := envCfg.Redis.New()
	if err != nil {
		log.Fatalf("Failed to initialise Redis client: %v", err)
	}
	defer rdb.Close()

	logx.Info().Str("environment", env.String()).Msg("Connected to Redis")

	sessions := repo.NewRedisSessionRepository(rdb, envCfg.Session.TTL)
	cases := repo.NewRedisCaseRepository(rdb)
	logs := repo.NewRedisActionLogRepository(rdb)

	extractor, notes, err := buildExtraction(ctx, envCfg)
	if err != nil {
		log.Fatalf("Failed to set up extraction: %v", err)
	}

	runner, err := graph.BuildChatGraph(ctx, graph.Config{
		Extractor: extractor,
		Orders:    repo.NewRedisOrderRepository(rdb),
		Shipments: repo.NewRedisShipmentRepository(rdb),
		Sessions:  sessions,
		Cases:     cases,
		Logs:      logs,
		Notes:     notes,
	})
	if err != nil {
		log.Fatalf("Failed to build chat graph: %v", err)
	}

	handler := api.NewHandler(runner, logs, repo.NewRedisRateLimiter(rdb), envCfg.Guardrail)
	router := api.NewRouter(handler, envCfg.APIKey)

	logx.Info().Str("port", envCfg.Port).Str("llm_mode", envCfg.LLMMode).Msg("Starting server")
	if err := router.Run(":" + envCfg.Port); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}

// buildExtraction wires the intent extractor and handoff note composer for
// the configured LLM mode.
func buildExtraction(ctx context.Context, cfg AppConfig) (intent.Extractor, *handoff.Composer, error) {
	rules := intent.NewRuleExtractor(nil)

	switch strings.ToLower(cfg.LLMMode) {
	case "", "rules":
		return rules, handoff.NewComposer(nil), nil
	case "gemini":
		cms, err := llm.NewChatModels(ctx, llm.ChatModelConfig{
			APIKey:          cfg.GeminiAPIKey,
			BaseURL:         cfg.GeminiBaseURL,
			ExtractorConfig: &cfg.Extractor,
			HandoffConfig:   &cfg.Handoff,
		})
		if err != nil {
			return nil, nil, err
		}
		extractor := intent.NewGenerativeExtractor(cms.ExtractorGenerator(), rules)
		return extractor, handoff.NewComposer(cms.HandoffGenerator()), nil
	default:
		log.Printf("Warning: unknown LLM_MODE %q, using rules", cfg.LLMMode)
		return rules, handoff.NewComposer(nil), nil
	}
}
