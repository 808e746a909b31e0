package llm

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/gemini"
	"google.golang.org/genai"

	"github.com/wismo-agent/server/internal/agent/model"
	logx "github.com/wismo-agent/server/pkg/logger"
)

// ChatModelConfig holds the configuration for chat model creation
type ChatModelConfig struct {
	APIKey          string
	BaseURL         string
	ExtractorConfig *model.ExtractorModelConfig
	HandoffConfig   *model.HandoffModelConfig
}

// ChatModels holds both extractor and handoff chat models
type ChatModels struct {
	Extractor          *gemini.ChatModel
	Handoff            *gemini.ChatModel
	ExtractorModelName string
	HandoffModelName   string
}

// NewChatModels creates both extractor and handoff chat models with the given configuration
func NewChatModels(ctx context.Context, config ChatModelConfig) (*ChatModels, error) {

	clientCfg := &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if config.BaseURL != "" {
		clientCfg.HTTPOptions.BaseURL = config.BaseURL
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		logx.Error().Err(err).Msg("Error creating Gemini client")
		return nil, fmt.Errorf("error creating Gemini client: %w", err)
	}

	// Create extractor chat model
	chatModelExtractor, err := gemini.NewChatModel(ctx, &gemini.Config{
		Client:      client,
		Model:       config.ExtractorConfig.Model,
		Temperature: &config.ExtractorConfig.Temperature,
		MaxTokens:   &config.ExtractorConfig.MaxTokens,
		ThinkingConfig: &genai.ThinkingConfig{
			IncludeThoughts: true,
			ThinkingBudget:  genai.Ptr(int32(2000)),
		},
	})
	if err != nil {
		logx.Error().Err(err).Msg("Error creating extractor model")
		return nil, fmt.Errorf("error creating extractor model: %w", err)
	}

	// Create handoff chat model
	chatModelHandoff, err := gemini.NewChatModel(ctx, &gemini.Config{
		Client:      client,
		Model:       config.HandoffConfig.Model,
		Temperature: &config.HandoffConfig.Temperature,
		MaxTokens:   &config.HandoffConfig.MaxTokens,
		ThinkingConfig: &genai.ThinkingConfig{
			IncludeThoughts: true,
			ThinkingBudget:  genai.Ptr(int32(2000)),
		},
	})
	if err != nil {
		logx.Error().Err(err).Msg("Error creating handoff model")
		return nil, fmt.Errorf("error creating handoff model: %w", err)
	}

	return &ChatModels{
		Extractor:          chatModelExtractor,
		Handoff:            chatModelHandoff,
		ExtractorModelName: config.ExtractorConfig.Model,
		HandoffModelName:   config.HandoffConfig.Model,
	}, nil
}

// ExtractorGenerator exposes the extractor model through the Generator boundary.
func (cm *ChatModels) ExtractorGenerator() Generator {
	return &modelGenerator{chat: cm.Extractor, name: cm.ExtractorModelName}
}

// HandoffGenerator exposes the handoff model through the Generator boundary.
func (cm *ChatModels) HandoffGenerator() Generator {
	return &modelGenerator{chat: cm.Handoff, name: cm.HandoffModelName}
}
