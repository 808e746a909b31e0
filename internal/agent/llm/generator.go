package llm

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/gemini"
	"github.com/cloudwego/eino/schema"

	"github.com/wismo-agent/server/internal/agent/model"
	logx "github.com/wismo-agent/server/pkg/logger"
)

// modelGenerator adapts a gemini.ChatModel to the Generator interface and
// logs token usage and USD cost per call.
type modelGenerator struct {
	chat *gemini.ChatModel
	name string
}

func (g *modelGenerator) GenerateText(ctx context.Context, prompt string) (string, error) {
	out, err := g.chat.Generate(ctx, []*schema.Message{schema.UserMessage(prompt)})
	if err != nil {
		logx.Error().Err(err).Str("model", g.name).Msg("model generation failed")
		return "", fmt.Errorf("generate text: %w", err)
	}
	if out == nil {
		return "", fmt.Errorf("generate text: empty model response")
	}

	logUsage(g.name, out)
	return out.Content, nil
}

// logUsage computes and logs usage cost for one model call.
func logUsage(modelName string, out *schema.Message) {
	if out.ResponseMeta == nil || out.ResponseMeta.Usage == nil {
		return
	}
	usage := out.ResponseMeta.Usage
	pricing := model.ResolvePricing(modelName)
	inC, outC, totalC := model.ComputeCost(usage, pricing)
	logx.Debug().
		Str("model", modelName).
		Int("prompt_tokens", usage.PromptTokens).
		Int("completion_tokens", usage.CompletionTokens).
		Int("total_tokens", usage.TotalTokens).
		Float64("input_cost_usd", inC).
		Float64("output_cost_usd", outC).
		Float64("total_cost_usd", totalC).
		Msg("LLM usage")
}

var _ Generator = (*modelGenerator)(nil)
