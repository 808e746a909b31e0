package intent

import (
	"context"

	"github.com/wismo-agent/server/internal/agent/graph/parsers"
	"github.com/wismo-agent/server/internal/agent/graph/prompts"
	"github.com/wismo-agent/server/internal/agent/llm"
	"github.com/wismo-agent/server/internal/agent/model"
	logx "github.com/wismo-agent/server/pkg/logger"
)

// GenerativeExtractor asks a text-generation model for the structured
// extraction and validates its output strictly. Any failure along the way
// (render, generation, parse, validation) degrades to the keyword rules;
// the pipeline never fails because the model produced garbage.
type GenerativeExtractor struct {
	gen      llm.Generator
	fallback *RuleExtractor
}

func NewGenerativeExtractor(gen llm.Generator, fallback *RuleExtractor) *GenerativeExtractor {
	if fallback == nil {
		fallback = NewRuleExtractor(nil)
	}
	return &GenerativeExtractor{gen: gen, fallback: fallback}
}

func (e *GenerativeExtractor) Extract(ctx context.Context, message string) model.IntentResult {
	if e.gen == nil {
		return e.fallback.Extract(ctx, message)
	}

	prompt, err := prompts.RenderIntentPrompt(ctx, message)
	if err != nil {
		logx.Warn().Err(err).Msg("intent prompt render failed, using rule extraction")
		return e.fallback.Extract(ctx, message)
	}

	raw, err := e.gen.GenerateText(ctx, prompt)
	if err != nil {
		logx.Warn().Err(err).Msg("intent generation failed, using rule extraction")
		return e.fallback.Extract(ctx, message)
	}

	parsed, err := parsers.ParseIntentResponse(raw)
	if err != nil {
		logx.Warn().Err(err).Msg("intent response rejected, using rule extraction")
		return e.fallback.Extract(ctx, message)
	}
	return *parsed
}

var _ Extractor = (*GenerativeExtractor)(nil)
