// Package handoff builds the short note a human support agent reads when a
// case lands in their queue.
package handoff

import (
	"context"
	"fmt"
	"strings"

	"github.com/wismo-agent/server/internal/agent/graph/prompts"
	"github.com/wismo-agent/server/internal/agent/llm"
	"github.com/wismo-agent/server/internal/agent/model"
	logx "github.com/wismo-agent/server/pkg/logger"
)

const maxNoteLines = 8

// Input carries everything the note can mention.
type Input struct {
	Order     *model.Order
	Shipment  *model.Shipment
	Diagnosis model.Diagnosis
	Action    model.PolicyAction
	Message   string
}

// Composer writes handoff notes, preferring the generation model and falling
// back to a deterministic summary when the model is unavailable or misbehaves.
type Composer struct {
	gen llm.Generator
}

// NewComposer accepts a nil generator; composition then always takes the
// deterministic path.
func NewComposer(gen llm.Generator) *Composer {
	return &Composer{gen: gen}
}

// Compose never fails. Case creation must not be blocked by a note.
func (c *Composer) Compose(ctx context.Context, in Input) string {
	if c == nil || c.gen == nil {
		return fallbackNote(in)
	}

	prompt, err := prompts.RenderHandoffPrompt(ctx, handoffVars(in))
	if err != nil {
		logx.Warn().Err(err).Msg("handoff prompt render failed, using fallback note")
		return fallbackNote(in)
	}

	raw, err := c.gen.GenerateText(ctx, prompt)
	if err != nil {
		logx.Warn().Err(err).Msg("handoff generation failed, using fallback note")
		return fallbackNote(in)
	}

	note := clampLines(raw)
	if note == "" {
		return fallbackNote(in)
	}
	return note
}

func handoffVars(in Input) prompts.HandoffVars {
	v := prompts.HandoffVars{
		Diagnosis:   string(in.Diagnosis.Label),
		Confidence:  fmt.Sprintf("%.2f", in.Diagnosis.Confidence),
		Action:      string(in.Action),
		UserMessage: in.Message,
	}
	if in.Order != nil {
		v.OrderID = in.Order.OrderID
		v.Email = in.Order.Email
		v.Value = fmt.Sprintf("%.2f", in.Order.Value)
	}
	if in.Shipment != nil {
		v.Carrier = in.Shipment.Carrier
		v.Status = in.Shipment.CurrentStatus
	}
	return v
}

// clampLines keeps the first non-empty lines up to the limit.
func clampLines(raw string) string {
	var kept []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		kept = append(kept, line)
		if len(kept) == maxNoteLines {
			break
		}
	}
	return strings.Join(kept, "\n")
}

func fallbackNote(in Input) string {
	var lines []string
	if in.Order != nil {
		lines = append(lines, fmt.Sprintf("Order %s, value %.2f, customer %s.", in.Order.OrderID, in.Order.Value, in.Order.Email))
	}
	if in.Shipment != nil {
		lines = append(lines, fmt.Sprintf("Tracking %s via %s, current status %s.", in.Shipment.TrackingID, in.Shipment.Carrier, in.Shipment.CurrentStatus))
	}
	lines = append(lines,
		fmt.Sprintf("Diagnosis: %s (confidence %.2f).", in.Diagnosis.Label, in.Diagnosis.Confidence),
		fmt.Sprintf("Recommended action: %s.", in.Action),
	)
	if msg := strings.TrimSpace(in.Message); msg != "" {
		lines = append(lines, fmt.Sprintf("Customer said: %q", msg))
	}
	return strings.Join(lines, "\n")
}
