package intent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wismo-agent/server/internal/agent/model"
)

type scriptedGenerator struct {
	reply   string
	err     error
	prompts []string
}

func (s *scriptedGenerator) GenerateText(ctx context.Context, prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

func TestGenerativeExtractor_UsesModelOutput(t *testing.T) {
	gen := &scriptedGenerator{reply: `{"intent":"damaged","extracted_order_id":"A1004","confidence":0.9,"suggested_next_action":"ask_followup","missing_fields":["email"]}`}
	ex := NewGenerativeExtractor(gen, nil)

	res := ex.Extract(context.Background(), "my A1004 arrived smashed")

	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], "my A1004 arrived smashed")
	assert.Equal(t, model.IntentDamaged, res.Intent)
	assert.Equal(t, "A1004", res.OrderID)
	assert.Equal(t, []string{"email"}, res.MissingFields)
	assert.InDelta(t, 0.9, res.Confidence, 0.001)
}

func TestGenerativeExtractor_FallsBackOnGenerationError(t *testing.T) {
	gen := &scriptedGenerator{err: errors.New("quota exhausted")}
	ex := NewGenerativeExtractor(gen, nil)

	res := ex.Extract(context.Background(), "delivered but I did not receive it, order A2002")

	// Keyword rules take over, so the fixed rule confidence shows up.
	assert.Equal(t, model.IntentDeliveredNotReceived, res.Intent)
	assert.Equal(t, "A2002", res.OrderID)
	assert.InDelta(t, RuleConfidence, res.Confidence, 0.001)
}

func TestGenerativeExtractor_FallsBackOnGarbage(t *testing.T) {
	gen := &scriptedGenerator{reply: "I'd classify this as... hmm, hard to say!"}
	ex := NewGenerativeExtractor(gen, nil)

	res := ex.Extract(context.Background(), "where is my order A1004? anju@example.com")

	assert.Equal(t, model.IntentTrackOrder, res.Intent)
	assert.Equal(t, "A1004", res.OrderID)
	assert.Equal(t, "anju@example.com", res.Email)
	assert.InDelta(t, RuleConfidence, res.Confidence, 0.001)
}

func TestGenerativeExtractor_NilGeneratorUsesRules(t *testing.T) {
	ex := NewGenerativeExtractor(nil, nil)
	res := ex.Extract(context.Background(), "package stuck for days, A1001")
	assert.Equal(t, model.IntentStuckInTransit, res.Intent)
	assert.Equal(t, "A1001", res.OrderID)
}
