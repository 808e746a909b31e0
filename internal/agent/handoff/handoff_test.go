package handoff

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wismo-agent/server/internal/agent/model"
)

type stubGenerator struct {
	reply string
	err   error
	calls int
}

func (s *stubGenerator) GenerateText(ctx context.Context, prompt string) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

func sampleInput() Input {
	return Input{
		Order:     &model.Order{OrderID: "A2002", Email: "anju@example.com", Value: 420.0, TrackingID: "T9002"},
		Shipment:  &model.Shipment{TrackingID: "T9002", Carrier: "MockCarrier", CurrentStatus: "delivered"},
		Diagnosis: model.Diagnosis{Label: model.DiagDeliveredNotReceived, Confidence: 0.85},
		Action:    model.ActionOpenInvestigation,
		Message:   "It says delivered but I did not receive my package",
	}
}

func TestCompose_FallbackWithoutGenerator(t *testing.T) {
	note := NewComposer(nil).Compose(context.Background(), sampleInput())

	assert.Contains(t, note, "Order A2002, value 420.00, customer anju@example.com.")
	assert.Contains(t, note, "Tracking T9002 via MockCarrier, current status delivered.")
	assert.Contains(t, note, "Diagnosis: delivered_not_received (confidence 0.85).")
	assert.Contains(t, note, "Recommended action: open_investigation.")
	assert.Contains(t, note, `Customer said: "It says delivered but I did not receive my package"`)
}

func TestCompose_FallbackWithoutOrder(t *testing.T) {
	in := sampleInput()
	in.Order = nil
	in.Shipment = nil
	in.Message = "   "

	note := NewComposer(nil).Compose(context.Background(), in)

	lines := strings.Split(note, "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "Diagnosis:")
	assert.Contains(t, lines[1], "Recommended action:")
}

func TestCompose_NilComposer(t *testing.T) {
	var c *Composer
	note := c.Compose(context.Background(), sampleInput())
	assert.Contains(t, note, "Diagnosis: delivered_not_received")
}

func TestCompose_UsesGenerator(t *testing.T) {
	gen := &stubGenerator{reply: "Customer reports a missing delivered package.\nOrder A2002 ($420).\nOpen an investigation."}
	note := NewComposer(gen).Compose(context.Background(), sampleInput())

	assert.Equal(t, 1, gen.calls)
	assert.Equal(t, "Customer reports a missing delivered package.\nOrder A2002 ($420).\nOpen an investigation.", note)
}

func TestCompose_GeneratorFailureFallsBack(t *testing.T) {
	gen := &stubGenerator{err: errors.New("model unavailable")}
	note := NewComposer(gen).Compose(context.Background(), sampleInput())

	assert.Equal(t, 1, gen.calls)
	assert.Contains(t, note, "Diagnosis: delivered_not_received")
}

func TestCompose_BlankGenerationFallsBack(t *testing.T) {
	gen := &stubGenerator{reply: "\n\n   \n"}
	note := NewComposer(gen).Compose(context.Background(), sampleInput())
	assert.Contains(t, note, "Recommended action: open_investigation.")
}

func TestCompose_ClampsLongNotes(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 20; i++ {
		sb.WriteString("line\n")
	}
	gen := &stubGenerator{reply: sb.String()}

	note := NewComposer(gen).Compose(context.Background(), sampleInput())
	assert.Len(t, strings.Split(note, "\n"), maxNoteLines)
}

func TestClampLines(t *testing.T) {
	assert.Equal(t, "a\nb", clampLines("  a  \n\n\n b \n"))
	assert.Equal(t, "", clampLines("   \n \n"))
}

func TestHandoffVars(t *testing.T) {
	v := handoffVars(sampleInput())
	assert.Equal(t, "A2002", v.OrderID)
	assert.Equal(t, "anju@example.com", v.Email)
	assert.Equal(t, "420.00", v.Value)
	assert.Equal(t, "MockCarrier", v.Carrier)
	assert.Equal(t, "delivered", v.Status)
	assert.Equal(t, "delivered_not_received", v.Diagnosis)
	assert.Equal(t, "0.85", v.Confidence)
	assert.Equal(t, "open_investigation", v.Action)

	v = handoffVars(Input{Diagnosis: model.Diagnosis{Label: model.DiagUnknown, Confidence: 0.4}})
	assert.Empty(t, v.OrderID)
	assert.Empty(t, v.Carrier)
	assert.Equal(t, "0.40", v.Confidence)
}
