package prompts

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderIntentPrompt(t *testing.T) {
	got, err := RenderIntentPrompt(context.Background(), "Where is order A1004? anju@example.com")
	require.NoError(t, err)

	assert.Contains(t, got, "Where is order A1004? anju@example.com")
	assert.Contains(t, got, `"suggested_next_action"`)
	assert.NotContains(t, got, "{{user_message}}")
}

func TestRenderHandoffPrompt(t *testing.T) {
	got, err := RenderHandoffPrompt(context.Background(), HandoffVars{
		OrderID:     "A2002",
		Email:       "anju@example.com",
		Value:       "420.00",
		Carrier:     "MockCarrier",
		Status:      "delivered",
		Diagnosis:   "delivered_not_received",
		Confidence:  "0.85",
		Action:      "open_investigation",
		UserMessage: "It says delivered but I did not receive my package",
	})
	require.NoError(t, err)

	assert.Contains(t, got, "Order: A2002 (value 420.00)")
	assert.Contains(t, got, "Diagnosis: delivered_not_received (confidence 0.85)")
	assert.Contains(t, got, `Customer message: "It says delivered but I did not receive my package"`)
	assert.NotContains(t, got, "{{.OrderID}}")
}
