package prompts

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
)

//go:embed template/handoff_prompt.txt
var handoffPromptTemplate string

// HandoffVars carries the inputs for the handoff note prompt. Numeric values
// arrive pre-formatted so the template stays free of formatting logic.
type HandoffVars struct {
	OrderID     string
	Email       string
	Value       string
	Carrier     string
	Status      string
	Diagnosis   string
	Confidence  string
	Action      string
	UserMessage string
}

// RenderHandoffPrompt renders the handoff note prompt and triggers prompt callbacks.
func RenderHandoffPrompt(ctx context.Context, vars HandoffVars) (string, error) {
	tpl := prompt.FromMessages(
		schema.GoTemplate,
		schema.SystemMessage(handoffPromptTemplate),
	)
	msgs, err := tpl.Format(ctx, map[string]any{
		"OrderID":     vars.OrderID,
		"Email":       vars.Email,
		"Value":       vars.Value,
		"Carrier":     vars.Carrier,
		"Status":      vars.Status,
		"Diagnosis":   vars.Diagnosis,
		"Confidence":  vars.Confidence,
		"Action":      vars.Action,
		"UserMessage": vars.UserMessage,
	})
	if err != nil {
		return "", fmt.Errorf("handoff prompt render: %w", err)
	}
	if len(msgs) == 0 || msgs[0] == nil {
		return "", fmt.Errorf("handoff prompt render: empty result")
	}
	return msgs[0].Content, nil
}
