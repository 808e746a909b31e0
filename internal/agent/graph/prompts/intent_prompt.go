package prompts

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
)

//go:embed template/intent_prompt.txt
var intentPromptTemplate string

// RenderIntentPrompt renders the extraction prompt via the Eino prompt component.
// Replacing only the known token keeps the JSON braces in the template intact,
// and the component emits prompt callbacks when rendered inside a graph run.
func RenderIntentPrompt(ctx context.Context, userMessage string) (string, error) {
	content := strings.NewReplacer(
		"{{user_message}}", userMessage,
	).Replace(intentPromptTemplate)

	tpl := prompt.FromMessages(
		schema.FString,
		schema.MessagesPlaceholder("prompt_messages", false),
	)
	msgs, err := tpl.Format(ctx, map[string]any{
		"prompt_messages": []*schema.Message{schema.UserMessage(content)},
	})
	if err != nil {
		return "", fmt.Errorf("intent prompt callbacks: %w", err)
	}
	if len(msgs) == 0 || msgs[0] == nil {
		return "", fmt.Errorf("intent prompt callbacks: empty result")
	}
	return msgs[0].Content, nil
}
