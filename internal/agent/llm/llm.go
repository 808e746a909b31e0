// Package llm owns the text-generation boundary. The pipeline and the
// handoff composer only ever see the Generator interface, so swapping the
// provider (or stubbing it out in tests) never touches decision logic.
package llm

import "context"

type Generator interface {
	// GenerateText returns the model completion for a rendered prompt.
	// Callers own the fallback when generation fails.
	GenerateText(ctx context.Context, prompt string) (string, error)
}
