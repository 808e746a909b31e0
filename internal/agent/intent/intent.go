// Package intent turns a free-form customer message into a structured
// extraction: an intent from the closed set, any order id / email found in
// the text, and a suggested next step. Two strategies exist behind the
// Extractor interface; the generative one always degrades to the keyword
// rules rather than surfacing an error.
package intent

import (
	"context"

	"github.com/wismo-agent/server/internal/agent/model"
)

type Extractor interface {
	// Extract never fails. Strategies that can error internally must fall
	// back to a deterministic result instead.
	Extract(ctx context.Context, message string) model.IntentResult
}
