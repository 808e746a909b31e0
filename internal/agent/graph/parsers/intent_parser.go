package parsers

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/wismo-agent/server/internal/agent/model"
)

// basic safety limits to avoid pathological inputs
const (
	maxContentLen = 64 * 1024 // 64KB
	maxErrSnippet = 200       // limit error snippet size
)

// intentWire mirrors the JSON object the extraction prompt asks the model
// to produce.
type intentWire struct {
	Intent              string   `json:"intent"`
	ExtractedOrderID    string   `json:"extracted_order_id"`
	ExtractedEmail      string   `json:"extracted_email"`
	MissingFields       []string `json:"missing_fields"`
	RiskFlags           []string `json:"risk_flags"`
	Confidence          float64  `json:"confidence"`
	SuggestedNextAction string   `json:"suggested_next_action"`
}

// ParseIntentResponse extracts the first JSON object from raw model output
// (tolerating code fences and stray tokens around it) and validates it into
// an IntentResult. Any failure is returned as an error so the caller can
// fall back to deterministic extraction.
func ParseIntentResponse(content string) (*model.IntentResult, error) {
	if len(content) > maxContentLen {
		return nil, fmt.Errorf("intent response too large: %d bytes", len(content))
	}

	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON object in intent response: %s", safeSnippet(content))
	}

	var wire intentWire
	if err := json.Unmarshal([]byte(content[start:end+1]), &wire); err != nil {
		return nil, fmt.Errorf("decode intent response: %w (%s)", err, safeSnippet(content[start:end+1]))
	}

	intentLabel, ok := model.ParseIntent(wire.Intent)
	if !ok {
		return nil, fmt.Errorf("intent %q outside the closed set", wire.Intent)
	}
	if wire.Confidence < 0 || wire.Confidence > 1 {
		return nil, fmt.Errorf("confidence %v out of range", wire.Confidence)
	}
	nextAction, ok := model.ParseNextAction(wire.SuggestedNextAction)
	if !ok {
		return nil, fmt.Errorf("suggested_next_action %q invalid", wire.SuggestedNextAction)
	}
	for _, f := range wire.MissingFields {
		if f != "order_id" && f != "email" {
			return nil, fmt.Errorf("missing_fields entry %q invalid", f)
		}
	}

	res := &model.IntentResult{
		Intent:        intentLabel,
		OrderID:       strings.TrimSpace(wire.ExtractedOrderID),
		Email:         strings.TrimSpace(wire.ExtractedEmail),
		MissingFields: wire.MissingFields,
		RiskFlags:     wire.RiskFlags,
		Confidence:    wire.Confidence,
		NextAction:    nextAction,
	}
	if res.MissingFields == nil {
		res.MissingFields = []string{}
	}
	if res.RiskFlags == nil {
		res.RiskFlags = []string{}
	}
	return res, nil
}

func safeSnippet(s string) string {
	s = strings.TrimSpace(s)
	if len(s) <= maxErrSnippet {
		return s
	}
	return s[:maxErrSnippet]
}
