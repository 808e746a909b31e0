package model

import (
	"context"
	"time"
)

// EventKind enumerates the audit event types emitted by the pipeline and
// the request guardrails.
type EventKind string

const (
	EventLLMIntent      EventKind = "llm_intent"
	EventToolCall       EventKind = "tool_call"
	EventDiagnosis      EventKind = "diagnosis"
	EventPolicyCheck    EventKind = "policy_check"
	EventPolicyOverride EventKind = "policy_override"
	EventDecision       EventKind = "decision"
	EventError          EventKind = "error"
	EventBlockedRequest EventKind = "blocked_request"
)

// Tool names recorded in tool_call events.
const (
	ToolGetOrder    = "get_order"
	ToolGetTracking = "get_tracking"
	ToolCreateCase  = "create_case"
	ToolReuseCase   = "reuse_case"
)

// ActionEvent is one entry in the per-request audit trail returned to the
// caller as actions_taken.
type ActionEvent struct {
	Kind   EventKind      `json:"kind"`
	Tool   string         `json:"tool,omitempty"`
	Detail map[string]any `json:"detail,omitempty"`
}

// ActionLogEntry is the durable form of an audit event.
type ActionLogEntry struct {
	SessionID string         `json:"session_id"`
	EventType EventKind      `json:"event_type"`
	Payload   map[string]any `json:"payload,omitempty"`
	TS        time.Time      `json:"ts"`
}

type ActionLogRepository interface {
	// Append records one audit entry. Failures are the caller's to swallow;
	// audit logging never blocks request handling.
	Append(ctx context.Context, entry ActionLogEntry) error
}

// RateLimitResult reports the outcome of one rate limit check.
type RateLimitResult struct {
	Allowed bool
	Count   int64
	Limit   int
	Bucket  string
}

type RateLimiter interface {
	// Allow counts the request against the caller's current minute bucket
	// and reports whether it is within limitPerMinute. Blocked requests are
	// still counted.
	Allow(ctx context.Context, apiKey, ip string, limitPerMinute int) (*RateLimitResult, error)
}
