package model

import (
	"context"
	"time"
)

// QuestionNeedOrderAndEmail marks that the last assistant turn asked the
// customer for their order id and email.
const QuestionNeedOrderAndEmail = "need_order_and_email"

// Session is the per-conversation memory that lets short follow-up messages
// inherit context from earlier turns.
type Session struct {
	SessionID     string    `json:"session_id"`
	CreatedAt     time.Time `json:"created_at"`
	LastSeen      time.Time `json:"last_seen"`
	OrderID       string    `json:"order_id,omitempty"`
	Email         string    `json:"email,omitempty"`
	LastIntent    Intent    `json:"last_intent,omitempty"`
	LastQuestion  string    `json:"last_question,omitempty"`
	MissingFields []string  `json:"missing_fields,omitempty"`
	LastComplaint string    `json:"last_complaint,omitempty"`
	ActiveCaseID  string    `json:"active_case_id,omitempty"`
}

// NewSession creates an empty session record.
func NewSession(sessionID string, now time.Time) *Session {
	return &Session{
		SessionID: sessionID,
		CreatedAt: now,
		LastSeen:  now,
	}
}

type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// SessionMessage is one transcript entry.
type SessionMessage struct {
	TS   time.Time   `json:"ts"`
	Role MessageRole `json:"role"`
	Text string      `json:"text"`
}

type SessionRepository interface {
	// Get retrieves a session by id.
	Get(ctx context.Context, sessionID string) (*Session, error)

	// Save stores the session, replacing any existing record.
	Save(ctx context.Context, session *Session) error

	// AppendMessage appends one transcript entry for the session.
	AppendMessage(ctx context.Context, sessionID string, msg SessionMessage) error

	// Messages returns the session transcript in append order.
	Messages(ctx context.Context, sessionID string) ([]SessionMessage, error)
}
