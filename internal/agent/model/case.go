package model

import (
	"context"
	"encoding/hex"
	"strings"
	"time"

	"github.com/google/uuid"
)

// CaseReason records why a support case was opened.
type CaseReason string

const (
	ReasonShippingException CaseReason = "shipping_exception"
	ReasonEscalate          CaseReason = "escalate"
)

// CaseStatusOpen is the status every freshly created case carries.
const CaseStatusOpen = "open"

// Case is a support case handed to a human agent.
type Case struct {
	CaseID      string     `json:"case_id"`
	OrderID     string     `json:"order_id"`
	Reason      CaseReason `json:"reason"`
	Status      string     `json:"status"`
	UserMessage string     `json:"user_message"`
	CreatedAt   time.Time  `json:"created_at"`
	Email       string     `json:"email,omitempty"`
	SessionID   string     `json:"session_id,omitempty"`
	HandoffNote string     `json:"handoff_note,omitempty"`
}

// NewCaseID returns an id like CASE-1A2B3C4D.
func NewCaseID() string {
	u := uuid.New()
	return "CASE-" + strings.ToUpper(hex.EncodeToString(u[:4]))
}

type CaseRepository interface {
	// Create stores a new case document.
	Create(ctx context.Context, c *Case) error

	// Get retrieves a case by id.
	Get(ctx context.Context, caseID string) (*Case, error)

	// CountRecentByEmail counts cases whose email matches (case-insensitive)
	// and whose created_at falls at or after since. The store query filters
	// by email only; the recency cut happens on the loaded documents.
	CountRecentByEmail(ctx context.Context, email string, since time.Time) (int, error)
}
