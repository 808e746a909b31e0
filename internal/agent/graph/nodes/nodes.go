// Package nodes implements the pipeline stages: intake, understand, retrieve,
// decide. Each stage runs as an eino invokable lambda over
// *model.ConversationState and the stages execute strictly in sequence.
package nodes

import (
	"context"
	"time"

	"github.com/wismo-agent/server/internal/agent/graph/conversations"
	"github.com/wismo-agent/server/internal/agent/handoff"
	"github.com/wismo-agent/server/internal/agent/intent"
	"github.com/wismo-agent/server/internal/agent/model"
	logx "github.com/wismo-agent/server/pkg/logger"
)

// Node names as registered in the graph.
const (
	NodeIntake     = "intake"
	NodeUnderstand = "understand"
	NodeRetrieve   = "retrieve"
	NodeDecide     = "decide"
)

// shortMessageChars is the cutoff below which a message counts as a bare
// detail follow-up rather than a fresh complaint.
const shortMessageChars = 25

// Deps carries everything the stages need. All stores are interfaces so
// tests can run the pipeline against in-memory implementations.
type Deps struct {
	Extractor intent.Extractor
	Orders    model.OrderRepository
	Shipments model.ShipmentRepository
	Sessions  model.SessionRepository
	Cases     model.CaseRepository
	Logs      model.ActionLogRepository
	Notes     *handoff.Composer
	Recorder  *conversations.Recorder

	// Now is overridable in tests; nil means time.Now.
	Now func() time.Time
}

func (d *Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

// logEvent appends to the durable action log. Audit writes are best-effort;
// a failed append never fails the turn.
func (d *Deps) logEvent(ctx context.Context, sessionID string, kind model.EventKind, payload map[string]any) {
	if d.Logs == nil {
		return
	}
	entry := model.ActionLogEntry{
		SessionID: sessionID,
		EventType: kind,
		Payload:   payload,
		TS:        d.now().UTC(),
	}
	if err := d.Logs.Append(ctx, entry); err != nil {
		logx.Warn().
			Err(err).
			Str("session_id", sessionID).
			Str("event_type", string(kind)).
			Msg("Failed to append action log entry")
	}
}

func (d *Deps) saveSession(ctx context.Context, sess *model.Session) {
	if err := d.Sessions.Save(ctx, sess); err != nil {
		logx.Warn().Err(err).Str("session_id", sess.SessionID).Msg("Failed to save session")
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// strOrNil keeps absent ids as JSON null in log payloads instead of "".
func strOrNil(s string) any {
	if s == "" {
		return nil
	}
	return s
}
