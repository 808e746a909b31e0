package nodes

import (
	"context"

	"github.com/wismo-agent/server/internal/agent/model"
	errx "github.com/wismo-agent/server/internal/core/error"
	logx "github.com/wismo-agent/server/pkg/logger"
)

// Intake loads or creates the session and records the inbound message on the
// transcript. A broken session store degrades to a fresh session rather than
// failing the turn.
func (d *Deps) Intake(ctx context.Context, state *model.ConversationState) (*model.ConversationState, error) {
	sessionID := state.Input.SessionID

	sess, err := d.Sessions.Get(ctx, sessionID)
	switch {
	case err == nil:
	case errx.IsNotFound(err):
		sess = model.NewSession(sessionID, d.now().UTC())
	default:
		logx.Warn().Err(err).Str("session_id", sessionID).Msg("Session load failed, starting fresh")
		d.logEvent(ctx, sessionID, model.EventError, map[string]any{
			"where": "session_load",
			"error": err.Error(),
		})
		sess = model.NewSession(sessionID, d.now().UTC())
	}

	sess.LastSeen = d.now().UTC()
	state.Session = sess

	d.Recorder.RecordUser(ctx, sessionID, state.Input.Message)
	return state, nil
}
