// Package conversations persists the chat transcript alongside the session.
package conversations

import (
	"context"
	"strings"
	"time"

	"github.com/wismo-agent/server/internal/agent/model"
	logx "github.com/wismo-agent/server/pkg/logger"
)

// Recorder appends user and assistant turns to the session transcript.
// Recording is best-effort; a transcript write never fails the pipeline.
type Recorder struct {
	sessions model.SessionRepository
	now      func() time.Time
}

func NewRecorder(sessions model.SessionRepository) *Recorder {
	return &Recorder{sessions: sessions, now: time.Now}
}

func (r *Recorder) RecordUser(ctx context.Context, sessionID, text string) {
	r.record(ctx, sessionID, model.RoleUser, text)
}

func (r *Recorder) RecordAssistant(ctx context.Context, sessionID, text string) {
	r.record(ctx, sessionID, model.RoleAssistant, text)
}

func (r *Recorder) record(ctx context.Context, sessionID string, role model.MessageRole, text string) {
	if r == nil || r.sessions == nil || strings.TrimSpace(text) == "" {
		return
	}
	msg := model.SessionMessage{
		TS:   r.now().UTC(),
		Role: role,
		Text: text,
	}
	if err := r.sessions.AppendMessage(ctx, sessionID, msg); err != nil {
		logx.Warn().Err(err).Str("session_id", sessionID).Msg("Failed to append transcript message")
	}
}
