package nodes

import (
	"context"
	"strings"

	"github.com/wismo-agent/server/internal/agent/intent"
	"github.com/wismo-agent/server/internal/agent/model"
)

// Understand runs intent extraction, applies session continuity, merges the
// order id and email from request, extraction, and session, and asks for the
// missing details when the pair is incomplete.
func (d *Deps) Understand(ctx context.Context, state *model.ConversationState) (*model.ConversationState, error) {
	msg := state.Input.Message
	sess := state.Session

	res := d.Extractor.Extract(ctx, msg)

	// A bare "A1001 / a@b.com" follow-up keeps the prior conversation intent
	// instead of degrading to track_order.
	detailsOnly := intent.DetailsOnly(msg, res)
	if detailsOnly && sess.LastIntent != "" {
		res.Intent = sess.LastIntent
	}
	state.DetailsOnly = detailsOnly

	// Merge priority: explicit request fields, then extraction, then session.
	orderID := firstNonEmpty(state.Input.OrderID, res.OrderID, sess.OrderID)
	email := firstNonEmpty(state.Input.Email, res.Email, sess.Email)

	res.MissingFields = intent.MissingFields(orderID, email)
	if len(res.MissingFields) > 0 {
		res.NextAction = model.NextAskFollowup
	} else {
		res.NextAction = model.NextProceed
	}

	state.Intent = res
	state.OrderID = orderID
	state.Email = email

	d.logEvent(ctx, sess.SessionID, model.EventLLMIntent, map[string]any{
		"intent":                string(res.Intent),
		"extracted_order_id":    strOrNil(res.OrderID),
		"extracted_email":       strOrNil(res.Email),
		"missing_fields":        res.MissingFields,
		"risk_flags":            res.RiskFlags,
		"confidence":            res.Confidence,
		"suggested_next_action": string(res.NextAction),
	})
	state.AddAction(model.ActionEvent{Kind: model.EventLLMIntent, Detail: map[string]any{
		"intent":         string(res.Intent),
		"missing_fields": res.MissingFields,
		"confidence":     res.Confidence,
	}})

	// Persist what this turn taught us about the conversation.
	sess.OrderID = orderID
	sess.Email = email
	sess.LastIntent = res.Intent
	if !detailsOnly && strings.TrimSpace(msg) != "" {
		sess.LastComplaint = msg
	}
	if len(res.MissingFields) > 0 {
		sess.LastQuestion = model.QuestionNeedOrderAndEmail
		sess.MissingFields = append([]string{}, res.MissingFields...)
	} else {
		sess.LastQuestion = ""
		sess.MissingFields = nil
	}
	d.saveSession(ctx, sess)

	if len(res.MissingFields) > 0 {
		state.SetReply(ReplyClarification)
	}
	return state, nil
}
