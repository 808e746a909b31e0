package nodes

import (
	"context"
	"fmt"
	"strings"

	"github.com/wismo-agent/server/internal/agent/handoff"
	"github.com/wismo-agent/server/internal/agent/intent"
	"github.com/wismo-agent/server/internal/agent/model"
	"github.com/wismo-agent/server/internal/agent/policy"
	logx "github.com/wismo-agent/server/pkg/logger"
)

// Decide diagnoses the shipment, applies the policy rules and the
// repeat-claim override, and writes the final reply.
func (d *Deps) Decide(ctx context.Context, state *model.ConversationState) (*model.ConversationState, error) {
	if state.Replied() {
		return state, nil
	}
	if state.Order == nil || state.Shipment == nil {
		state.SetReply(ReplyOrderUnavailable)
		return state, nil
	}

	sess := state.Session
	message := effectiveMessage(state)
	state.EffectiveMessage = message

	diag := policy.Diagnose(message, state.Shipment, d.now())
	state.Diagnosis = diag
	d.logEvent(ctx, sess.SessionID, model.EventDiagnosis, map[string]any{
		"label":      string(diag.Label),
		"confidence": diag.Confidence,
		"notes":      strOrNil(diag.Notes),
	})
	state.AddAction(model.ActionEvent{Kind: model.EventDiagnosis, Detail: map[string]any{
		"label":      string(diag.Label),
		"confidence": diag.Confidence,
	}})

	action := policy.Recommend(state.Order, diag)

	// The repeat-claim count only matters for delivered-not-received; other
	// labels keep their action no matter the history.
	if policy.RepeatClaimGated(diag.Label) && state.Order.Email != "" {
		since := d.now().Add(-policy.RepeatClaimWindow)
		count, err := d.Cases.CountRecentByEmail(ctx, state.Order.Email, since)
		if err != nil {
			logx.Warn().Err(err).Str("email", state.Order.Email).Msg("Repeat claim lookup failed")
			d.logEvent(ctx, sess.SessionID, model.EventError, map[string]any{
				"where": "repeat_claim_check",
				"error": err.Error(),
			})
		} else {
			d.logEvent(ctx, sess.SessionID, model.EventPolicyCheck, map[string]any{
				"rule":  policy.RepeatClaimRule,
				"email": state.Order.Email,
				"count": count,
			})
			if count > policy.RepeatClaimThreshold {
				action = model.ActionEscalate
				d.logEvent(ctx, sess.SessionID, model.EventPolicyOverride, map[string]any{
					"rule":          policy.RepeatClaimRule,
					"forced_action": string(model.ActionEscalate),
				})
				state.AddAction(model.ActionEvent{Kind: model.EventPolicyOverride, Detail: map[string]any{
					"rule":          policy.RepeatClaimRule,
					"forced_action": string(model.ActionEscalate),
				}})
			}
		}
	}
	state.Action = action

	d.logEvent(ctx, sess.SessionID, model.EventDecision, map[string]any{"decision": string(action)})
	state.AddAction(model.ActionEvent{Kind: model.EventDecision, Detail: map[string]any{"decision": string(action)}})

	// Scenario question sets outrank the generic action replies: damage and
	// attempted-delivery gather details before any case is opened.
	switch {
	case diag.Label == model.DiagDeliveryAttempted:
		state.SetReply(ReplyAttemptQuestions)
	case diag.Label == model.DiagDamaged:
		state.SetReply(ReplyDamageQuestions)
	case action == model.ActionVerifyAddress:
		state.SetReply(ReplyVerifyAddress)
	case action == model.ActionOpenInvestigation:
		d.handleCase(ctx, state, model.ReasonShippingException, message)
	case action == model.ActionEscalate:
		d.handleCase(ctx, state, model.ReasonEscalate, message)
	case action == model.ActionAdviseWaitThenInvestigate:
		state.SetReply(ReplyDeliveredChecklist)
	case action == model.ActionReassureAndMonitor:
		state.SetReply(ReplyReassure)
	default:
		state.SetReply(ReplyFallback)
	}
	return state, nil
}

// effectiveMessage picks the text diagnosis should read. A short or
// details-only follow-up inherits the stored complaint so "A1001,
// anju@example.com" is still judged against "my package never arrived".
func effectiveMessage(state *model.ConversationState) string {
	msg := state.Input.Message
	complaint := state.Session.LastComplaint
	if complaint == "" {
		return msg
	}
	if len(strings.TrimSpace(msg)) < shortMessageChars || intent.LooksLikeDetails(msg) {
		return complaint
	}
	return msg
}

// handleCase reuses the session's open case when one exists, otherwise
// creates a new case with a handoff note and replies with the case id.
func (d *Deps) handleCase(ctx context.Context, state *model.ConversationState, reason model.CaseReason, message string) {
	sess := state.Session

	if sess.ActiveCaseID != "" {
		state.CaseID = sess.ActiveCaseID
		d.logEvent(ctx, sess.SessionID, model.EventToolCall, map[string]any{
			"tool":    model.ToolReuseCase,
			"case_id": sess.ActiveCaseID,
		})
		state.AddAction(model.ActionEvent{Kind: model.EventToolCall, Tool: model.ToolReuseCase, Detail: map[string]any{
			"case_id": sess.ActiveCaseID,
		}})
		state.SetReply(fmt.Sprintf(ReplyCaseReused, sess.ActiveCaseID))
		return
	}

	userMessage := message
	if reason == model.ReasonEscalate && strings.TrimSpace(userMessage) == "" {
		userMessage = "escalation requested"
	}

	note := d.Notes.Compose(ctx, handoff.Input{
		Order:     state.Order,
		Shipment:  state.Shipment,
		Diagnosis: state.Diagnosis,
		Action:    state.Action,
		Message:   userMessage,
	})

	c := &model.Case{
		CaseID:      model.NewCaseID(),
		OrderID:     state.Order.OrderID,
		Reason:      reason,
		Status:      model.CaseStatusOpen,
		UserMessage: userMessage,
		CreatedAt:   d.now().UTC(),
		Email:       state.Order.Email,
		SessionID:   sess.SessionID,
		HandoffNote: note,
	}
	if err := d.Cases.Create(ctx, c); err != nil {
		logx.Error().Err(err).Str("order_id", c.OrderID).Msg("Case creation failed")
		d.logEvent(ctx, sess.SessionID, model.EventError, map[string]any{
			"where": "create_case",
			"error": err.Error(),
		})
		state.SetReply(ReplyCaseTrouble)
		return
	}

	state.CaseID = c.CaseID
	d.logEvent(ctx, sess.SessionID, model.EventToolCall, map[string]any{
		"tool":    model.ToolCreateCase,
		"case_id": c.CaseID,
		"reason":  string(reason),
	})
	state.AddAction(model.ActionEvent{Kind: model.EventToolCall, Tool: model.ToolCreateCase, Detail: map[string]any{
		"case_id": c.CaseID,
	}})

	sess.ActiveCaseID = c.CaseID
	d.saveSession(ctx, sess)

	if reason == model.ReasonShippingException {
		state.SetReply(fmt.Sprintf(ReplyInvestigationOpened, c.CaseID))
	} else {
		state.SetReply(fmt.Sprintf(ReplyEscalated, c.CaseID))
	}
}
