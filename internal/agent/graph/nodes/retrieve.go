package nodes

import (
	"context"
	"strings"

	"github.com/wismo-agent/server/internal/agent/model"
	errx "github.com/wismo-agent/server/internal/core/error"
	logx "github.com/wismo-agent/server/pkg/logger"
)

// Retrieve fetches the order and shipment records and verifies the customer's
// email against the order on file. The email check runs before any order
// detail is revealed or logged as a successful tool call.
func (d *Deps) Retrieve(ctx context.Context, state *model.ConversationState) (*model.ConversationState, error) {
	if state.Replied() {
		return state, nil
	}
	sess := state.Session

	order, err := d.Orders.Get(ctx, state.OrderID)
	if err != nil {
		if errx.IsNotFound(err) {
			d.logEvent(ctx, sess.SessionID, model.EventError, map[string]any{
				"where":    "get_order",
				"order_id": state.OrderID,
				"error":    "not_found",
			})
			state.SetReply(ReplyNotFound)
			return state, nil
		}
		logx.Error().Err(err).Str("order_id", state.OrderID).Msg("Order lookup failed")
		d.logEvent(ctx, sess.SessionID, model.EventError, map[string]any{
			"where":    "get_order",
			"order_id": state.OrderID,
			"error":    err.Error(),
		})
		state.SetReply(ReplyLookupTrouble)
		return state, nil
	}

	if !strings.EqualFold(order.Email, state.Email) {
		d.logEvent(ctx, sess.SessionID, model.EventError, map[string]any{
			"where":    "email_check",
			"order_id": state.OrderID,
			"error":    "email_mismatch",
		})
		state.SetReply(ReplyEmailMismatch)
		return state, nil
	}

	d.logEvent(ctx, sess.SessionID, model.EventToolCall, map[string]any{
		"tool":     model.ToolGetOrder,
		"order_id": order.OrderID,
	})
	state.AddAction(model.ActionEvent{Kind: model.EventToolCall, Tool: model.ToolGetOrder, Detail: map[string]any{
		"order_id": order.OrderID,
	}})

	shipment, err := d.Shipments.Get(ctx, order.TrackingID)
	if err != nil {
		if errx.IsNotFound(err) {
			d.logEvent(ctx, sess.SessionID, model.EventError, map[string]any{
				"where":       "get_tracking",
				"tracking_id": order.TrackingID,
				"error":       "not_found",
			})
			state.SetReply(ReplyNotFound)
			return state, nil
		}
		logx.Error().Err(err).Str("tracking_id", order.TrackingID).Msg("Shipment lookup failed")
		d.logEvent(ctx, sess.SessionID, model.EventError, map[string]any{
			"where":       "get_tracking",
			"tracking_id": order.TrackingID,
			"error":       err.Error(),
		})
		state.SetReply(ReplyLookupTrouble)
		return state, nil
	}

	d.logEvent(ctx, sess.SessionID, model.EventToolCall, map[string]any{
		"tool":        model.ToolGetTracking,
		"tracking_id": shipment.TrackingID,
	})
	state.AddAction(model.ActionEvent{Kind: model.EventToolCall, Tool: model.ToolGetTracking, Detail: map[string]any{
		"tracking_id": shipment.TrackingID,
	}})

	state.Order = order
	state.Shipment = shipment

	// Confirmed ids become the session defaults for future turns.
	sess.OrderID = order.OrderID
	sess.Email = state.Email
	d.saveSession(ctx, sess)
	return state, nil
}
