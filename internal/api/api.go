// Package api exposes the chat assistant over HTTP.
package api

import (
	"github.com/wismo-agent/server/internal/agent/model"
)

// DefaultSessionID keys conversations from clients that never send one.
const DefaultSessionID = "demo-session"

// ChatRequest is the POST /chat payload.
type ChatRequest struct {
	Message   string `json:"message" binding:"required"`
	OrderID   string `json:"order_id"`
	Email     string `json:"email"`
	SessionID string `json:"session_id"`
}

// ChatResponse mirrors the pipeline result. Intent, LLMConfidence, and
// CaseID render as JSON null when absent.
type ChatResponse struct {
	Reply         string              `json:"reply"`
	Intent        *string             `json:"intent"`
	MissingFields []string            `json:"missing_fields"`
	LLMConfidence *float64            `json:"llm_confidence"`
	RiskFlags     []string            `json:"risk_flags"`
	ActionsTaken  []model.ActionEvent `json:"actions_taken"`
	CaseID        *string             `json:"case_id"`
}

func chatResponseFrom(res *model.ChatResult) ChatResponse {
	out := ChatResponse{
		Reply:         res.Reply,
		MissingFields: res.MissingFields,
		RiskFlags:     res.RiskFlags,
		ActionsTaken:  res.Actions,
	}
	if res.Intent != "" {
		intent := string(res.Intent)
		out.Intent = &intent
		confidence := res.Confidence
		out.LLMConfidence = &confidence
	}
	if res.CaseID != "" {
		caseID := res.CaseID
		out.CaseID = &caseID
	}
	return out
}
