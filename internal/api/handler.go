package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wismo-agent/server/internal/agent/graph"
	"github.com/wismo-agent/server/internal/agent/model"
	logx "github.com/wismo-agent/server/pkg/logger"
)

// Handler serves the chat API.
type Handler struct {
	runner  graph.Runner
	logs    model.ActionLogRepository
	limiter model.RateLimiter
	guard   model.GuardrailConfig
}

func NewHandler(runner graph.Runner, logs model.ActionLogRepository, limiter model.RateLimiter, guard model.GuardrailConfig) *Handler {
	return &Handler{runner: runner, logs: logs, limiter: limiter, guard: guard}
}

// Chat handles one customer message. Guardrails run after binding so blocked
// requests can still be attributed to a session: size first, then rate.
func (h *Handler) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": err.Error(),
		})
		return
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = DefaultSessionID
	}

	if len(req.Message) > h.guard.MaxMessageChars {
		h.logBlocked(c, sessionID, map[string]any{
			"reason": "payload_too_large",
			"chars":  len(req.Message),
		})
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{
			"error":   "payload_too_large",
			"message": fmt.Sprintf("Message too long. Max is %d chars.", h.guard.MaxMessageChars),
		})
		return
	}

	// A broken limiter fails open; losing rate limiting beats dropping
	// customer messages.
	res, err := h.limiter.Allow(c.Request.Context(), c.GetHeader("X-API-Key"), c.ClientIP(), h.guard.RequestsPerMinute)
	if err != nil {
		logx.Warn().Err(err).Msg("Rate limiter unavailable, allowing request")
	} else if !res.Allowed {
		h.logBlocked(c, sessionID, map[string]any{
			"reason": "rate_limited",
			"count":  res.Count,
		})
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":   "rate_limited",
			"message": "Too many requests. Please wait a minute and try again.",
		})
		return
	}

	result, err := h.runner.Invoke(c.Request.Context(), model.ChatInput{
		SessionID: sessionID,
		Message:   req.Message,
		OrderID:   req.OrderID,
		Email:     req.Email,
	})
	if err != nil {
		logx.Error().Err(err).Str("session_id", sessionID).Msg("Pipeline invocation failed")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Something went wrong. Please try again.",
		})
		return
	}

	c.JSON(http.StatusOK, chatResponseFrom(result))
}

// Health reports liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) logBlocked(c *gin.Context, sessionID string, payload map[string]any) {
	if h.logs == nil {
		return
	}
	entry := model.ActionLogEntry{
		SessionID: sessionID,
		EventType: model.EventBlockedRequest,
		Payload:   payload,
		TS:        time.Now().UTC(),
	}
	if err := h.logs.Append(c.Request.Context(), entry); err != nil {
		logx.Warn().Err(err).Str("session_id", sessionID).Msg("Failed to log blocked request")
	}
}
