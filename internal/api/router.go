package api

import (
	"github.com/gin-gonic/gin"
)

// NewRouter assembles the HTTP surface: a public health probe and the chat
// endpoint behind API key auth.
func NewRouter(h *Handler, apiKey string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger())

	r.GET("/health", h.Health)

	chat := r.Group("/", APIKeyAuth(apiKey))
	{
		chat.POST("/chat", h.Chat)
	}

	return r
}
