package handlers

import (
	"net/http"
	"time"

	"memebot/internal/scheduler"

	"github.com/gin-gonic/gin"
)

// Health reports process liveness only; it deliberately does not probe the
// database or external services.
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

type StatusHandler struct {
	bot     *scheduler.Bot
	enabled bool
}

func NewStatusHandler(bot *scheduler.Bot, enabled bool) *StatusHandler {
	return &StatusHandler{bot: bot, enabled: enabled}
}

// Status exposes the scheduler snapshot for monitoring.
func (h *StatusHandler) Status(c *gin.Context) {
	resp := gin.H{"enabled": h.enabled}
	if h.bot != nil {
		resp["scheduler"] = h.bot.Status()
	}
	c.JSON(http.StatusOK, resp)
}
