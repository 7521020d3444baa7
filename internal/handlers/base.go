package handlers

import (
	"errors"
	"log"
	"net/http"

	"memebot/internal/queue"

	"github.com/gin-gonic/gin"
)

// respondQueueError maps queue errors onto the API contract: 404 for unknown
// ids, 409 for precondition failures, 500 for store trouble.
func respondQueueError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, queue.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "candidate not found"})
	case errors.Is(err, queue.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": "invalid status transition"})
	default:
		log.Printf("Queue operation failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
