package handlers

import (
	"log"
	"net/http"

	"memebot/internal/models"
	"memebot/internal/queue"

	"github.com/gin-gonic/gin"
)

// ReviewHandler renders the human review page. All mutations go through the
// JSON queue API; this page only reads.
type ReviewHandler struct {
	queue *queue.Service
}

func NewReviewHandler(q *queue.Service) *ReviewHandler {
	return &ReviewHandler{queue: q}
}

func (h *ReviewHandler) Page(c *gin.Context) {
	status := models.CandidateStatus(c.DefaultQuery("status", string(models.StatusPending)))
	if !models.ValidStatus(status) {
		status = models.StatusPending
	}

	items, err := h.queue.List(status, 50, 0)
	if err != nil {
		log.Printf("Error loading review queue: %v", err)
		c.HTML(http.StatusInternalServerError, "review/queue.html", gin.H{
			"Title": "Review Queue",
			"Error": "Could not load the queue",
		})
		return
	}

	counts, err := h.queue.CountByStatus()
	if err != nil {
		log.Printf("Error counting queue: %v", err)
		counts = map[models.CandidateStatus]int64{}
	}

	c.HTML(http.StatusOK, "review/queue.html", gin.H{
		"Title":         "Review Queue",
		"Items":         items,
		"Status":        string(status),
		"PendingCount":  counts[models.StatusPending],
		"ApprovedCount": counts[models.StatusApproved],
		"RejectedCount": counts[models.StatusRejected],
		"PostedCount":   counts[models.StatusPosted],
	})
}
