package handlers

import (
	"net/http"

	"memebot/internal/models"
	"memebot/internal/queue"
	"memebot/internal/services"
	"memebot/internal/utils"

	"github.com/gin-gonic/gin"
)

type QueueHandler struct {
	queue  *queue.Service
	poster *services.Poster
}

func NewQueueHandler(q *queue.Service, poster *services.Poster) *QueueHandler {
	return &QueueHandler{queue: q, poster: poster}
}

// List returns queue contents, newest first. ?status= filters; empty means
// all statuses.
func (h *QueueHandler) List(c *gin.Context) {
	status := models.CandidateStatus(c.Query("status"))
	if status != "" && !models.ValidStatus(status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown status filter"})
		return
	}

	limit := utils.StringToInt(c.DefaultQuery("limit", "20"), 20)
	offset := utils.StringToInt(c.DefaultQuery("offset", "0"), 0)

	items, err := h.queue.List(status, limit, offset)
	if err != nil {
		respondQueueError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"queue":  items,
		"count":  len(items),
		"limit":  limit,
		"offset": offset,
	})
}

func (h *QueueHandler) Get(c *gin.Context) {
	id, ok := utils.StringToUint(c.Param("id"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	item, err := h.queue.Get(id)
	if err != nil {
		respondQueueError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

type reviewRequest struct {
	Notes string `json:"notes"`
}

// Approve transitions pending -> approved. 409 if the candidate has already
// left pending.
func (h *QueueHandler) Approve(c *gin.Context) {
	id, ok := utils.StringToUint(c.Param("id"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var req reviewRequest
	_ = c.ShouldBindJSON(&req) // notes are optional

	item, err := h.queue.Approve(id, req.Notes)
	if err != nil {
		respondQueueError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// Reject transitions pending -> rejected.
func (h *QueueHandler) Reject(c *gin.Context) {
	id, ok := utils.StringToUint(c.Param("id"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var req reviewRequest
	_ = c.ShouldBindJSON(&req)

	item, err := h.queue.Reject(id, req.Notes)
	if err != nil {
		respondQueueError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

type markPostedRequest struct {
	ExternalPostID string `json:"external_post_id" binding:"required"`
}

// MarkPosted records that an approved candidate was published by hand.
func (h *QueueHandler) MarkPosted(c *gin.Context) {
	id, ok := utils.StringToUint(c.Param("id"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var req markPostedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "external_post_id is required"})
		return
	}

	item, err := h.queue.MarkPosted(id, req.ExternalPostID)
	if err != nil {
		respondQueueError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// Publish posts an approved candidate through the social API, then records
// the transition. A posting failure leaves the candidate approved.
func (h *QueueHandler) Publish(c *gin.Context) {
	id, ok := utils.StringToUint(c.Param("id"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	item, err := h.queue.Get(id)
	if err != nil {
		respondQueueError(c, err)
		return
	}
	if item.Status != models.StatusApproved {
		c.JSON(http.StatusConflict, gin.H{"error": "only approved candidates can be published"})
		return
	}

	postID, err := h.poster.Post(c.Request.Context(), item.Content)
	if err != nil {
		if err == services.ErrPostingDisabled {
			c.JSON(http.StatusConflict, gin.H{"error": "social posting is not configured"})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": "posting failed: " + err.Error()})
		return
	}

	item, err = h.queue.MarkPosted(id, postID)
	if err != nil {
		// The post went out but another caller raced the transition.
		respondQueueError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}
