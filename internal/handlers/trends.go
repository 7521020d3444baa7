package handlers

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"memebot/internal/models"
	"memebot/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type TrendHandler struct {
	db *gorm.DB
}

func NewTrendHandler(gdb *gorm.DB) *TrendHandler {
	return &TrendHandler{db: gdb}
}

// List returns stored trend records, most popular first.
func (h *TrendHandler) List(c *gin.Context) {
	limit := utils.StringToInt(c.DefaultQuery("limit", "20"), 20)
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	minScore, err := strconv.ParseFloat(c.DefaultQuery("min_score", "0"), 64)
	if err != nil {
		minScore = 0
	}

	var trends []models.TrendRecord
	q := h.db.Where("popularity >= ?", minScore).
		Order("popularity DESC").
		Limit(limit)
	if source := c.Query("source"); source != "" {
		q = q.Where("source = ?", source)
	}
	if err := q.Find(&trends).Error; err != nil {
		log.Printf("Error fetching trends: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"trends": trends, "count": len(trends)})
}

// Trending returns the hottest records captured in the last day.
func (h *TrendHandler) Trending(c *gin.Context) {
	limit := utils.StringToInt(c.DefaultQuery("limit", "10"), 10)
	if limit <= 0 || limit > 100 {
		limit = 10
	}

	cutoff := time.Now().Add(-24 * time.Hour)
	var trends []models.TrendRecord
	err := h.db.Where("captured_at >= ?", cutoff).
		Order("popularity DESC").
		Limit(limit).
		Find(&trends).Error
	if err != nil {
		log.Printf("Error fetching trending: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"trends": trends, "count": len(trends)})
}
