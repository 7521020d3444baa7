package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"memebot/internal/db"
	"memebot/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTrendsRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	h := NewTrendHandler(gdb)
	r := gin.New()
	r.GET("/health", Health)
	r.GET("/api/trends", h.List)
	r.GET("/api/trends/trending", h.Trending)
	return r, gdb
}

func seedTrends(t *testing.T, gdb *gorm.DB) {
	t.Helper()
	now := time.Now()
	records := []models.TrendRecord{
		{Source: models.SourceForum, Title: "fresh and hot", Popularity: 90, CapturedAt: now},
		{Source: models.SourceSlangDict, Title: "fresh and mild", Popularity: 40, CapturedAt: now},
		{Source: models.SourceMemeWiki, Title: "two days old", Popularity: 95, CapturedAt: now.Add(-48 * time.Hour)},
	}
	if err := gdb.Create(&records).Error; err != nil {
		t.Fatalf("seed trends: %v", err)
	}
}

type trendsResponse struct {
	Trends []models.TrendRecord `json:"trends"`
	Count  int                  `json:"count"`
}

func getTrends(t *testing.T, r *gin.Engine, path string) trendsResponse {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", path, nil))
	if w.Code != http.StatusOK {
		t.Fatalf("GET %s status = %d, body = %s", path, w.Code, w.Body.String())
	}
	var resp trendsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return resp
}

func TestTrendsListOrdersByPopularity(t *testing.T) {
	r, gdb := newTrendsRouter(t)
	seedTrends(t, gdb)

	resp := getTrends(t, r, "/api/trends")
	if resp.Count != 3 {
		t.Fatalf("count = %d, want 3", resp.Count)
	}
	if resp.Trends[0].Title != "two days old" || resp.Trends[2].Title != "fresh and mild" {
		t.Errorf("order wrong: %s / %s / %s", resp.Trends[0].Title, resp.Trends[1].Title, resp.Trends[2].Title)
	}
}

func TestTrendsListFilters(t *testing.T) {
	r, gdb := newTrendsRouter(t)
	seedTrends(t, gdb)

	resp := getTrends(t, r, "/api/trends?min_score=80")
	if resp.Count != 2 {
		t.Errorf("min_score filter count = %d, want 2", resp.Count)
	}

	resp = getTrends(t, r, "/api/trends?source=forum")
	if resp.Count != 1 || resp.Trends[0].Source != models.SourceForum {
		t.Errorf("source filter got %+v", resp.Trends)
	}

	resp = getTrends(t, r, "/api/trends?limit=1")
	if resp.Count != 1 {
		t.Errorf("limit=1 count = %d", resp.Count)
	}
}

func TestTrendingExcludesOldRecords(t *testing.T) {
	r, gdb := newTrendsRouter(t)
	seedTrends(t, gdb)

	resp := getTrends(t, r, "/api/trends/trending")
	if resp.Count != 2 {
		t.Fatalf("count = %d, want 2 (old record excluded)", resp.Count)
	}
	for _, trend := range resp.Trends {
		if trend.Title == "two days old" {
			t.Error("stale record returned by trending")
		}
	}
	if resp.Trends[0].Title != "fresh and hot" {
		t.Errorf("first = %q, want highest popularity", resp.Trends[0].Title)
	}
}

func TestHealthEndpoint(t *testing.T) {
	r, _ := newTrendsRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["status"] != "healthy" {
		t.Errorf("status = %q, want healthy", resp["status"])
	}
	if _, err := time.Parse(time.RFC3339, resp["timestamp"]); err != nil {
		t.Errorf("timestamp %q not RFC3339: %v", resp["timestamp"], err)
	}
}
