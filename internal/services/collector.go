package services

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"memebot/internal/models"

	"github.com/microcosm-cc/bluemonday"
	"github.com/mmcdole/gofeed"
	"gorm.io/gorm"
)

// Collector fetches "what's currently popular" from the external trend
// sources and normalizes the results into TrendRecord rows. A failure from
// one source never aborts collection from the others.
type Collector struct {
	db        *gorm.DB
	client    *http.Client
	parser    *gofeed.Parser
	sanitizer *bluemonday.Policy

	subreddits []string

	// Source endpoints, overridable in tests.
	forumBaseURL  string
	slangURL      string
	memeWikiURL   string
	trendsFeedURL string
}

func NewCollector(gdb *gorm.DB, subreddits []string) *Collector {
	client := &http.Client{
		Timeout: 15 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        10,
			IdleConnTimeout:     30 * time.Second,
			MaxIdleConnsPerHost: 2,
		},
	}

	parser := gofeed.NewParser()
	parser.Client = client

	return &Collector{
		db:            gdb,
		client:        client,
		parser:        parser,
		sanitizer:     bluemonday.StrictPolicy(),
		subreddits:    subreddits,
		forumBaseURL:  "https://www.reddit.com",
		slangURL:      "https://www.urbandictionary.com",
		memeWikiURL:   "https://knowyourmeme.com/memes/trending",
		trendsFeedURL: "https://trends.google.com/trends/trendingsearches/daily/rss?geo=US",
	}
}

// Collect fetches each requested source independently, capped at limit
// records per source. Source failures are logged and skipped; the pass
// returns whatever the remaining sources produced. Within a source the
// source's natural order ("hottest first") is preserved; records are
// deduplicated by (source, normalized title) within this pass only.
func (c *Collector) Collect(ctx context.Context, sources []models.TrendSource, limit int) []models.TrendRecord {
	if limit <= 0 {
		limit = 20
	}

	var all []models.TrendRecord
	seen := make(map[string]bool)

	for _, source := range sources {
		var records []models.TrendRecord
		var err error

		switch source {
		case models.SourceForum:
			records, err = c.fetchForum(ctx, limit)
		case models.SourceSlangDict:
			records, err = c.fetchSlangDictionary(ctx, limit)
		case models.SourceMemeWiki:
			records, err = c.fetchMemeWiki(ctx, limit)
		case models.SourceSearch:
			records, err = c.fetchSearchTrends(ctx, limit)
		default:
			log.Printf("Unknown trend source %q, skipping", source)
			continue
		}

		if err != nil {
			log.Printf("Collection from %s failed: %v", source, err)
			continue
		}

		for _, r := range records {
			key := string(r.Source) + "\x00" + normalizeTitle(r.Title)
			if r.Title == "" || seen[key] {
				continue
			}
			seen[key] = true
			all = append(all, r)
		}
		log.Printf("Collected %d trends from %s", len(records), source)
	}

	return all
}

// StoreTrends persists a collected batch. Trend records are immutable;
// each pass inserts fresh rows.
func (c *Collector) StoreTrends(records []models.TrendRecord) error {
	if len(records) == 0 {
		return nil
	}
	if err := c.db.Create(&records).Error; err != nil {
		return fmt.Errorf("store trends: %w", err)
	}
	return nil
}

// PruneOldTrends deletes records captured before the retention window.
// Without this the table grows without bound.
func (c *Collector) PruneOldTrends(retention time.Duration) error {
	cutoff := time.Now().Add(-retention)
	res := c.db.Where("captured_at < ?", cutoff).Delete(&models.TrendRecord{})
	if res.Error != nil {
		return fmt.Errorf("prune trends: %w", res.Error)
	}
	if res.RowsAffected > 0 {
		log.Printf("Pruned %d trend records older than %s", res.RowsAffected, retention)
	}
	return nil
}

// clean strips any markup from scraped text and caps its length.
func (c *Collector) clean(s string, max int) string {
	s = strings.TrimSpace(c.sanitizer.Sanitize(s))
	if len(s) > max {
		s = s[:max]
	}
	return s
}

func normalizeTitle(title string) string {
	return strings.Join(strings.Fields(strings.ToLower(title)), " ")
}
