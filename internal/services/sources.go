package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"memebot/internal/models"

	"github.com/PuerkitoBio/goquery"
)

const scraperUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

func (c *Collector) get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", scraperUserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/json;q=0.9,*/*;q=0.8")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("HTTP status %d from %s", resp.StatusCode, url)
	}
	return resp, nil
}

// redditListing matches the subset of the listing payload we read.
type redditListing struct {
	Data struct {
		Children []struct {
			Data struct {
				Title       string  `json:"title"`
				Selftext    string  `json:"selftext"`
				Score       int     `json:"score"`
				NumComments int     `json:"num_comments"`
				Permalink   string  `json:"permalink"`
				CreatedUTC  float64 `json:"created_utc"`
			} `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

// fetchForum pulls hot posts from the monitored boards. Posts older than a
// day are skipped; hot listings surface stale stickies.
func (c *Collector) fetchForum(ctx context.Context, limit int) ([]models.TrendRecord, error) {
	var records []models.TrendRecord
	var lastErr error
	now := time.Now()

	for _, board := range c.subreddits {
		url := fmt.Sprintf("%s/r/%s/hot.json?limit=%d", c.forumBaseURL, board, limit)
		resp, err := c.get(ctx, url)
		if err != nil {
			lastErr = err
			continue
		}

		var listing redditListing
		err = json.NewDecoder(resp.Body).Decode(&listing)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("decode r/%s listing: %w", board, err)
			continue
		}

		for _, child := range listing.Data.Children {
			post := child.Data
			created := time.Unix(int64(post.CreatedUTC), 0)
			if now.Sub(created) > 24*time.Hour {
				continue
			}

			records = append(records, models.TrendRecord{
				Source:      models.SourceForum,
				Title:       c.clean(post.Title, 300),
				Description: c.clean(post.Selftext, 500),
				Popularity:  forumPopularity(post.Score, post.NumComments),
				URL:         "https://reddit.com" + post.Permalink,
				Metadata: map[string]string{
					"board":    board,
					"upvotes":  strconv.Itoa(post.Score),
					"comments": strconv.Itoa(post.NumComments),
				},
				CapturedAt: now,
			})
		}
	}

	// Only report failure when no board produced anything.
	if len(records) == 0 && lastErr != nil {
		return nil, lastErr
	}
	return records, nil
}

// forumPopularity weights upvotes against comments and normalizes to 0-100,
// treating 10k weighted engagement as a full score.
func forumPopularity(upvotes, comments int) float64 {
	engagement := float64(upvotes)*0.7 + float64(comments)*10*0.3
	score := engagement / 10000 * 100
	if score > 100 {
		score = 100
	}
	return score
}

// fetchSlangDictionary scrapes the slang dictionary front page for trending
// words and their top definitions.
func (c *Collector) fetchSlangDictionary(ctx context.Context, limit int) ([]models.TrendRecord, error) {
	resp, err := c.get(ctx, c.slangURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse slang dictionary page: %w", err)
	}

	now := time.Now()
	var records []models.TrendRecord

	doc.Find("a.word").EachWithBreak(func(i int, s *goquery.Selection) bool {
		if len(records) >= limit {
			return false
		}
		word := strings.TrimSpace(s.Text())
		if word == "" {
			return true
		}

		definition := ""
		if meaning := s.Closest("div").Find("div.meaning").First(); meaning.Length() > 0 {
			definition = meaning.Text()
		}

		records = append(records, models.TrendRecord{
			Source:      models.SourceSlangDict,
			Title:       c.clean(word, 300),
			Description: c.clean(definition, 500),
			Popularity:  50, // front-page placement is the only signal
			URL:         c.slangURL,
			Metadata:    map[string]string{"context_type": "slang"},
			CapturedAt:  now,
		})
		return true
	})

	return records, nil
}

// fetchMemeWiki scrapes the meme encyclopedia's trending table.
func (c *Collector) fetchMemeWiki(ctx context.Context, limit int) ([]models.TrendRecord, error) {
	resp, err := c.get(ctx, c.memeWikiURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse meme wiki page: %w", err)
	}

	base := c.memeWikiURL
	if idx := strings.Index(base, "/memes"); idx > 0 {
		base = base[:idx]
	}

	now := time.Now()
	var records []models.TrendRecord

	doc.Find("td.entry_info").EachWithBreak(func(i int, s *goquery.Selection) bool {
		if len(records) >= limit {
			return false
		}
		link := s.Find("a").First()
		name := strings.TrimSpace(link.Text())
		if name == "" {
			return true
		}

		href, _ := link.Attr("href")
		desc := s.Find("p").First().Text()

		records = append(records, models.TrendRecord{
			Source:      models.SourceMemeWiki,
			Title:       c.clean(name, 300),
			Description: c.clean(desc, 500),
			Popularity:  70, // curated trending list, high-confidence signal
			URL:         base + href,
			CapturedAt:  now,
		})
		return true
	})

	return records, nil
}

// fetchSearchTrends reads the daily search-trends RSS feed.
func (c *Collector) fetchSearchTrends(ctx context.Context, limit int) ([]models.TrendRecord, error) {
	feed, err := c.parser.ParseURLWithContext(c.trendsFeedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse trends feed: %w", err)
	}

	now := time.Now()
	var records []models.TrendRecord

	for _, item := range feed.Items {
		if len(records) >= limit {
			break
		}

		traffic := ""
		newsContext := ""
		if ht, ok := item.Extensions["ht"]; ok {
			if exts := ht["approx_traffic"]; len(exts) > 0 {
				traffic = exts[0].Value
			}
			if exts := ht["news_item"]; len(exts) > 0 {
				if titles := exts[0].Children["news_item_title"]; len(titles) > 0 {
					newsContext = titles[0].Value
				}
			}
		}

		records = append(records, models.TrendRecord{
			Source:      models.SourceSearch,
			Title:       c.clean(item.Title, 300),
			Description: c.clean(newsContext, 500),
			Popularity:  trafficPopularity(traffic),
			URL:         item.Link,
			Metadata:    map[string]string{"traffic": traffic},
			CapturedAt:  now,
		})
	}

	return records, nil
}

// trafficPopularity estimates a 0-100 score from traffic strings like
// "500K+" or "2M+". 1M searches counts for 20 points, 100K for 10.
func trafficPopularity(traffic string) float64 {
	s := strings.ReplaceAll(traffic, ",", "")
	s = strings.TrimSuffix(s, "+")
	if s == "" {
		return 50
	}

	var score float64
	switch {
	case strings.HasSuffix(s, "M"):
		n, err := strconv.ParseFloat(strings.TrimSuffix(s, "M"), 64)
		if err != nil {
			return 50
		}
		score = n * 20
	case strings.HasSuffix(s, "K"):
		n, err := strconv.ParseFloat(strings.TrimSuffix(s, "K"), 64)
		if err != nil {
			return 50
		}
		score = n / 10
	default:
		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 50
		}
		score = n / 10000
	}

	if score > 100 {
		score = 100
	}
	return score
}
