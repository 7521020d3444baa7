// Package scheduler runs the two timer loops that drive the pipeline: a
// scrape tick that refreshes trend records and a generation tick that drafts
// one candidate into the review queue.
package scheduler

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"memebot/internal/models"
	"memebot/internal/services"
)

const defaultIronyLevel = "post-ironic"

// TrendCollector is the slice of the collector the bot needs.
type TrendCollector interface {
	Collect(ctx context.Context, sources []models.TrendSource, limit int) []models.TrendRecord
	StoreTrends(records []models.TrendRecord) error
	PruneOldTrends(retention time.Duration) error
}

// ContentDrafter produces one pending candidate.
type ContentDrafter interface {
	Draft(ctx context.Context, trend *models.TrendRecord, ironyLevel string, useTrend bool) (*models.ContentCandidate, error)
}

// CandidateStore persists drafted candidates.
type CandidateStore interface {
	Create(c *models.ContentCandidate) error
}

// Options configure a Bot. Intervals are injected rather than read from the
// environment so tests can run ticks at millisecond scale.
type Options struct {
	GenerateInterval time.Duration
	ScrapeInterval   time.Duration
	TrendRetention   time.Duration
	PerSourceLimit   int
}

// Bot is the process-scoped supervised task with an explicit start/stop
// lifecycle. One Bot per process.
type Bot struct {
	collector TrendCollector
	drafter   ContentDrafter
	store     CandidateStore
	cache     *services.TrendCache
	opts      Options

	// At-most-one tick of each kind in flight; an overlapping tick is
	// skipped, never queued.
	generating atomic.Bool
	scraping   atomic.Bool

	mu           sync.Mutex
	running      bool
	lastGenerate time.Time
	lastScrape   time.Time

	stop chan struct{}
	wg   sync.WaitGroup
}

func New(collector TrendCollector, drafter ContentDrafter, store CandidateStore, cache *services.TrendCache, opts Options) *Bot {
	if opts.PerSourceLimit <= 0 {
		opts.PerSourceLimit = 20
	}
	return &Bot{
		collector: collector,
		drafter:   drafter,
		store:     store,
		cache:     cache,
		opts:      opts,
	}
}

// Start launches the timer loop. Both jobs also run once immediately so the
// queue does not sit empty right after a deploy. Ticks missed while
// the process was down are not made up: the first post-restart tick is the
// immediate one, and the intervals restart from there.
func (b *Bot) Start() {
	b.mu.Lock()
	if b.running {
		b.mu.Unlock()
		return
	}
	b.running = true
	b.stop = make(chan struct{})
	b.mu.Unlock()

	log.Printf("Bot starting: generation every %s, trend scraping every %s",
		b.opts.GenerateInterval, b.opts.ScrapeInterval)

	b.wg.Add(1)
	go b.loop()
}

func (b *Bot) loop() {
	defer b.wg.Done()

	generateTicker := time.NewTicker(b.opts.GenerateInterval)
	defer generateTicker.Stop()
	scrapeTicker := time.NewTicker(b.opts.ScrapeInterval)
	defer scrapeTicker.Stop()

	// Immediate first pass: scrape so generation has something to work with.
	b.runAsync(b.ScrapeTick)
	b.runAsync(b.GenerateTick)

	for {
		select {
		case <-scrapeTicker.C:
			b.runAsync(b.ScrapeTick)
		case <-generateTicker.C:
			b.runAsync(b.GenerateTick)
		case <-b.stop:
			return
		}
	}
}

func (b *Bot) runAsync(tick func()) {
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		tick()
	}()
}

// Stop halts the timer loop and waits for any in-flight tick to finish.
// External calls already underway are awaited, not cancelled.
func (b *Bot) Stop() {
	b.mu.Lock()
	if !b.running {
		b.mu.Unlock()
		return
	}
	b.running = false
	close(b.stop)
	b.mu.Unlock()

	b.wg.Wait()
	log.Println("Bot stopped")
}

// ScrapeTick collects from every source, stores and caches the batch, and
// prunes records past the retention window. Skipped if the previous scrape
// is still running.
func (b *Bot) ScrapeTick() {
	if !b.scraping.CompareAndSwap(false, true) {
		log.Println("Previous scrape still in flight, skipping tick")
		return
	}
	defer b.scraping.Store(false)

	ctx := context.Background()
	records := b.collector.Collect(ctx, models.AllTrendSources, b.opts.PerSourceLimit)
	if len(records) == 0 {
		log.Println("Scrape tick produced no trends")
		return
	}

	if err := b.collector.StoreTrends(records); err != nil {
		// Store failure is not fatal to the process; the next tick retries.
		log.Printf("Error storing trends: %v", err)
		return
	}
	b.cache.SetLatest(records)

	if err := b.collector.PruneOldTrends(b.opts.TrendRetention); err != nil {
		log.Printf("Error pruning trends: %v", err)
	}

	b.mu.Lock()
	b.lastScrape = time.Now()
	b.mu.Unlock()
	log.Printf("Scrape tick complete: %d trends stored", len(records))
}

// GenerateTick drafts exactly one candidate into the review queue, seeded by
// the most recent cached trend batch (or a fresh collection when the cache is
// cold). A generation failure skips the tick; there is no retry until the
// next interval.
func (b *Bot) GenerateTick() {
	if !b.generating.CompareAndSwap(false, true) {
		log.Println("Previous generation still in flight, skipping tick")
		return
	}
	defer b.generating.Store(false)

	ctx := context.Background()

	records := b.cache.Latest()
	if records == nil {
		records = b.collector.Collect(ctx, models.AllTrendSources, b.opts.PerSourceLimit)
		if len(records) > 0 {
			if err := b.collector.StoreTrends(records); err != nil {
				log.Printf("Error storing trends: %v", err)
			}
			b.cache.SetLatest(records)
		}
	}

	trend := hottest(records)
	candidate, err := b.drafter.Draft(ctx, trend, defaultIronyLevel, trend != nil)
	if err != nil {
		log.Printf("Generation tick skipped: %v", err)
		return
	}

	if err := b.store.Create(candidate); err != nil {
		log.Printf("Error queueing candidate: %v", err)
		return
	}

	b.mu.Lock()
	b.lastGenerate = time.Now()
	b.mu.Unlock()

	preview := candidate.Content
	if len(preview) > 80 {
		preview = preview[:80]
	}
	log.Printf("Candidate %d queued (score %.1f): %s", candidate.ID, candidate.QualityScore, preview)
}

// hottest picks the highest-popularity trend from a batch.
func hottest(records []models.TrendRecord) *models.TrendRecord {
	var best *models.TrendRecord
	for i := range records {
		if best == nil || records[i].Popularity > best.Popularity {
			best = &records[i]
		}
	}
	return best
}

// Status is a point-in-time snapshot for the status endpoint.
type Status struct {
	Running               bool       `json:"running"`
	GenerateIntervalHours float64    `json:"generate_interval_hours"`
	ScrapeIntervalHours   float64    `json:"scrape_interval_hours"`
	LastGenerate          *time.Time `json:"last_generate"`
	LastScrape            *time.Time `json:"last_scrape"`
}

func (b *Bot) Status() Status {
	b.mu.Lock()
	defer b.mu.Unlock()

	s := Status{
		Running:               b.running,
		GenerateIntervalHours: b.opts.GenerateInterval.Hours(),
		ScrapeIntervalHours:   b.opts.ScrapeInterval.Hours(),
	}
	if !b.lastGenerate.IsZero() {
		t := b.lastGenerate
		s.LastGenerate = &t
	}
	if !b.lastScrape.IsZero() {
		t := b.lastScrape
		s.LastScrape = &t
	}
	return s
}
