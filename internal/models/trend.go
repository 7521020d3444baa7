package models

import (
	"time"
)

// TrendSource identifies which external source a trend record came from.
type TrendSource string

const (
	SourceForum     TrendSource = "forum"
	SourceSlangDict TrendSource = "slang-dictionary"
	SourceMemeWiki  TrendSource = "meme-wiki"
	SourceSearch    TrendSource = "search-trends"
)

// AllTrendSources lists every source the collector knows about.
var AllTrendSources = []TrendSource{SourceForum, SourceSlangDict, SourceMemeWiki, SourceSearch}

// TrendRecord is one observed trending item, normalized across sources.
// Records are immutable after creation and pruned by age (see collector).
type TrendRecord struct {
	ID          uint              `gorm:"primaryKey" json:"id"`
	Source      TrendSource       `gorm:"size:50;not null;index:idx_source_title" json:"source"`
	Title       string            `gorm:"size:300;not null;index:idx_source_title" json:"title"`
	Description string            `gorm:"type:text" json:"description"`
	Popularity  float64           `gorm:"not null;default:0" json:"popularity"` // 0-100
	URL         string            `gorm:"size:500" json:"url"`
	Metadata    map[string]string `gorm:"serializer:json" json:"metadata"`
	CapturedAt  time.Time         `gorm:"not null;index" json:"captured_at"`
	CreatedAt   time.Time         `json:"created_at"`
}

// Context renders the trend as prompt context for generation.
func (t *TrendRecord) Context() string {
	if t.Description == "" {
		return t.Title
	}
	desc := t.Description
	if len(desc) > 200 {
		desc = desc[:200]
	}
	return t.Title + " - " + desc
}
