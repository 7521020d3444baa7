package models

import (
	"time"
)

// CandidateStatus is the review lifecycle state of a generated candidate.
type CandidateStatus string

const (
	StatusPending  CandidateStatus = "pending"
	StatusApproved CandidateStatus = "approved"
	StatusRejected CandidateStatus = "rejected"
	StatusPosted   CandidateStatus = "posted"
)

// transitions is the complete set of legal status moves. Everything not
// listed here is an invalid transition; rejected and posted are terminal.
var transitions = map[CandidateStatus][]CandidateStatus{
	StatusPending:  {StatusApproved, StatusRejected},
	StatusApproved: {StatusPosted},
}

// CanTransition reports whether moving from one status to another is legal.
func CanTransition(from, to CandidateStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ValidStatus reports whether s is one of the four known statuses.
func ValidStatus(s CandidateStatus) bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusPosted:
		return true
	}
	return false
}

// ContentCandidate is one AI-drafted post awaiting a human decision.
// Quality scores are set at creation and never re-computed.
type ContentCandidate struct {
	ID         uint     `gorm:"primaryKey" json:"id"`
	Content    string   `gorm:"type:text;not null" json:"content"`
	MemeFormat string   `gorm:"size:100" json:"meme_format"`
	IronyLevel string   `gorm:"size:50" json:"irony_level"`
	Topics     []string `gorm:"serializer:json" json:"topics"`

	// Weak reference to the trend this was generated from, if any.
	TrendID      *uint  `gorm:"index" json:"trend_id"`
	TrendContext string `gorm:"type:text" json:"trend_context"`

	HumorScore        float64 `gorm:"default:0" json:"humor_score"`        // 0-10
	AuthenticityScore float64 `gorm:"default:0" json:"authenticity_score"` // 0-10
	EngagementScore   float64 `gorm:"default:0" json:"engagement_score"`   // 0-10
	QualityScore      float64 `gorm:"default:0" json:"quality_score"`      // mean of the three

	Status        CandidateStatus `gorm:"size:20;not null;default:'pending';index" json:"status"`
	ReviewedAt    *time.Time      `json:"reviewed_at"`
	ReviewerNotes string          `gorm:"type:text" json:"reviewer_notes"`

	// Set exactly once, together, when status becomes posted.
	PostedAt       *time.Time `json:"posted_at"`
	ExternalPostID string     `gorm:"size:100" json:"external_post_id"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
