// Package queue owns the content_candidates table and its review lifecycle:
// pending -> approved -> posted, pending -> rejected. All transitions are
// conditional updates on the stored status, so two callers racing on the same
// candidate cannot both win.
package queue

import (
	"errors"
	"fmt"
	"time"

	"memebot/internal/models"

	"gorm.io/gorm"
)

var (
	// ErrNotFound means no candidate exists with the given id.
	ErrNotFound = errors.New("candidate not found")

	// ErrInvalidTransition means the candidate exists but its current status
	// does not allow the requested transition.
	ErrInvalidTransition = errors.New("invalid status transition")
)

// Service exposes the review queue operations over a gorm store.
type Service struct {
	db *gorm.DB

	// now is swappable for tests.
	now func() time.Time
}

func NewService(gdb *gorm.DB) *Service {
	return &Service{db: gdb, now: time.Now}
}

// Create inserts a new candidate. The scheduler is the only writer that
// creates rows; status is forced to pending regardless of the input.
func (s *Service) Create(c *models.ContentCandidate) error {
	c.Status = models.StatusPending
	if err := s.db.Create(c).Error; err != nil {
		return fmt.Errorf("store candidate: %w", err)
	}
	return nil
}

// Get returns a single candidate by id.
func (s *Service) Get(id uint) (*models.ContentCandidate, error) {
	var c models.ContentCandidate
	if err := s.db.First(&c, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load candidate %d: %w", id, err)
	}
	return &c, nil
}

// List returns candidates ordered by created_at descending. An empty status
// filter returns every status.
func (s *Service) List(status models.CandidateStatus, limit, offset int) ([]models.ContentCandidate, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	q := s.db.Model(&models.ContentCandidate{})
	if status != "" {
		q = q.Where("status = ?", status)
	}

	var items []models.ContentCandidate
	if err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}
	return items, nil
}

// Approve moves a pending candidate to approved.
func (s *Service) Approve(id uint, notes string) (*models.ContentCandidate, error) {
	now := s.now()
	return s.transition(id, models.StatusPending, map[string]interface{}{
		"status":         models.StatusApproved,
		"reviewed_at":    &now,
		"reviewer_notes": notes,
	})
}

// Reject moves a pending candidate to rejected. Rejected is terminal.
func (s *Service) Reject(id uint, notes string) (*models.ContentCandidate, error) {
	now := s.now()
	return s.transition(id, models.StatusPending, map[string]interface{}{
		"status":         models.StatusRejected,
		"reviewed_at":    &now,
		"reviewer_notes": notes,
	})
}

// MarkPosted moves an approved candidate to posted, recording when and under
// which external identifier it went out. posted_at and external_post_id are
// written exactly once, in the same update that flips the status.
func (s *Service) MarkPosted(id uint, externalPostID string) (*models.ContentCandidate, error) {
	now := s.now()
	return s.transition(id, models.StatusApproved, map[string]interface{}{
		"status":           models.StatusPosted,
		"posted_at":        &now,
		"external_post_id": externalPostID,
	})
}

// transition performs a compare-and-set on the status column. The WHERE
// clause carries the expected current status, so a concurrent transition on
// the same row makes this update match zero rows instead of overwriting.
func (s *Service) transition(id uint, expect models.CandidateStatus, updates map[string]interface{}) (*models.ContentCandidate, error) {
	res := s.db.Model(&models.ContentCandidate{}).
		Where("id = ? AND status = ?", id, expect).
		Updates(updates)
	if res.Error != nil {
		return nil, fmt.Errorf("update candidate %d: %w", id, res.Error)
	}

	if res.RowsAffected == 0 {
		// Lost the race or never eligible. Re-read to tell 404 from 409.
		if _, err := s.Get(id); err != nil {
			return nil, err
		}
		return nil, ErrInvalidTransition
	}

	return s.Get(id)
}

// CountByStatus returns how many candidates sit in each status. Feeds the
// review page header.
func (s *Service) CountByStatus() (map[models.CandidateStatus]int64, error) {
	type row struct {
		Status models.CandidateStatus
		N      int64
	}
	var rows []row
	err := s.db.Model(&models.ContentCandidate{}).
		Select("status, count(*) as n").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("count candidates: %w", err)
	}

	counts := make(map[models.CandidateStatus]int64, len(rows))
	for _, r := range rows {
		counts[r.Status] = r.N
	}
	return counts, nil
}
