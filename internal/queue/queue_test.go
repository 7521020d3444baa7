package queue

import (
	"errors"
	"sync"
	"testing"

	"memebot/internal/db"
	"memebot/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestService(t *testing.T) *Service {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return NewService(gdb)
}

func createPending(t *testing.T, s *Service) *models.ContentCandidate {
	t.Helper()
	c := &models.ContentCandidate{
		Content:           "me when the build is green on the first try",
		IronyLevel:        "post-ironic",
		HumorScore:        7,
		AuthenticityScore: 6,
		EngagementScore:   8,
		QualityScore:      7,
	}
	if err := s.Create(c); err != nil {
		t.Fatalf("create candidate: %v", err)
	}
	return c
}

func TestCreateForcesPending(t *testing.T) {
	s := newTestService(t)

	c := &models.ContentCandidate{Content: "hello", Status: models.StatusApproved}
	if err := s.Create(c); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := s.Get(c.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != models.StatusPending {
		t.Errorf("status = %s, want pending", got.Status)
	}
}

func TestApproveThenMarkPosted(t *testing.T) {
	s := newTestService(t)
	c := createPending(t, s)

	approved, err := s.Approve(c.ID, "looks good")
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if approved.Status != models.StatusApproved {
		t.Errorf("status = %s, want approved", approved.Status)
	}
	if approved.ReviewedAt == nil {
		t.Error("reviewed_at not set on approve")
	}
	if approved.PostedAt != nil || approved.ExternalPostID != "" {
		t.Error("posted fields set before mark-posted")
	}

	posted, err := s.MarkPosted(c.ID, "1234567890")
	if err != nil {
		t.Fatalf("mark posted: %v", err)
	}
	if posted.Status != models.StatusPosted {
		t.Errorf("status = %s, want posted", posted.Status)
	}
	if posted.PostedAt == nil {
		t.Error("posted_at not set")
	}
	if posted.ExternalPostID != "1234567890" {
		t.Errorf("external_post_id = %q, want 1234567890", posted.ExternalPostID)
	}
}

func TestDoubleApproveFails(t *testing.T) {
	s := newTestService(t)
	c := createPending(t, s)

	if _, err := s.Approve(c.ID, ""); err != nil {
		t.Fatalf("first approve: %v", err)
	}

	_, err := s.Approve(c.ID, "")
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("second approve error = %v, want ErrInvalidTransition", err)
	}

	got, _ := s.Get(c.ID)
	if got.Status != models.StatusApproved {
		t.Errorf("status after double approve = %s, want approved", got.Status)
	}
}

func TestRejectApprovedFails(t *testing.T) {
	s := newTestService(t)
	c := createPending(t, s)

	if _, err := s.Approve(c.ID, ""); err != nil {
		t.Fatalf("approve: %v", err)
	}

	if _, err := s.Reject(c.ID, ""); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("reject approved error = %v, want ErrInvalidTransition", err)
	}
}

func TestMarkPostedRequiresApproved(t *testing.T) {
	s := newTestService(t)
	c := createPending(t, s)

	if _, err := s.MarkPosted(c.ID, "99"); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("mark-posted on pending error = %v, want ErrInvalidTransition", err)
	}

	got, _ := s.Get(c.ID)
	if got.Status != models.StatusPending || got.PostedAt != nil || got.ExternalPostID != "" {
		t.Errorf("pending candidate mutated by failed mark-posted: %+v", got)
	}
}

func TestRejectedIsTerminal(t *testing.T) {
	s := newTestService(t)
	c := createPending(t, s)

	if _, err := s.Reject(c.ID, "not funny"); err != nil {
		t.Fatalf("reject: %v", err)
	}

	if _, err := s.Approve(c.ID, ""); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("approve after reject error = %v, want ErrInvalidTransition", err)
	}
	if _, err := s.MarkPosted(c.ID, "1"); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("mark-posted after reject error = %v, want ErrInvalidTransition", err)
	}
}

func TestUnknownIDIsNotFound(t *testing.T) {
	s := newTestService(t)

	if _, err := s.Get(12345); !errors.Is(err, ErrNotFound) {
		t.Errorf("get error = %v, want ErrNotFound", err)
	}
	if _, err := s.Approve(12345, ""); !errors.Is(err, ErrNotFound) {
		t.Errorf("approve error = %v, want ErrNotFound", err)
	}
}

// Racing approve and reject on the same pending candidate: exactly one wins,
// the loser sees ErrInvalidTransition, and the stored status reflects only
// the winner.
func TestConcurrentTransitionsExactlyOneWins(t *testing.T) {
	s := newTestService(t)
	c := createPending(t, s)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	start := make(chan struct{})

	wg.Add(2)
	go func() {
		defer wg.Done()
		<-start
		_, errs[0] = s.Approve(c.ID, "")
	}()
	go func() {
		defer wg.Done()
		<-start
		_, errs[1] = s.Reject(c.ID, "")
	}()
	close(start)
	wg.Wait()

	var wins, conflicts int
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, ErrInvalidTransition):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if wins != 1 || conflicts != 1 {
		t.Fatalf("wins = %d, conflicts = %d, want exactly one of each", wins, conflicts)
	}

	got, err := s.Get(c.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != models.StatusApproved && got.Status != models.StatusRejected {
		t.Errorf("final status = %s, want approved or rejected", got.Status)
	}
}

func TestListFiltersAndOrders(t *testing.T) {
	s := newTestService(t)

	first := createPending(t, s)
	second := createPending(t, s)
	third := createPending(t, s)
	if _, err := s.Approve(second.ID, ""); err != nil {
		t.Fatalf("approve: %v", err)
	}

	pending, err := s.List(models.StatusPending, 10, 0)
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("pending count = %d, want 2", len(pending))
	}

	all, err := s.List("", 10, 0)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("all count = %d, want 3", len(all))
	}
	// Newest first.
	if all[len(all)-1].ID != first.ID {
		t.Errorf("oldest candidate not last: got id %d, want %d", all[len(all)-1].ID, first.ID)
	}
	_ = third
}

func TestCountByStatus(t *testing.T) {
	s := newTestService(t)

	a := createPending(t, s)
	createPending(t, s)
	if _, err := s.Reject(a.ID, ""); err != nil {
		t.Fatalf("reject: %v", err)
	}

	counts, err := s.CountByStatus()
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if counts[models.StatusPending] != 1 || counts[models.StatusRejected] != 1 {
		t.Errorf("counts = %v, want 1 pending and 1 rejected", counts)
	}
}
