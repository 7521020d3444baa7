package services

import (
	"context"
	"errors"
	"testing"

	"memebot/internal/models"
)

// fakeLLM scripts the two model calls the drafter makes.
type fakeLLM struct {
	draft   *MemeDraft
	genErr  error
	eval    *MemeEvaluation
	evalErr error

	gotContext string
	gotIrony   string
}

func (f *fakeLLM) GenerateMeme(ctx context.Context, trendContext, ironyLevel string) (*MemeDraft, error) {
	f.gotContext = trendContext
	f.gotIrony = ironyLevel
	if f.genErr != nil {
		return nil, f.genErr
	}
	return f.draft, nil
}

func (f *fakeLLM) EvaluateMeme(ctx context.Context, text string) (*MemeEvaluation, error) {
	if f.evalErr != nil {
		return nil, f.evalErr
	}
	return f.eval, nil
}

func TestDraftWithTrend(t *testing.T) {
	llm := &fakeLLM{
		draft: &MemeDraft{Text: "me watching the trend cycle repeat", Format: "reaction", Topics: []string{"cycles"}},
		eval:  &MemeEvaluation{HumorScore: 9, AuthenticityScore: 6, EngagementScore: 6},
	}
	d := NewDrafter(llm)

	trend := &models.TrendRecord{Source: models.SourceMemeWiki, Title: "Trend Cycle"}
	trend.ID = 42

	c, err := d.Draft(context.Background(), trend, "meta-ironic", true)
	if err != nil {
		t.Fatalf("draft: %v", err)
	}

	if c.Status != models.StatusPending {
		t.Errorf("status = %s, want pending", c.Status)
	}
	if c.Content != llm.draft.Text {
		t.Errorf("content = %q", c.Content)
	}
	if c.TrendID == nil || *c.TrendID != 42 {
		t.Errorf("trend_id = %v, want 42", c.TrendID)
	}
	if c.QualityScore != 7 {
		t.Errorf("quality = %f, want mean of 9,6,6", c.QualityScore)
	}
	if llm.gotIrony != "meta-ironic" {
		t.Errorf("irony passed to model = %q", llm.gotIrony)
	}
	if llm.gotContext != trend.Context() {
		t.Errorf("context passed to model = %q", llm.gotContext)
	}
}

func TestDraftWithoutTrendUsesFallbackContext(t *testing.T) {
	llm := &fakeLLM{
		draft: &MemeDraft{Text: "no trend needed"},
		eval:  &MemeEvaluation{HumorScore: 5, AuthenticityScore: 5, EngagementScore: 5},
	}
	d := NewDrafter(llm)

	c, err := d.Draft(context.Background(), nil, "post-ironic", false)
	if err != nil {
		t.Fatalf("draft: %v", err)
	}

	if c.TrendID != nil {
		t.Errorf("trend_id = %v, want nil", c.TrendID)
	}
	if llm.gotContext == "" {
		t.Error("no fallback context passed to model")
	}
	if c.TrendContext != llm.gotContext {
		t.Errorf("stored context %q != prompted context %q", c.TrendContext, llm.gotContext)
	}
}

func TestDraftGenerationErrorSurfaces(t *testing.T) {
	genErr := &GenerationError{Op: "generate", Err: errors.New("model down")}
	d := NewDrafter(&fakeLLM{genErr: genErr})

	_, err := d.Draft(context.Background(), nil, "post-ironic", false)

	var ge *GenerationError
	if !errors.As(err, &ge) {
		t.Fatalf("error = %v, want *GenerationError", err)
	}
}

// Evaluation failure must not block the draft: the candidate comes back
// pending with all three scores at the neutral midpoint.
func TestDraftEvaluationFailureDefaultsNeutral(t *testing.T) {
	llm := &fakeLLM{
		draft:   &MemeDraft{Text: "unscored but alive"},
		evalErr: errors.New("eval model down"),
	}
	d := NewDrafter(llm)

	c, err := d.Draft(context.Background(), nil, "post-ironic", false)
	if err != nil {
		t.Fatalf("draft: %v", err)
	}

	if c.Content == "" {
		t.Error("content empty")
	}
	if c.Status != models.StatusPending {
		t.Errorf("status = %s, want pending", c.Status)
	}
	if c.HumorScore != 5 || c.AuthenticityScore != 5 || c.EngagementScore != 5 {
		t.Errorf("scores = %f/%f/%f, want neutral 5.0", c.HumorScore, c.AuthenticityScore, c.EngagementScore)
	}
	if c.QualityScore != 5 {
		t.Errorf("quality = %f, want 5.0", c.QualityScore)
	}
}

func TestDraftClampsOutOfRangeScores(t *testing.T) {
	llm := &fakeLLM{
		draft: &MemeDraft{Text: "confident model"},
		eval:  &MemeEvaluation{HumorScore: 15, AuthenticityScore: -3, EngagementScore: 8},
	}
	d := NewDrafter(llm)

	c, err := d.Draft(context.Background(), nil, "post-ironic", false)
	if err != nil {
		t.Fatalf("draft: %v", err)
	}
	if c.HumorScore != 10 || c.AuthenticityScore != 0 || c.EngagementScore != 8 {
		t.Errorf("scores = %f/%f/%f, want clamped to 10/0/8", c.HumorScore, c.AuthenticityScore, c.EngagementScore)
	}
	if c.QualityScore != 6 {
		t.Errorf("quality = %f, want 6.0", c.QualityScore)
	}
}
