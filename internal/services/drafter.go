package services

import (
	"context"
	"log"
	"math/rand"

	"memebot/internal/models"
)

// neutralScore is the documented fallback when self-evaluation fails: the
// midpoint of the 0-10 range, so an unscored draft is neither promoted nor
// buried. Evaluation failure never blocks candidate creation.
const neutralScore = 5.0

// fallbackContexts seed generation when no trend is supplied.
var fallbackContexts = []string{
	"Being chronically online and understanding way too many references",
	"The experience of doom scrolling at 3am",
	"Existential dread but make it funny",
	"Main character energy vs side quest energy",
	"The duality of wanting to be productive vs wanting to rot in bed",
	"Touch grass? In this economy?",
	"When the algorithm knows you too well",
}

// Drafter turns a trend (or nothing) into a pending ContentCandidate via the
// generative model.
type Drafter struct {
	llm LLMGenerator
}

// LLMGenerator is the slice of the LLM client the drafter needs.
type LLMGenerator interface {
	GenerateMeme(ctx context.Context, trendContext, ironyLevel string) (*MemeDraft, error)
	EvaluateMeme(ctx context.Context, text string) (*MemeEvaluation, error)
}

func NewDrafter(llm LLMGenerator) *Drafter {
	return &Drafter{llm: llm}
}

// Draft generates one candidate. A generation failure surfaces to the caller
// as a *GenerationError; an evaluation failure is absorbed with neutral
// midpoint scores. The returned candidate always has status pending and
// non-empty content. Nothing is filtered for low score here: that is the
// reviewer's call.
func (d *Drafter) Draft(ctx context.Context, trend *models.TrendRecord, ironyLevel string, useTrend bool) (*models.ContentCandidate, error) {
	trendContext := fallbackContexts[rand.Intn(len(fallbackContexts))]
	var trendID *uint
	if useTrend && trend != nil {
		trendContext = trend.Context()
		trendID = &trend.ID
	}

	draft, err := d.llm.GenerateMeme(ctx, trendContext, ironyLevel)
	if err != nil {
		return nil, err
	}

	humor, authenticity, engagement := neutralScore, neutralScore, neutralScore
	eval, err := d.llm.EvaluateMeme(ctx, draft.Text)
	if err != nil {
		log.Printf("Self-evaluation failed, defaulting scores to %.1f: %v", neutralScore, err)
	} else {
		humor = clampScore(eval.HumorScore)
		authenticity = clampScore(eval.AuthenticityScore)
		engagement = clampScore(eval.EngagementScore)
	}

	return &models.ContentCandidate{
		Content:           draft.Text,
		MemeFormat:        draft.Format,
		IronyLevel:        ironyLevel,
		Topics:            draft.Topics,
		TrendID:           trendID,
		TrendContext:      trendContext,
		HumorScore:        humor,
		AuthenticityScore: authenticity,
		EngagementScore:   engagement,
		// Overall quality is the unweighted mean of the three axes.
		QualityScore: (humor + authenticity + engagement) / 3,
		Status:       models.StatusPending,
	}, nil
}

func clampScore(s float64) float64 {
	if s < 0 {
		return 0
	}
	if s > 10 {
		return 10
	}
	return s
}
