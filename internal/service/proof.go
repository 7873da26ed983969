package service

import (
	"context"
	"strings"

	"github.com/ecomindsapp/ecominds-server/internal/domain"
)

// ProofScorer scores a submitted mission proof between 0 and 1.
// Real deployments plug in an image or document classifier; the
// server only depends on this interface.
type ProofScorer interface {
	Score(ctx context.Context, mission *domain.Mission, proofRef string) (float64, error)
}

// HeuristicScorer is the built-in placeholder scorer. It never sees
// the referenced asset; it scores the reference itself so the review
// pipeline stays exercisable without a model behind it.
type HeuristicScorer struct{}

var proofKeywords = []string{
	"recycle", "compost", "plant", "tree", "cleanup", "solar",
	"reuse", "garden", "litter", "bike",
}

// Score rates a proof reference. Descriptive references that look like
// uploaded assets and mention an eco activity score highest.
func (HeuristicScorer) Score(_ context.Context, _ *domain.Mission, proofRef string) (float64, error) {
	ref := strings.ToLower(strings.TrimSpace(proofRef))
	if ref == "" {
		return 0, nil
	}

	score := 0.3
	if len(ref) >= 20 {
		score += 0.2
	}
	if strings.HasPrefix(ref, "asset:") || strings.HasPrefix(ref, "https://") {
		score += 0.3
	}
	for _, kw := range proofKeywords {
		if strings.Contains(ref, kw) {
			score += 0.2
			break
		}
	}

	if score > 1 {
		score = 1
	}
	return score, nil
}
