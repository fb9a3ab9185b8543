package mastery

import (
	"github.com/google/uuid"

	"github.com/lexidrill/lexidrill-api/internal/domain"
)

// levelForBest maps the best-ever similarity score to a mastery level.
//
// Levels depend only on the running maximum of the similarity score, so a
// level can never regress: additional attempts either raise the maximum or
// leave it unchanged.
func levelForBest(best float64, attempts int, params *Params) domain.MasteryLevel {
	switch {
	case attempts == 0:
		return domain.MasteryNotAttempted
	case best >= params.MasteredCutoff:
		return domain.MasteryMastered
	case best >= params.ProficientCutoff:
		return domain.MasteryProficient
	case best >= params.DevelopingCutoff:
		return domain.MasteryDeveloping
	default:
		return domain.MasteryNeedsPractice
	}
}

// recentWeightedAccuracy computes the fraction correct among the most
// recent window attempts of the given prefix, weighting newer attempts
// linearly heavier (oldest in window weight 1, newest weight window).
// Returns 0 for an empty prefix.
func recentWeightedAccuracy(attempts []*domain.Attempt, window int) float64 {
	if len(attempts) == 0 || window <= 0 {
		return 0
	}

	start := len(attempts) - window
	if start < 0 {
		start = 0
	}

	var weighted, total float64
	for i, a := range attempts[start:] {
		w := float64(i + 1)
		total += w
		if a.IsCorrect {
			weighted += w
		}
	}

	return weighted / total
}

// calculateSnapshot derives the mastery snapshot for one user/term pair
// from the full ordered attempt log.
//
// The numeric score is the running maximum, over every prefix of the log,
// of the blend BestWeight*best + RecencyWeight*recentAccuracy. Because the
// blend is evaluated after every attempt and the maximum is taken over a
// set that only grows as attempts are appended, the score is non-decreasing
// in the attempt log: recomputing after more attempts can only add
// candidates to the maximum.
func calculateSnapshot(
	userID, termID uuid.UUID,
	attempts []*domain.Attempt,
	params *Params,
) *domain.MasterySnapshot {
	snapshot := &domain.MasterySnapshot{
		UserID:        userID,
		TermID:        termID,
		Level:         domain.MasteryNotAttempted,
		Score:         0,
		AttemptsCount: len(attempts),
	}

	if len(attempts) == 0 {
		return snapshot
	}

	var best, score float64
	for i, a := range attempts {
		if a.SimilarityScore > best {
			best = a.SimilarityScore
		}

		recent := recentWeightedAccuracy(attempts[:i+1], params.RecentWindow)
		blend := params.BestWeight*best + params.RecencyWeight*recent
		if blend > score {
			score = blend
		}
	}

	if score > 1 {
		score = 1
	}

	last := attempts[len(attempts)-1].CreatedAt
	snapshot.Level = levelForBest(best, len(attempts), params)
	snapshot.Score = score
	snapshot.LastAttemptAt = &last

	return snapshot
}
