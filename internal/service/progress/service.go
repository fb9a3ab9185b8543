// Package progress exposes read-through mastery and domain completion
// views over the immutable attempt log. Nothing here writes state; every
// answer is recorded by the quiz engine, and this package recomputes
// mastery from the log on demand.
package progress

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/lexidrill/lexidrill-api/internal/domain"
	"github.com/lexidrill/lexidrill-api/internal/domain/mastery"
	"github.com/lexidrill/lexidrill-api/internal/platform/logger"
	"github.com/lexidrill/lexidrill-api/internal/store"
	"github.com/lexidrill/lexidrill-api/internal/tree"
)

// TermProgress is one term's line in a domain progress report.
type TermProgress struct {
	TermID uuid.UUID `json:"term_id"`
	Term   string    `json:"term"`

	Level         domain.MasteryLevel `json:"level"`
	Score         float64             `json:"score"`
	AttemptsCount int                 `json:"attempts_count"`
}

// DomainProgress aggregates mastery across every term under a domain.
//
// CompletionPercentage counts only fully mastered terms;
// MasteryPercentage is the mean numeric score, so partial progress shows
// up long before anything reaches mastered.
type DomainProgress struct {
	DomainID             uuid.UUID      `json:"domain_id"`
	TotalTerms           int            `json:"total_terms"`
	MasteredTerms        int            `json:"mastered_terms"`
	CompletionPercentage float64        `json:"completion_percentage"`
	MasteryPercentage    float64        `json:"mastery_percentage"`
	Breakdown            []TermProgress `json:"breakdown"`
}

// ProgressService computes per-term mastery and per-domain completion.
type ProgressService interface {
	// MasteryFor derives the mastery snapshot for one user/term pair from
	// the full attempt log. A user who never attempted the term gets a
	// NotAttempted snapshot, not an error. Returns store.ErrNodeNotFound
	// when the term itself is unknown.
	MasteryFor(ctx context.Context, userID, termID uuid.UUID) (*domain.MasterySnapshot, error)

	// DomainProgress aggregates mastery over all terms under the domain.
	// A domain with no terms yields zero percentages and an empty
	// breakdown.
	DomainProgress(ctx context.Context, userID, domainID uuid.UUID) (*DomainProgress, error)
}

type progressServiceImpl struct {
	tree     tree.Service
	attempts store.AttemptStore
	mastery  mastery.Service
	logger   *slog.Logger
}

// Verify interface compliance at compile time
var _ ProgressService = (*progressServiceImpl)(nil)

// NewProgressService creates a new ProgressService implementation.
func NewProgressService(
	treeService tree.Service,
	attempts store.AttemptStore,
	masteryService mastery.Service,
	log *slog.Logger,
) ProgressService {
	if treeService == nil {
		panic("treeService cannot be nil")
	}
	if attempts == nil {
		panic("attempts cannot be nil")
	}
	if masteryService == nil {
		panic("masteryService cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	return &progressServiceImpl{
		tree:     treeService,
		attempts: attempts,
		mastery:  masteryService,
		logger:   log.With(slog.String("component", "progress_service")),
	}
}

// MasteryFor implements ProgressService.MasteryFor.
func (s *progressServiceImpl) MasteryFor(
	ctx context.Context,
	userID, termID uuid.UUID,
) (*domain.MasterySnapshot, error) {
	node, err := s.tree.GetNode(ctx, termID)
	if err != nil {
		return nil, err
	}
	if node.NodeType != domain.NodeTypeTerm {
		return nil, fmt.Errorf("%w: node %s is %s, not a term",
			tree.ErrInvalidHierarchy, node.ID, node.NodeType)
	}

	attempts, err := s.attempts.ListByUserAndTerm(ctx, userID, termID)
	if err != nil {
		return nil, fmt.Errorf("failed to load attempt log: %w", err)
	}

	return s.mastery.SnapshotFor(userID, termID, attempts)
}

// DomainProgress implements ProgressService.DomainProgress.
func (s *progressServiceImpl) DomainProgress(
	ctx context.Context,
	userID, domainID uuid.UUID,
) (*DomainProgress, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	terms, err := s.tree.GetTermsUnderDomain(ctx, domainID)
	if err != nil {
		return nil, err
	}

	result := &DomainProgress{
		DomainID:   domainID,
		TotalTerms: len(terms),
		Breakdown:  make([]TermProgress, 0, len(terms)),
	}
	if len(terms) == 0 {
		return result, nil
	}

	termIDs := make([]uuid.UUID, len(terms))
	for i, term := range terms {
		termIDs[i] = term.ID
	}

	attemptsByTerm, err := s.attempts.ListByUserAndTerms(ctx, userID, termIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load attempt logs: %w", err)
	}

	var scoreSum float64
	for _, term := range terms {
		snapshot, err := s.mastery.SnapshotFor(userID, term.ID, attemptsByTerm[term.ID])
		if err != nil {
			return nil, fmt.Errorf("failed to compute mastery for term %s: %w", term.ID, err)
		}

		if snapshot.Level == domain.MasteryMastered {
			result.MasteredTerms++
		}
		scoreSum += snapshot.Score

		entry := TermProgress{
			TermID:        term.ID,
			Level:         snapshot.Level,
			Score:         snapshot.Score,
			AttemptsCount: snapshot.AttemptsCount,
		}
		if payload, err := term.TermPayload(); err == nil {
			entry.Term = payload.Term
		}
		result.Breakdown = append(result.Breakdown, entry)
	}

	result.CompletionPercentage = 100 * float64(result.MasteredTerms) / float64(result.TotalTerms)
	result.MasteryPercentage = 100 * scoreSum / float64(result.TotalTerms)

	log.Debug("computed domain progress",
		slog.String("user_id", userID.String()),
		slog.String("domain_id", domainID.String()),
		slog.Int("total_terms", result.TotalTerms),
		slog.Int("mastered_terms", result.MasteredTerms))
	return result, nil
}
