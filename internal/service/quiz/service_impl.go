package quiz

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/lexidrill/lexidrill-api/internal/domain"
	"github.com/lexidrill/lexidrill-api/internal/evaluator"
	"github.com/lexidrill/lexidrill-api/internal/platform/logger"
	"github.com/lexidrill/lexidrill-api/internal/tree"
)

// Verify interface compliance at compile time
var _ SessionService = (*sessionServiceImpl)(nil)

// AnswerEvaluator judges a free-text answer against a reference definition.
// Satisfied by *evaluator.Evaluator.
type AnswerEvaluator interface {
	Evaluate(ctx context.Context, studentAnswer, referenceAnswer string, threshold float64) (*evaluator.Result, error)
}

// sessionServiceImpl implements the SessionService interface.
type sessionServiceImpl struct {
	sessionRepo SessionRepository
	attemptRepo AttemptRepository
	tree        tree.Service
	evaluator   AnswerEvaluator
	logger      *slog.Logger
}

// NewSessionService creates a new SessionService implementation.
func NewSessionService(
	sessionRepo SessionRepository,
	attemptRepo AttemptRepository,
	treeService tree.Service,
	answerEvaluator AnswerEvaluator,
	log *slog.Logger,
) SessionService {
	if sessionRepo == nil {
		panic("sessionRepo cannot be nil")
	}
	if attemptRepo == nil {
		panic("attemptRepo cannot be nil")
	}
	if treeService == nil {
		panic("treeService cannot be nil")
	}
	if answerEvaluator == nil {
		panic("answerEvaluator cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	return &sessionServiceImpl{
		sessionRepo: sessionRepo,
		attemptRepo: attemptRepo,
		tree:        treeService,
		evaluator:   answerEvaluator,
		logger:      log.With(slog.String("component", "quiz_session_service")),
	}
}

// Start implements SessionService.Start.
func (s *sessionServiceImpl) Start(
	ctx context.Context,
	userID, domainID uuid.UUID,
) (*domain.QuizSession, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	terms, err := s.tree.GetTermsUnderDomain(ctx, domainID)
	if err != nil {
		log.Warn("failed to load terms for quiz start",
			slog.String("error", err.Error()),
			slog.String("domain_id", domainID.String()))
		return nil, err
	}

	if len(terms) == 0 {
		log.Debug("quiz start rejected for empty domain",
			slog.String("domain_id", domainID.String()))
		return nil, ErrEmptyDomain
	}

	termIDs := make([]uuid.UUID, len(terms))
	for i, term := range terms {
		termIDs[i] = term.ID
	}

	session, err := domain.NewQuizSession(userID, domainID, termIDs)
	if err != nil {
		return nil, NewStartError("invalid session data", err)
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		log.Error("failed to persist new quiz session",
			slog.String("error", err.Error()),
			slog.String("session_id", session.ID.String()))
		return nil, NewStartError("failed to persist session", err)
	}

	log.Info("quiz session started",
		slog.String("session_id", session.ID.String()),
		slog.String("user_id", userID.String()),
		slog.String("domain_id", domainID.String()),
		slog.Int("term_count", len(termIDs)))
	return session, nil
}

// SubmitAnswer implements SessionService.SubmitAnswer.
//
// Evaluation happens before the transaction opens so the model call never
// holds a database transaction. The attempt append and the cursor advance
// then share one transaction guarded by the session version read up front;
// a racing submission makes the version check fail, the transaction rolls
// back, and neither the attempt nor the advance survives.
func (s *sessionServiceImpl) SubmitAnswer(
	ctx context.Context,
	sessionID uuid.UUID,
	answerText string,
) (*SubmitResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if session.Status != domain.SessionStatusActive {
		log.Warn("answer submitted to non-active session",
			slog.String("session_id", sessionID.String()),
			slog.String("status", string(session.Status)))
		return nil, fmt.Errorf("%w: session is %s", ErrInvalidState, session.Status)
	}

	termID, ok := session.CurrentTermID()
	if !ok {
		return nil, ErrNoCurrentTerm
	}

	termNode, err := s.tree.GetNode(ctx, termID)
	if err != nil {
		log.Error("current term vanished from content tree",
			slog.String("session_id", sessionID.String()),
			slog.String("term_id", termID.String()))
		return nil, err
	}
	payload, err := termNode.TermPayload()
	if err != nil {
		return nil, NewSubmitAnswerError("malformed term payload", err)
	}

	evaluation, err := s.evaluator.Evaluate(ctx, answerText, payload.Definition, 0)
	if err != nil {
		return nil, NewSubmitAnswerError("evaluation failed", err)
	}

	now := time.Now().UTC()
	err = s.runInTransaction(ctx, func(ctx context.Context, sessionRepo SessionRepository, attemptRepo AttemptRepository) error {
		count, err := attemptRepo.CountByUserAndTerm(ctx, session.UserID, termID)
		if err != nil {
			return fmt.Errorf("failed to count prior attempts: %w", err)
		}

		attempt, err := domain.NewAttempt(
			session.UserID,
			termID,
			session.ID,
			answerText,
			payload.Definition,
			evaluation.IsCorrect,
			evaluation.SimilarityScore,
			count+1,
			evaluation.Feedback,
			evaluation.Degraded,
		)
		if err != nil {
			return fmt.Errorf("failed to build attempt: %w", err)
		}

		if err := attemptRepo.Create(ctx, attempt); err != nil {
			return fmt.Errorf("failed to record attempt: %w", err)
		}

		session.CurrentIndex++
		session.UpdatedAt = now
		if session.CurrentIndex == len(session.TermSequence) {
			session.Status = domain.SessionStatusCompleted
			session.CompletedAt = &now
		}

		if err := sessionRepo.Update(ctx, session); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		log.Error("failed to submit answer",
			slog.String("error", err.Error()),
			slog.String("session_id", sessionID.String()),
			slog.String("term_id", termID.String()))
		return nil, err
	}

	result := &SubmitResult{
		Evaluation: evaluation,
		Progress: Progress{
			AnsweredCount: session.CurrentIndex,
			TotalTerms:    len(session.TermSequence),
		},
		Completed: session.Status == domain.SessionStatusCompleted,
	}

	if !result.Completed {
		next, err := s.questionAt(ctx, session, session.CurrentIndex)
		if err != nil {
			return nil, err
		}
		result.NextQuestion = next
	}

	log.Debug("answer submitted",
		slog.String("session_id", sessionID.String()),
		slog.String("term_id", termID.String()),
		slog.Bool("is_correct", evaluation.IsCorrect),
		slog.Float64("similarity", evaluation.SimilarityScore),
		slog.Bool("completed", result.Completed))
	return result, nil
}

// Pause implements SessionService.Pause.
func (s *sessionServiceImpl) Pause(ctx context.Context, sessionID uuid.UUID) (*domain.QuizSession, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	switch session.Status {
	case domain.SessionStatusPaused:
		// Pausing a paused session is a no-op, not an error.
		return session, nil
	case domain.SessionStatusCompleted:
		return nil, fmt.Errorf("%w: cannot pause a completed session", ErrInvalidState)
	}

	now := time.Now().UTC()
	session.Status = domain.SessionStatusPaused
	session.PausedAt = &now
	session.UpdatedAt = now

	if err := s.sessionRepo.Update(ctx, session); err != nil {
		return nil, err
	}

	log.Debug("quiz session paused",
		slog.String("session_id", sessionID.String()),
		slog.Int("current_index", session.CurrentIndex))
	return session, nil
}

// Resume implements SessionService.Resume.
// The session comes back at exactly the cursor position it held when
// paused; nothing about the term sequence or remainder changes.
func (s *sessionServiceImpl) Resume(ctx context.Context, sessionID uuid.UUID) (*domain.QuizSession, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	switch session.Status {
	case domain.SessionStatusActive:
		// Resuming an active session is a no-op.
		return session, nil
	case domain.SessionStatusCompleted:
		return nil, fmt.Errorf("%w: cannot resume a completed session", ErrInvalidState)
	}

	session.Status = domain.SessionStatusActive
	session.PausedAt = nil
	session.UpdatedAt = time.Now().UTC()

	if err := s.sessionRepo.Update(ctx, session); err != nil {
		return nil, err
	}

	log.Debug("quiz session resumed",
		slog.String("session_id", sessionID.String()),
		slog.Int("current_index", session.CurrentIndex))
	return session, nil
}

// Restart implements SessionService.Restart.
func (s *sessionServiceImpl) Restart(
	ctx context.Context,
	userID, domainID uuid.UUID,
) (*domain.QuizSession, error) {
	// A restart is simply a fresh start; prior sessions and attempts are
	// untouched and keep feeding mastery history.
	return s.Start(ctx, userID, domainID)
}

// Summarize implements SessionService.Summarize.
func (s *sessionServiceImpl) Summarize(ctx context.Context, sessionID uuid.UUID) (*SessionSummary, error) {
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if session.Status != domain.SessionStatusCompleted {
		return nil, fmt.Errorf("%w: summary requires a completed session, got %s",
			ErrInvalidState, session.Status)
	}

	attempts, err := s.attemptRepo.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session attempts: %w", err)
	}

	summary := &SessionSummary{
		SessionID:      session.ID,
		DomainID:       session.DomainID,
		TotalQuestions: len(session.TermSequence),
		Breakdown:      make([]TermBreakdown, 0, len(attempts)),
	}

	var similaritySum float64
	for _, attempt := range attempts {
		if attempt.IsCorrect {
			summary.CorrectCount++
		}
		similaritySum += attempt.SimilarityScore
		summary.Breakdown = append(summary.Breakdown, TermBreakdown{
			TermID:          attempt.TermID,
			StudentAnswer:   attempt.StudentAnswer,
			IsCorrect:       attempt.IsCorrect,
			SimilarityScore: attempt.SimilarityScore,
		})
	}

	if len(attempts) > 0 {
		summary.Accuracy = float64(summary.CorrectCount) / float64(len(attempts))
		summary.MeanSimilarity = similaritySum / float64(len(attempts))
	}
	if session.CompletedAt != nil {
		summary.Duration = session.CompletedAt.Sub(session.StartedAt)
	}

	return summary, nil
}

// questionAt builds the learner-facing question for the term at the given
// sequence position.
func (s *sessionServiceImpl) questionAt(
	ctx context.Context,
	session *domain.QuizSession,
	index int,
) (*Question, error) {
	termNode, err := s.tree.GetNode(ctx, session.TermSequence[index])
	if err != nil {
		return nil, err
	}
	payload, err := termNode.TermPayload()
	if err != nil {
		return nil, err
	}

	return &Question{
		TermID: termNode.ID,
		Prompt: payload.Term,
		Index:  index,
		Total:  len(session.TermSequence),
	}, nil
}

// runInTransaction runs the given function with transaction-bound
// repositories. Repositories that report no underlying database (in-memory
// implementations) run the function directly and provide their own
// atomicity.
func (s *sessionServiceImpl) runInTransaction(
	ctx context.Context,
	fn func(context.Context, SessionRepository, AttemptRepository) error,
) error {
	db := s.sessionRepo.DB()
	if db == nil {
		return fn(ctx, s.sessionRepo, s.attemptRepo)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	sessionRepo := s.sessionRepo.WithTx(tx)
	attemptRepo := s.attemptRepo.WithTx(tx)

	if err := fn(ctx, sessionRepo, attemptRepo); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return fmt.Errorf("tx error: %v, rollback error: %v", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
