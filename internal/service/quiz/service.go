// Package quiz implements the quiz session engine: it sequences the terms
// of a domain into questions, judges free-text answers through the
// evaluator, and records each judged attempt atomically with the session
// cursor advance.
package quiz

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lexidrill/lexidrill-api/internal/domain"
	"github.com/lexidrill/lexidrill-api/internal/evaluator"
)

// Common error types for SessionService.
var (
	// ErrInvalidState indicates an illegal session state transition, such
	// as submitting an answer to a paused session or resuming a completed
	// one.
	ErrInvalidState = errors.New("invalid session state for operation")

	// ErrEmptyDomain indicates the domain has no terms to quiz.
	ErrEmptyDomain = errors.New("domain has no terms to quiz")

	// ErrNoCurrentTerm indicates an active session whose cursor points past
	// the end of the term sequence. This is a stored-state corruption, not
	// a caller mistake.
	ErrNoCurrentTerm = errors.New("active session has no current term")
)

// Question is the learner-facing view of the term awaiting an answer.
type Question struct {
	TermID uuid.UUID `json:"term_id"`
	Prompt string    `json:"prompt"`
	Index  int       `json:"index"` // 0-based position in the sequence
	Total  int       `json:"total"`
}

// Progress reports how far through the term sequence a session has moved.
type Progress struct {
	AnsweredCount int `json:"answered_count"`
	TotalTerms    int `json:"total_terms"`
}

// SubmitResult carries everything produced by one answer submission: the
// evaluation judgment, updated session progress, and either the next
// question or a completion flag.
type SubmitResult struct {
	Evaluation   *evaluator.Result `json:"evaluation"`
	Progress     Progress          `json:"progress"`
	NextQuestion *Question         `json:"next_question,omitempty"`
	Completed    bool              `json:"completed"`
}

// TermBreakdown is one term's line in a session summary.
type TermBreakdown struct {
	TermID          uuid.UUID `json:"term_id"`
	StudentAnswer   string    `json:"student_answer"`
	IsCorrect       bool      `json:"is_correct"`
	SimilarityScore float64   `json:"similarity_score"`
}

// SessionSummary aggregates the attempts of one completed session.
type SessionSummary struct {
	SessionID      uuid.UUID       `json:"session_id"`
	DomainID       uuid.UUID       `json:"domain_id"`
	TotalQuestions int             `json:"total_questions"`
	CorrectCount   int             `json:"correct_count"`
	Accuracy       float64         `json:"accuracy"` // in [0,1]
	MeanSimilarity float64         `json:"mean_similarity"`
	Duration       time.Duration   `json:"duration"`
	Breakdown      []TermBreakdown `json:"breakdown"`
}

// SessionService drives quiz sessions through their lifecycle.
//
// Sessions move Active -> Paused -> Active freely and end at Completed,
// which is terminal. Every mutation is persisted under an optimistic
// version check, so a racing mutation of the same session surfaces as
// store.ErrConcurrentModification rather than a silent lost update.
type SessionService interface {
	// Start creates an active session over all terms under the domain.
	// The term sequence is fixed at this moment; later tree edits do not
	// affect a running session.
	//
	// Returns ErrEmptyDomain when the domain has no terms, and
	// store.ErrNodeNotFound when the domain itself is unknown.
	Start(ctx context.Context, userID, domainID uuid.UUID) (*domain.QuizSession, error)

	// SubmitAnswer judges answerText against the current term's reference
	// definition, appends the attempt, and advances the session cursor.
	// The append and the advance happen in one transaction: a persistence
	// failure leaves both unchanged, so the caller may safely retry.
	//
	// Returns store.ErrSessionNotFound for an unknown session,
	// ErrInvalidState unless the session is Active, and
	// store.ErrConcurrentModification when another submission raced this
	// one.
	SubmitAnswer(ctx context.Context, sessionID uuid.UUID, answerText string) (*SubmitResult, error)

	// Pause suspends an active session. Pausing an already paused session
	// is a no-op. Returns ErrInvalidState on a completed session.
	Pause(ctx context.Context, sessionID uuid.UUID) (*domain.QuizSession, error)

	// Resume reactivates a paused session at the exact cursor position it
	// held when paused. Resuming an active session is a no-op. Returns
	// ErrInvalidState on a completed session.
	Resume(ctx context.Context, sessionID uuid.UUID) (*domain.QuizSession, error)

	// Restart creates a brand-new session for the same domain, independent
	// of any prior session or attempt history.
	Restart(ctx context.Context, userID, domainID uuid.UUID) (*domain.QuizSession, error)

	// Summarize aggregates accuracy, timing, and a per-term breakdown from
	// the session's own attempts. Valid only on completed sessions;
	// returns ErrInvalidState otherwise.
	Summarize(ctx context.Context, sessionID uuid.UUID) (*SessionSummary, error)
}

// ServiceError wraps errors from the quiz service with operation context,
// so consumers can differentiate failures with errors.As instead of string
// matching.
type ServiceError struct {
	// Operation is the operation that failed (e.g., "start", "submit_answer")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s operation failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s operation failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewSubmitAnswerError returns a new ServiceError for the submit_answer operation.
func NewSubmitAnswerError(message string, err error) *ServiceError {
	return &ServiceError{
		Operation: "submit_answer",
		Message:   message,
		Err:       err,
	}
}

// NewStartError returns a new ServiceError for the start operation.
func NewStartError(message string, err error) *ServiceError {
	return &ServiceError{
		Operation: "start",
		Message:   message,
		Err:       err,
	}
}
