package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Attempt-specific validation errors.
var (
	ErrAttemptIDEmpty        = errors.New("attempt ID cannot be empty")
	ErrAttemptUserIDEmpty    = errors.New("attempt user ID cannot be empty")
	ErrAttemptTermIDEmpty    = errors.New("attempt term ID cannot be empty")
	ErrAttemptSessionIDEmpty = errors.New("attempt session ID cannot be empty")
	ErrAttemptNumberInvalid  = errors.New("attempt number must be at least 1")
	ErrAttemptNoReference    = errors.New("attempt reference answer cannot be empty")
)

// Attempt is one judged answer submission. Attempts form an append-only log
// and are never updated or deleted once recorded; mastery is always
// recomputable from this log, which is what makes the monotonicity of
// mastery provable rather than incidental.
type Attempt struct {
	ID              uuid.UUID `json:"id"`
	UserID          uuid.UUID `json:"user_id"`
	TermID          uuid.UUID `json:"term_id"`
	SessionID       uuid.UUID `json:"session_id"` // weak reference, never dereferenced by the aggregator
	StudentAnswer   string    `json:"student_answer"`
	ReferenceAnswer string    `json:"reference_answer"`
	IsCorrect       bool      `json:"is_correct"`
	SimilarityScore float64   `json:"similarity_score"`
	AttemptNumber   int       `json:"attempt_number"`
	Feedback        string    `json:"feedback"`
	Degraded        bool      `json:"degraded"`
	CreatedAt       time.Time `json:"created_at"`
}

// NewAttempt creates a validated attempt record. attemptNumber is the
// 1-based count of this user's attempts at this term, including this one.
func NewAttempt(
	userID, termID, sessionID uuid.UUID,
	studentAnswer, referenceAnswer string,
	isCorrect bool,
	similarityScore float64,
	attemptNumber int,
	feedback string,
	degraded bool,
) (*Attempt, error) {
	attempt := &Attempt{
		ID:              uuid.New(),
		UserID:          userID,
		TermID:          termID,
		SessionID:       sessionID,
		StudentAnswer:   studentAnswer,
		ReferenceAnswer: referenceAnswer,
		IsCorrect:       isCorrect,
		SimilarityScore: similarityScore,
		AttemptNumber:   attemptNumber,
		Feedback:        feedback,
		Degraded:        degraded,
		CreatedAt:       time.Now().UTC(),
	}

	if err := attempt.Validate(); err != nil {
		return nil, err
	}

	return attempt, nil
}

// Validate checks if the Attempt has valid data.
func (a *Attempt) Validate() error {
	if a.ID == uuid.Nil {
		return ErrAttemptIDEmpty
	}

	if a.UserID == uuid.Nil {
		return ErrAttemptUserIDEmpty
	}

	if a.TermID == uuid.Nil {
		return ErrAttemptTermIDEmpty
	}

	if a.SessionID == uuid.Nil {
		return ErrAttemptSessionIDEmpty
	}

	if a.ReferenceAnswer == "" {
		return ErrAttemptNoReference
	}

	if a.SimilarityScore < 0 || a.SimilarityScore > 1 {
		return ErrInvalidSimilarityScore
	}

	if a.AttemptNumber < 1 {
		return ErrAttemptNumberInvalid
	}

	return nil
}
