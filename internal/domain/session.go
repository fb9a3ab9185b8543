package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SessionStatus represents the lifecycle state of a quiz session.
type SessionStatus string

// Possible session status values. Completed is terminal: no transition is
// permitted out of it.
const (
	SessionStatusActive    SessionStatus = "active"
	SessionStatusPaused    SessionStatus = "paused"
	SessionStatusCompleted SessionStatus = "completed"
)

// Session-specific validation errors.
var (
	ErrSessionIDEmpty       = errors.New("session ID cannot be empty")
	ErrSessionUserIDEmpty   = errors.New("session user ID cannot be empty")
	ErrSessionDomainIDEmpty = errors.New("session domain ID cannot be empty")
	ErrSessionNoTerms       = errors.New("session term sequence cannot be empty")
	ErrSessionIndexRange    = errors.New("session current index out of range")
)

// QuizSession tracks one user's walk through the terms of a domain.
// TermSequence is fixed at session start; CurrentIndex points at the next
// unanswered term. A session is mutated only by the request handling it;
// concurrent mutation is detected through the Version field.
type QuizSession struct {
	ID           uuid.UUID     `json:"id"`
	UserID       uuid.UUID     `json:"user_id"`
	DomainID     uuid.UUID     `json:"domain_id"`
	Status       SessionStatus `json:"status"`
	TermSequence []uuid.UUID   `json:"term_sequence"`
	CurrentIndex int           `json:"current_index"`
	Version      int           `json:"version"`
	StartedAt    time.Time     `json:"started_at"`
	CompletedAt  *time.Time    `json:"completed_at,omitempty"`
	PausedAt     *time.Time    `json:"paused_at,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// NewQuizSession creates an active session for the given user and domain
// with the term sequence fixed to termIDs.
func NewQuizSession(userID, domainID uuid.UUID, termIDs []uuid.UUID) (*QuizSession, error) {
	now := time.Now().UTC()
	session := &QuizSession{
		ID:           uuid.New(),
		UserID:       userID,
		DomainID:     domainID,
		Status:       SessionStatusActive,
		TermSequence: termIDs,
		CurrentIndex: 0,
		Version:      1,
		StartedAt:    now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := session.Validate(); err != nil {
		return nil, err
	}

	return session, nil
}

// Validate checks if the QuizSession has valid data.
func (s *QuizSession) Validate() error {
	if s.ID == uuid.Nil {
		return ErrSessionIDEmpty
	}

	if s.UserID == uuid.Nil {
		return ErrSessionUserIDEmpty
	}

	if s.DomainID == uuid.Nil {
		return ErrSessionDomainIDEmpty
	}

	if len(s.TermSequence) == 0 {
		return ErrSessionNoTerms
	}

	// CurrentIndex == len(TermSequence) is the completed position.
	if s.CurrentIndex < 0 || s.CurrentIndex > len(s.TermSequence) {
		return ErrSessionIndexRange
	}

	switch s.Status {
	case SessionStatusActive, SessionStatusPaused, SessionStatusCompleted:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidSessionStatus, s.Status)
	}

	return nil
}

// IsTerminal reports whether the session has reached its terminal state.
func (s *QuizSession) IsTerminal() bool {
	return s.Status == SessionStatusCompleted
}

// CurrentTermID returns the ID of the term awaiting an answer, or uuid.Nil
// and false when every term has been answered.
func (s *QuizSession) CurrentTermID() (uuid.UUID, bool) {
	if s.CurrentIndex >= len(s.TermSequence) {
		return uuid.Nil, false
	}
	return s.TermSequence[s.CurrentIndex], true
}

// RemainingTerms returns the unanswered tail of the term sequence.
func (s *QuizSession) RemainingTerms() []uuid.UUID {
	if s.CurrentIndex >= len(s.TermSequence) {
		return nil
	}
	return s.TermSequence[s.CurrentIndex:]
}
