package mastery

import (
	"errors"
	"sort"

	"github.com/google/uuid"

	"github.com/lexidrill/lexidrill-api/internal/domain"
)

// Common errors
var (
	ErrNilAttempt      = errors.New("attempt log cannot contain nil attempts")
	ErrMismatchedTerm  = errors.New("attempt log contains attempts for another term")
	ErrMismatchedUser  = errors.New("attempt log contains attempts for another user")
	ErrInvalidUserTerm = errors.New("user and term IDs cannot be empty")
)

// Service defines the interface for mastery computations.
type Service interface {
	// SnapshotFor derives the mastery snapshot for one user/term pair from
	// the attempt log. Attempts may be passed in any order; they are sorted
	// by attempt number before the computation.
	SnapshotFor(userID, termID uuid.UUID, attempts []*domain.Attempt) (*domain.MasterySnapshot, error)
}

// defaultService is the standard implementation of the Service interface.
type defaultService struct {
	params *Params
}

// NewDefaultService creates a new mastery service with default parameters.
func NewDefaultService() Service {
	return &defaultService{
		params: NewDefaultParams(),
	}
}

// NewServiceWithParams creates a new mastery service with custom parameters.
func NewServiceWithParams(params *Params) Service {
	return &defaultService{
		params: params,
	}
}

// SnapshotFor implements the Service interface.
func (s *defaultService) SnapshotFor(
	userID, termID uuid.UUID,
	attempts []*domain.Attempt,
) (*domain.MasterySnapshot, error) {
	if userID == uuid.Nil || termID == uuid.Nil {
		return nil, ErrInvalidUserTerm
	}

	for _, a := range attempts {
		if a == nil {
			return nil, ErrNilAttempt
		}
		if a.TermID != termID {
			return nil, ErrMismatchedTerm
		}
		if a.UserID != userID {
			return nil, ErrMismatchedUser
		}
	}

	// Work on a copy so callers keep their ordering.
	ordered := make([]*domain.Attempt, len(attempts))
	copy(ordered, attempts)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].AttemptNumber < ordered[j].AttemptNumber
	})

	return calculateSnapshot(userID, termID, ordered, s.params), nil
}
