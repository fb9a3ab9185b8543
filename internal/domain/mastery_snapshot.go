package domain

import (
	"time"

	"github.com/google/uuid"
)

// MasteryLevel is a discretized judgment of how well a user knows one term.
type MasteryLevel string

// Possible mastery levels, from least to most mastered.
const (
	MasteryNotAttempted  MasteryLevel = "not_attempted"
	MasteryNeedsPractice MasteryLevel = "needs_practice"
	MasteryDeveloping    MasteryLevel = "developing"
	MasteryProficient    MasteryLevel = "proficient"
	MasteryMastered      MasteryLevel = "mastered"
)

// MasterySnapshot is the derived mastery state of one user/term pair.
// It is a read-through view over the immutable attempt log, recomputable
// at any time and never treated as the source of truth.
type MasterySnapshot struct {
	UserID        uuid.UUID    `json:"user_id"`
	TermID        uuid.UUID    `json:"term_id"`
	Level         MasteryLevel `json:"level"`
	Score         float64      `json:"score"` // in [0,1], non-decreasing over the attempt log
	AttemptsCount int          `json:"attempts_count"`
	LastAttemptAt *time.Time   `json:"last_attempt_at,omitempty"`
}
