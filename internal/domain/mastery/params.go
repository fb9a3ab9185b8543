// Package mastery derives mastery levels and scores from a user's
// immutable attempt log. All functions are pure: they read an ordered
// slice of attempts and return a fresh snapshot, never mutating inputs.
package mastery

// Params defines all configurable parameters for the mastery computation.
type Params struct {
	// RecentWindow is the number of most recent attempts considered by the
	// recency-weighted accuracy term.
	RecentWindow int

	// BestWeight and RecencyWeight blend the best-ever similarity score and
	// the recent accuracy into the raw mastery score. They should sum to 1
	// so the score stays in [0,1].
	BestWeight    float64
	RecencyWeight float64

	// Level band cutoffs applied to the best-ever similarity score.
	// best <  DevelopingCutoff            -> NeedsPractice
	// best in [DevelopingCutoff, ProficientCutoff) -> Developing
	// best in [ProficientCutoff, MasteredCutoff)   -> Proficient
	// best >= MasteredCutoff              -> Mastered
	DevelopingCutoff float64
	ProficientCutoff float64
	MasteredCutoff   float64
}

// ParamsConfig allows overriding the default parameters when creating a new
// Params instance. Zero values leave the corresponding default in place.
type ParamsConfig struct {
	RecentWindow  int
	BestWeight    float64
	RecencyWeight float64

	DevelopingCutoff float64
	ProficientCutoff float64
	MasteredCutoff   float64
}

// NewDefaultParams creates a new Params instance with default values.
// The window size and blend weights are deliberate implementation choices;
// the band cutoffs are fixed by the mastery model.
func NewDefaultParams() *Params {
	return &Params{
		RecentWindow:  5,
		BestWeight:    0.7,
		RecencyWeight: 0.3,

		DevelopingCutoff: 0.5,
		ProficientCutoff: 0.7,
		MasteredCutoff:   0.9,
	}
}

// NewParams creates a new Params instance with custom configuration.
func NewParams(config ParamsConfig) *Params {
	params := NewDefaultParams()

	if config.RecentWindow > 0 {
		params.RecentWindow = config.RecentWindow
	}
	if config.BestWeight > 0 {
		params.BestWeight = config.BestWeight
	}
	if config.RecencyWeight > 0 {
		params.RecencyWeight = config.RecencyWeight
	}
	if config.DevelopingCutoff > 0 {
		params.DevelopingCutoff = config.DevelopingCutoff
	}
	if config.ProficientCutoff > 0 {
		params.ProficientCutoff = config.ProficientCutoff
	}
	if config.MasteredCutoff > 0 {
		params.MasteredCutoff = config.MasteredCutoff
	}

	return params
}
