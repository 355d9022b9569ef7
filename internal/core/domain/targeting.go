package domain

import (
	"slices"
	"strings"
)

// Targeting describes who should see a campaign. An empty Countries set
// and nil age bounds mean the campaign is untargeted.
type Targeting struct {
	Countries      []string `json:"countries"`
	AgeMin         *int     `json:"age_min,omitempty"`
	AgeMax         *int     `json:"age_max,omitempty"`
	ExpandAudience bool     `json:"expand_audience"`
}

// IsTargeted reports whether any country or age criterion is set.
func (t Targeting) IsTargeted() bool {
	return len(t.Countries) > 0 || t.AgeMin != nil || t.AgeMax != nil
}

// Matches reports whether v satisfies every criterion that is set. An
// age range with a single bound is open-ended on the other side.
func (t Targeting) Matches(v Viewer) bool {
	if len(t.Countries) > 0 && !slices.Contains(t.Countries, strings.ToUpper(v.Country)) {
		return false
	}
	if t.AgeMin == nil && t.AgeMax == nil {
		return true
	}
	if v.Age == nil {
		return false
	}
	if t.AgeMin != nil && *v.Age < *t.AgeMin {
		return false
	}
	if t.AgeMax != nil && *v.Age > *t.AgeMax {
		return false
	}
	return true
}

// MatchResult is the audience matcher's verdict for one viewer.
type MatchResult int

const (
	NoMatch MatchResult = iota
	StrictMatch
	BroadenedMatch
)

func (r MatchResult) String() string {
	switch r {
	case StrictMatch:
		return "STRICT_MATCH"
	case BroadenedMatch:
		return "BROADENED_MATCH"
	default:
		return "NO_MATCH"
	}
}
