package core

import (
	"slices"
	"time"
)

// Filters restricts retrieval candidates by document metadata.
// All populated fields must hold simultaneously (conjunctive AND);
// zero-valued fields impose no restriction.
type Filters struct {
	Wards             []string
	Outcome           Outcome
	DevelopmentTypes  []DevelopmentType
	ConservationAreas []string
	DateFrom          time.Time
	DateTo            time.Time
}

// Matches reports whether the document metadata satisfies every populated
// predicate.
func (f Filters) Matches(md DocumentMetadata) bool {
	if len(f.Wards) > 0 && !slices.Contains(f.Wards, md.Ward) {
		return false
	}
	if f.Outcome != OutcomeUnspecified && md.Outcome != f.Outcome {
		return false
	}
	if len(f.DevelopmentTypes) > 0 && !slices.Contains(f.DevelopmentTypes, md.DevelopmentType) {
		return false
	}
	if len(f.ConservationAreas) > 0 && !slices.Contains(f.ConservationAreas, md.ConservationArea) {
		return false
	}
	if !f.DateFrom.IsZero() && md.DecisionDate.Before(f.DateFrom) {
		return false
	}
	if !f.DateTo.IsZero() && md.DecisionDate.After(f.DateTo) {
		return false
	}
	return true
}
