package domain

import "time"

// FallbackTarget is the bucket for listings whose target field came back
// empty from extraction.
const FallbackTarget = "Other"

type Listing struct {
	ID                string    `json:"id"`
	Summary           string    `json:"summary"`
	ApplicationPeriod string    `json:"applicationPeriod"`
	TrainingPeriod    string    `json:"trainingPeriod"`
	Target            string    `json:"target"`
	CreatedAt         time.Time `json:"createdAt"`
}

// TargetOrFallback returns the grouping key: the raw target, or the
// fallback bucket when the field is empty.
func (l Listing) TargetOrFallback() string {
	if l.Target == "" {
		return FallbackTarget
	}
	return l.Target
}
