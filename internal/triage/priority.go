// Package triage ranks classified comments for response handling.
package triage

// MaxPriority is the top of the urgency scale.
const MaxPriority = 5

// Score derives a 0-5 urgency score from a compound sentiment score
// and an engagement count. The sentiment bands are mutually exclusive,
// evaluated top-down; the engagement bonus is additive.
func Score(sentimentScore float64, engagement int) int {
	priority := 0

	switch {
	case sentimentScore <= -0.5:
		priority += 5 // very negative
	case sentimentScore <= -0.1:
		priority += 3 // negative
	case sentimentScore >= 0.5:
		priority += 1 // very positive, worth engaging with
	}

	switch {
	case engagement > 100:
		priority += 2
	case engagement > 50:
		priority += 1
	}

	if priority > MaxPriority {
		return MaxPriority
	}
	return priority
}

// NeedsResponse reports whether a comment should be queued for a human
// reply. Only comments carry this flag; mentions and posts do not.
func NeedsResponse(sentimentScore float64, priority int) bool {
	return sentimentScore < -0.1 || priority >= 3
}
