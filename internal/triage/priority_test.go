package triage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScore(t *testing.T) {
	tests := []struct {
		name           string
		sentimentScore float64
		engagement     int
		expected       int
	}{
		{"very negative caps at max despite engagement", -0.6, 150, 5},
		{"band boundary is inclusive at -0.5", -0.5, 0, 5},
		{"negative band", -0.3, 0, 3},
		{"band boundary is inclusive at -0.1", -0.1, 0, 3},
		{"just above negative band, no engagement", -0.05, 0, 0},
		{"neutral, no engagement", 0.0, 0, 0},
		{"very positive", 0.5, 0, 1},
		{"neutral with moderate engagement", 0.0, 60, 1},
		{"neutral with high engagement", 0.0, 101, 2},
		{"engagement boundary not crossed at 50", 0.0, 50, 0},
		{"engagement boundary not crossed at 100", 0.0, 100, 1},
		{"negative with high engagement", -0.3, 150, 5},
		{"very positive with high engagement", 0.7, 200, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Score(tt.sentimentScore, tt.engagement)
			assert.Equal(t, tt.expected, got)
			assert.GreaterOrEqual(t, got, 0)
			assert.LessOrEqual(t, got, MaxPriority)
		})
	}
}

func TestScore_MonotonicInWorseningSentiment(t *testing.T) {
	for _, engagement := range []int{0, 60, 150} {
		prev := -1
		// Walk sentiment from very negative up to neutral; priority
		// must never increase along the way. (The +1 for very positive
		// scores above 0.5 sits deliberately outside this property.)
		for _, score := range []float64{-1.0, -0.6, -0.5, -0.3, -0.1, -0.05, 0.0} {
			got := Score(score, engagement)
			if prev >= 0 {
				assert.LessOrEqual(t, got, prev, "priority must not rise as sentiment improves (score=%v engagement=%d)", score, engagement)
			}
			prev = got
		}
	}
}

func TestScore_MonotonicInEngagement(t *testing.T) {
	for _, sentimentScore := range []float64{-0.6, -0.3, 0.0, 0.6} {
		prev := -1
		for _, engagement := range []int{0, 10, 51, 80, 101, 500} {
			got := Score(sentimentScore, engagement)
			if prev >= 0 {
				assert.GreaterOrEqual(t, got, prev, "priority must not drop as engagement grows (score=%v engagement=%d)", sentimentScore, engagement)
			}
			prev = got
		}
	}
}

func TestNeedsResponse(t *testing.T) {
	tests := []struct {
		name           string
		sentimentScore float64
		priority       int
		expected       bool
	}{
		{"negative sentiment alone", -0.15, 0, true},
		{"high priority alone", 0.0, 3, true},
		{"both triggers", -0.6, 5, true},
		{"mildly negative below trigger", -0.1, 0, false},
		{"positive low priority", 0.4, 1, false},
		{"neutral low priority", 0.0, 2, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NeedsResponse(tt.sentimentScore, tt.priority))
		})
	}
}
