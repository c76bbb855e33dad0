// Package sentiment scores free text with a lexicon-based polarity
// model. The analyzer is a pure function of its lexicon and input:
// no state mutates between calls, so the same text against the same
// lexicon version always yields the same score and category.
package sentiment

import (
	"math"
	"strings"

	"github.com/brandpulse/reputation-monitor/internal/models"
)

const (
	// Thresholds for the three-way categorization. Both boundaries
	// are inclusive: exactly 0.05 is positive, exactly -0.05 negative.
	positiveThreshold = 0.05
	negativeThreshold = -0.05

	// Valence adjustments applied before normalization.
	negationDamp  = -0.74
	boosterWeight = 0.293

	// Normalization constant mapping the valence sum into [-1, 1].
	normalizationAlpha = 15.0

	// How many preceding tokens a negation can reach over.
	negationScope = 3
)

var negations = map[string]bool{
	"not": true, "no": true, "never": true, "neither": true, "nor": true,
	"don't": true, "dont": true, "doesn't": true, "doesnt": true,
	"won't": true, "wont": true, "can't": true, "cant": true, "cannot": true,
	"isn't": true, "isnt": true, "wasn't": true, "wasnt": true,
	"didn't": true, "didnt": true, "couldn't": true, "couldnt": true,
	"wouldn't": true, "wouldnt": true, "hardly": true, "barely": true,
}

var boosters = map[string]bool{
	"very": true, "extremely": true, "really": true, "absolutely": true,
	"incredibly": true, "totally": true, "so": true, "super": true,
}

// Analyzer classifies text against a fixed lexicon.
type Analyzer struct {
	lexicon *Lexicon
}

// NewAnalyzer wraps a lexicon. A nil or empty lexicon is accepted but
// leaves the analyzer degraded: every input classifies as neutral zero.
func NewAnalyzer(lexicon *Lexicon) *Analyzer {
	return &Analyzer{lexicon: lexicon}
}

// Degraded reports whether the analyzer has no usable lexicon and will
// fall back to neutral-zero for all input.
func (a *Analyzer) Degraded() bool {
	return a.lexicon.Len() == 0
}

// LexiconVersion returns the version string of the loaded lexicon.
func (a *Analyzer) LexiconVersion() string {
	if a.lexicon == nil {
		return ""
	}
	return a.lexicon.Version
}

// Classify scores text and returns its compound polarity in [-1, 1]
// together with the three-way category. Empty or unscorable input
// yields 0.0 and neutral.
func (a *Analyzer) Classify(text string) (float64, models.SentimentType) {
	if a.Degraded() {
		return 0, models.SentimentNeutral
	}

	tokens := tokenize(text)
	if len(tokens) == 0 {
		return 0, models.SentimentNeutral
	}

	var sum float64
	for i, token := range tokens {
		valence, ok := a.lexicon.valences[token]
		if !ok {
			continue
		}

		// Scan the few tokens before this word for modifiers.
		for back := 1; back <= negationScope && i-back >= 0; back++ {
			prev := tokens[i-back]
			if negations[prev] {
				valence *= negationDamp
				break
			}
			if boosters[prev] {
				if valence > 0 {
					valence += boosterWeight
				} else if valence < 0 {
					valence -= boosterWeight
				}
			}
		}

		sum += valence
	}

	score := normalize(sum)
	return score, Categorize(score)
}

// Categorize maps a compound score onto the three-way category.
func Categorize(score float64) models.SentimentType {
	switch {
	case score >= positiveThreshold:
		return models.SentimentPositive
	case score <= negativeThreshold:
		return models.SentimentNegative
	default:
		return models.SentimentNeutral
	}
}

// normalize squashes the raw valence sum into [-1, 1].
func normalize(sum float64) float64 {
	if sum == 0 {
		return 0
	}
	score := sum / math.Sqrt(sum*sum+normalizationAlpha)
	if score > 1 {
		return 1
	}
	if score < -1 {
		return -1
	}
	return score
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '\'' {
			return false
		}
		return true
	})
}
