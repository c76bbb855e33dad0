package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/brandpulse/reputation-monitor/internal/models"
	"github.com/brandpulse/reputation-monitor/internal/storage"
)

const (
	// Sentiment detector: trailing window, trigger and escalation ratios.
	sentimentWindow        = 2 * time.Hour
	negativeRatioThreshold = 0.3
	negativeRatioHigh      = 0.5

	// Volume detector: two adjacent one-hour windows, trigger ratio.
	volumeWindow          = time.Hour
	volumeIncreaseTrigger = 2.0

	// Window queries never scan more than this many comments.
	windowScanLimit = 1000
)

// Detector evaluates one anomaly condition over a brand's recent
// activity. A nil alert with a nil error means the condition did not
// trigger (including empty or zero-denominator windows, which are
// expected steady-state, not faults). Detectors are read-only over
// stored events and independent of each other.
type Detector interface {
	Name() string
	Evaluate(ctx context.Context, brandID string, now time.Time) (*models.Alert, error)
}

// SentimentDetector raises an alert when the share of negative
// comments in the trailing two hours crosses the trigger ratio.
type SentimentDetector struct {
	store storage.Store
}

func NewSentimentDetector(store storage.Store) *SentimentDetector {
	return &SentimentDetector{store: store}
}

func (d *SentimentDetector) Name() string { return "sentiment_ratio" }

func (d *SentimentDetector) Evaluate(ctx context.Context, brandID string, now time.Time) (*models.Alert, error) {
	since := now.Add(-sentimentWindow)
	recent, err := d.store.CommentsSince(ctx, brandID, since, windowScanLimit)
	if err != nil {
		return nil, fmt.Errorf("sentiment window query failed: %w", err)
	}
	if len(recent) == 0 {
		return nil, nil
	}

	negative := 0
	for _, c := range recent {
		if c.SentimentType == models.SentimentNegative {
			negative++
		}
	}
	negativeRatio := float64(negative) / float64(len(recent))
	if negativeRatio <= negativeRatioThreshold {
		return nil, nil
	}

	severity := models.SeverityMedium
	if negativeRatio > negativeRatioHigh {
		severity = models.SeverityHigh
	}

	return models.NewAlert(
		brandID,
		models.AlertSentiment,
		severity,
		"High Negative Sentiment Detected",
		fmt.Sprintf("Negative sentiment ratio: %.1f%% in the last 2 hours", negativeRatio*100),
		map[string]interface{}{
			"negative_ratio": negativeRatio,
			"total_comments": len(recent),
		},
	), nil
}

// VolumeDetector raises an alert when the current hour's comment count
// grows past the trigger ratio against the previous hour. A previous
// hour with zero comments never triggers: the growth rate is undefined,
// so a brand's first hour of activity cannot spike.
type VolumeDetector struct {
	store storage.Store
}

func NewVolumeDetector(store storage.Store) *VolumeDetector {
	return &VolumeDetector{store: store}
}

func (d *VolumeDetector) Name() string { return "volume_spike" }

func (d *VolumeDetector) Evaluate(ctx context.Context, brandID string, now time.Time) (*models.Alert, error) {
	oneHourAgo := now.Add(-volumeWindow)
	twoHoursAgo := now.Add(-2 * volumeWindow)

	// The current window is open above so the comment that triggered
	// this evaluation is always counted.
	currentCount, err := d.store.CountCommentsBetween(ctx, brandID, oneHourAgo, time.Time{})
	if err != nil {
		return nil, fmt.Errorf("current volume window query failed: %w", err)
	}
	previousCount, err := d.store.CountCommentsBetween(ctx, brandID, twoHoursAgo, oneHourAgo)
	if err != nil {
		return nil, fmt.Errorf("previous volume window query failed: %w", err)
	}
	if previousCount == 0 {
		return nil, nil
	}

	increase := float64(currentCount-previousCount) / float64(previousCount)
	if increase <= volumeIncreaseTrigger {
		return nil, nil
	}

	return models.NewAlert(
		brandID,
		models.AlertVolume,
		models.SeverityHigh,
		"Unusual Activity Volume",
		fmt.Sprintf("Comment volume increased by %.1f%% in the last hour", increase*100),
		map[string]interface{}{
			"volume_increase": increase,
			"current_count":   currentCount,
		},
	), nil
}

// ResponseTimeDetector raises an alert when comments flagged for a
// response have gone unanswered past the SLA. It runs on a schedule
// rather than per ingest, registered alongside the other detectors.
type ResponseTimeDetector struct {
	store storage.Store
	sla   time.Duration
}

func NewResponseTimeDetector(store storage.Store, sla time.Duration) *ResponseTimeDetector {
	return &ResponseTimeDetector{store: store, sla: sla}
}

func (d *ResponseTimeDetector) Name() string { return "response_sla" }

func (d *ResponseTimeDetector) Evaluate(ctx context.Context, brandID string, now time.Time) (*models.Alert, error) {
	cutoff := now.Add(-d.sla)
	overdue, err := d.store.CountOverdueComments(ctx, brandID, cutoff)
	if err != nil {
		return nil, fmt.Errorf("overdue comment query failed: %w", err)
	}
	if overdue == 0 {
		return nil, nil
	}

	severity := models.SeverityMedium
	if overdue >= 5 {
		severity = models.SeverityHigh
	}

	slaMinutes := int(d.sla.Minutes())
	return models.NewAlert(
		brandID,
		models.AlertResponseTime,
		severity,
		"Response SLA Breached",
		fmt.Sprintf("%d comments have waited more than %d minutes for a response", overdue, slaMinutes),
		map[string]interface{}{
			"overdue_count": overdue,
			"sla_minutes":   slaMinutes,
		},
	), nil
}
