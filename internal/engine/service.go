// Package engine implements the classification and alerting core:
// event ingestion, priority triage, and time-windowed anomaly
// detection over a brand's recent activity.
//
// Alerting is at-least-once, not exactly-once. Nothing deduplicates or
// suppresses alerts: every evaluation that trips a threshold inserts
// a fresh alert, and two concurrent ingestions can both observe the
// same threshold crossing and each emit one. Callers needing
// idempotency must add it outside this package.
package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/brandpulse/reputation-monitor/internal/models"
	"github.com/brandpulse/reputation-monitor/internal/notifications"
	"github.com/brandpulse/reputation-monitor/internal/sentiment"
	"github.com/brandpulse/reputation-monitor/internal/storage"
	"github.com/brandpulse/reputation-monitor/internal/triage"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// CommentInput is an incoming comment event before classification.
type CommentInput struct {
	BrandID    string          `json:"brand_id"`
	Platform   models.Platform `json:"platform"`
	PlatformID string          `json:"platform_id"`
	Content    string          `json:"content"`
	AuthorName string          `json:"author_name"`
	AuthorID   string          `json:"author_id"`
	PostID     string          `json:"post_id"`
	CreatedAt  time.Time       `json:"created_at,omitempty"`
}

// MentionInput is an incoming mention event before classification.
type MentionInput struct {
	BrandID    string          `json:"brand_id"`
	Platform   models.Platform `json:"platform"`
	PlatformID string          `json:"platform_id"`
	Content    string          `json:"content"`
	AuthorName string          `json:"author_name"`
	AuthorID   string          `json:"author_id"`
	URL        string          `json:"url"`
	Reach      int             `json:"reach"`
	Engagement int             `json:"engagement"`
	CreatedAt  time.Time       `json:"created_at,omitempty"`
}

// PostInput is an incoming post event before classification.
type PostInput struct {
	BrandID       string          `json:"brand_id"`
	Platform      models.Platform `json:"platform"`
	PlatformID    string          `json:"platform_id"`
	Content       string          `json:"content"`
	Likes         int             `json:"likes"`
	Shares        int             `json:"shares"`
	CommentsCount int             `json:"comments_count"`
	CreatedAt     time.Time       `json:"created_at,omitempty"`
}

// Metrics holds ingestion and alerting counters.
type Metrics struct {
	IngestedComments int                      `json:"ingested_comments"`
	IngestedMentions int                      `json:"ingested_mentions"`
	IngestedPosts    int                      `json:"ingested_posts"`
	AlertsRaised     map[models.AlertType]int `json:"alerts_raised"`
	EvaluationErrors int                      `json:"evaluation_errors"`
	LastIngest       time.Time                `json:"last_ingest"`
	LexiconVersion   string                   `json:"lexicon_version"`
}

// Service wires the classifier, triage, detectors, storage, and the
// alert notifier into the ingestion flow.
type Service struct {
	store           storage.Store
	analyzer        *sentiment.Analyzer
	notifier        notifications.AlertNotifier
	ingestDetectors []Detector
	slaDetector     Detector

	mu      sync.RWMutex
	metrics Metrics
}

// NewService builds the engine. The sentiment-ratio and volume-spike
// detectors run synchronously on every comment ingestion; the
// response-SLA detector runs only via RunResponseSLACheck.
func NewService(store storage.Store, analyzer *sentiment.Analyzer, notifier notifications.AlertNotifier, responseSLA time.Duration) *Service {
	if analyzer.Degraded() {
		logrus.Warn("Sentiment lexicon is empty; all content will classify as neutral")
	}
	return &Service{
		store:    store,
		analyzer: analyzer,
		notifier: notifier,
		ingestDetectors: []Detector{
			NewSentimentDetector(store),
			NewVolumeDetector(store),
		},
		slaDetector: NewResponseTimeDetector(store, responseSLA),
		metrics: Metrics{
			AlertsRaised:   make(map[models.AlertType]int),
			LexiconVersion: analyzer.LexiconVersion(),
		},
	}
}

// IngestComment validates, classifies, triages, and persists a comment,
// then runs the per-ingest detectors for its brand. The event write is
// the only failure surfaced to the caller; detector and notification
// failures are logged and never roll back a persisted comment.
func (s *Service) IngestComment(ctx context.Context, input CommentInput) (*models.Comment, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	score, sentimentType := s.analyzer.Classify(input.Content)
	priority := triage.Score(score, 0)

	comment := &models.Comment{
		ID:             uuid.NewString(),
		BrandID:        input.BrandID,
		Platform:       input.Platform,
		PlatformID:     input.PlatformID,
		Content:        input.Content,
		AuthorName:     input.AuthorName,
		AuthorID:       input.AuthorID,
		PostID:         input.PostID,
		CreatedAt:      createdAtOrNow(input.CreatedAt),
		SentimentScore: score,
		SentimentType:  sentimentType,
		Priority:       priority,
		NeedsResponse:  triage.NeedsResponse(score, priority),
	}

	if err := s.store.InsertComment(ctx, comment); err != nil {
		return nil, fmt.Errorf("failed to persist comment: %w", err)
	}

	s.evaluateAlerts(ctx, input.BrandID, comment.CreatedAt, s.ingestDetectors)

	s.mu.Lock()
	s.metrics.IngestedComments++
	s.metrics.LastIngest = time.Now().UTC()
	s.mu.Unlock()

	return comment, nil
}

// IngestMention validates, classifies, and persists a mention. Mentions
// carry engagement but are never prioritized and do not trigger the
// detectors, which window over comments.
func (s *Service) IngestMention(ctx context.Context, input MentionInput) (*models.Mention, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	score, sentimentType := s.analyzer.Classify(input.Content)

	mention := &models.Mention{
		ID:             uuid.NewString(),
		BrandID:        input.BrandID,
		Platform:       input.Platform,
		PlatformID:     input.PlatformID,
		Content:        input.Content,
		AuthorName:     input.AuthorName,
		AuthorID:       input.AuthorID,
		URL:            input.URL,
		Reach:          input.Reach,
		Engagement:     input.Engagement,
		CreatedAt:      createdAtOrNow(input.CreatedAt),
		SentimentScore: score,
		SentimentType:  sentimentType,
	}

	if err := s.store.InsertMention(ctx, mention); err != nil {
		return nil, fmt.Errorf("failed to persist mention: %w", err)
	}

	s.mu.Lock()
	s.metrics.IngestedMentions++
	s.metrics.LastIngest = time.Now().UTC()
	s.mu.Unlock()

	return mention, nil
}

// IngestPost validates, classifies, and persists a brand post.
func (s *Service) IngestPost(ctx context.Context, input PostInput) (*models.Post, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	score, sentimentType := s.analyzer.Classify(input.Content)

	post := &models.Post{
		ID:             uuid.NewString(),
		BrandID:        input.BrandID,
		Platform:       input.Platform,
		PlatformID:     input.PlatformID,
		Content:        input.Content,
		Likes:          input.Likes,
		Shares:         input.Shares,
		CommentsCount:  input.CommentsCount,
		CreatedAt:      createdAtOrNow(input.CreatedAt),
		SentimentScore: score,
		SentimentType:  sentimentType,
	}

	if err := s.store.InsertPost(ctx, post); err != nil {
		return nil, fmt.Errorf("failed to persist post: %w", err)
	}

	s.mu.Lock()
	s.metrics.IngestedPosts++
	s.metrics.LastIngest = time.Now().UTC()
	s.mu.Unlock()

	return post, nil
}

// evaluateAlerts runs each detector and persists and fans out whatever
// it raises. Everything here is best-effort: failures are counted and
// logged, never returned.
func (s *Service) evaluateAlerts(ctx context.Context, brandID string, now time.Time, detectors []Detector) {
	for _, detector := range detectors {
		alert, err := detector.Evaluate(ctx, brandID, now)
		if err != nil {
			logrus.Errorf("Detector %s failed for brand %s: %v", detector.Name(), brandID, err)
			s.countEvaluationError()
			continue
		}
		if alert == nil {
			continue
		}

		if err := s.store.InsertAlert(ctx, alert); err != nil {
			logrus.Errorf("Failed to persist %s alert for brand %s: %v", alert.AlertType, brandID, err)
			s.countEvaluationError()
			continue
		}

		logrus.Infof("Raised %s/%s alert for brand %s: %s", alert.AlertType, alert.Severity, brandID, alert.Title)
		s.mu.Lock()
		s.metrics.AlertsRaised[alert.AlertType]++
		s.mu.Unlock()

		if s.notifier != nil {
			if err := s.notifier.SendAlert(alert); err != nil {
				logrus.Errorf("Failed to notify %s alert for brand %s: %v", alert.AlertType, brandID, err)
			}
		}
	}
}

func (s *Service) countEvaluationError() {
	s.mu.Lock()
	s.metrics.EvaluationErrors++
	s.mu.Unlock()
}

// RunResponseSLACheck runs the response-SLA detector over every active
// brand. Invoked by the scheduler, not by ingestion.
func (s *Service) RunResponseSLACheck(ctx context.Context) error {
	brands, err := s.store.ListBrands(ctx)
	if err != nil {
		return fmt.Errorf("failed to list brands for SLA check: %w", err)
	}

	now := time.Now().UTC()
	for _, brand := range brands {
		s.evaluateAlerts(ctx, brand.ID, now, []Detector{s.slaDetector})
	}
	return nil
}

// RollupDailyTrends aggregates yesterday's comments per brand into the
// sentiment_trends collection.
func (s *Service) RollupDailyTrends(ctx context.Context, day time.Time) error {
	brands, err := s.store.ListBrands(ctx)
	if err != nil {
		return fmt.Errorf("failed to list brands for trend rollup: %w", err)
	}

	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.Add(24 * time.Hour)

	for _, brand := range brands {
		comments, err := s.store.CommentsBetween(ctx, brand.ID, dayStart, dayEnd, storage.DefaultScanLimit)
		if err != nil {
			logrus.Errorf("Trend rollup query failed for brand %s: %v", brand.ID, err)
			continue
		}
		if len(comments) == 0 {
			continue
		}

		trend := &models.SentimentTrend{
			ID:      uuid.NewString(),
			BrandID: brand.ID,
			Date:    dayStart,
		}
		var scoreSum float64
		for _, c := range comments {
			switch c.SentimentType {
			case models.SentimentPositive:
				trend.PositiveCount++
			case models.SentimentNegative:
				trend.NegativeCount++
			default:
				trend.NeutralCount++
			}
			scoreSum += c.SentimentScore
		}
		trend.TotalCount = len(comments)
		trend.AvgSentimentScore = scoreSum / float64(len(comments))

		if err := s.store.UpsertSentimentTrend(ctx, trend); err != nil {
			logrus.Errorf("Trend rollup write failed for brand %s: %v", brand.ID, err)
			continue
		}
		logrus.Debugf("Rolled up %d comments for brand %s on %s", trend.TotalCount, brand.ID, dayStart.Format("2006-01-02"))
	}
	return nil
}

// ExportDailyArchive writes one day's comments, mentions, and alerts
// per brand to the archiver as JSON blobs. A nil archiver disables it.
func (s *Service) ExportDailyArchive(ctx context.Context, archiver storage.Archiver, day time.Time) error {
	if archiver == nil {
		return nil
	}

	brands, err := s.store.ListBrands(ctx)
	if err != nil {
		return fmt.Errorf("failed to list brands for archive export: %w", err)
	}

	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.Add(24 * time.Hour)

	for _, brand := range brands {
		comments, err := s.store.CommentsBetween(ctx, brand.ID, dayStart, dayEnd, storage.DefaultScanLimit)
		if err == nil && len(comments) > 0 {
			if err := archiver.Export(ctx, storage.ExportName("comments", brand.ID, dayStart), comments); err != nil {
				logrus.Errorf("Comment archive failed for brand %s: %v", brand.ID, err)
			}
		}

		mentions, err := s.store.MentionsBetween(ctx, brand.ID, dayStart, dayEnd, storage.DefaultScanLimit)
		if err == nil && len(mentions) > 0 {
			if err := archiver.Export(ctx, storage.ExportName("mentions", brand.ID, dayStart), mentions); err != nil {
				logrus.Errorf("Mention archive failed for brand %s: %v", brand.ID, err)
			}
		}

		alerts, err := s.store.AlertsBetween(ctx, brand.ID, dayStart, dayEnd, storage.DefaultScanLimit)
		if err == nil && len(alerts) > 0 {
			if err := archiver.Export(ctx, storage.ExportName("alerts", brand.ID, dayStart), alerts); err != nil {
				logrus.Errorf("Alert archive failed for brand %s: %v", brand.ID, err)
			}
		}
	}
	return nil
}

// GetMetrics returns current counters as indented JSON.
func (s *Service) GetMetrics() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, _ := json.MarshalIndent(s.metrics, "", "  ")
	return string(data)
}

func createdAtOrNow(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t.UTC()
}

func (in CommentInput) validate() error {
	switch {
	case in.BrandID == "":
		return missing("brand_id")
	case in.Content == "":
		return missing("content")
	case in.PlatformID == "":
		return missing("platform_id")
	case in.AuthorName == "":
		return missing("author_name")
	case in.AuthorID == "":
		return missing("author_id")
	case in.PostID == "":
		return missing("post_id")
	}
	if !in.Platform.Valid() {
		return &ValidationError{Field: "platform", Reason: fmt.Sprintf("unknown platform %q", in.Platform)}
	}
	return nil
}

func (in MentionInput) validate() error {
	switch {
	case in.BrandID == "":
		return missing("brand_id")
	case in.Content == "":
		return missing("content")
	case in.PlatformID == "":
		return missing("platform_id")
	case in.AuthorName == "":
		return missing("author_name")
	case in.AuthorID == "":
		return missing("author_id")
	case in.URL == "":
		return missing("url")
	}
	if !in.Platform.Valid() {
		return &ValidationError{Field: "platform", Reason: fmt.Sprintf("unknown platform %q", in.Platform)}
	}
	return nil
}

func (in PostInput) validate() error {
	switch {
	case in.BrandID == "":
		return missing("brand_id")
	case in.Content == "":
		return missing("content")
	case in.PlatformID == "":
		return missing("platform_id")
	}
	if !in.Platform.Valid() {
		return &ValidationError{Field: "platform", Reason: fmt.Sprintf("unknown platform %q", in.Platform)}
	}
	return nil
}
