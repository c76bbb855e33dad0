package storage

import (
	"context"
	"errors"
	"time"

	"github.com/brandpulse/reputation-monitor/internal/models"
)

// ErrNotFound is returned when a lookup by ID matches nothing.
var ErrNotFound = errors.New("not found")

// DefaultScanLimit caps how many documents a window or list query
// returns when the caller does not set its own limit.
const DefaultScanLimit = 1000

// CommentFilter narrows comment list queries. Zero values mean "any".
type CommentFilter struct {
	BrandID       string
	Platform      models.Platform
	SentimentType models.SentimentType
	NeedsResponse *bool
	Limit         int64
}

// MentionFilter narrows mention list queries.
type MentionFilter struct {
	BrandID       string
	Platform      models.Platform
	SentimentType models.SentimentType
	Limit         int64
}

// PostFilter narrows post list queries.
type PostFilter struct {
	BrandID  string
	Platform models.Platform
	Limit    int64
}

// AlertFilter narrows alert list queries.
type AlertFilter struct {
	BrandID        string
	AlertType      models.AlertType
	Severity       models.AlertSeverity
	IsAcknowledged *bool
	Limit          int64
}

// DailySentiment is one day's worth of sentiment counts for a brand.
type DailySentiment struct {
	Positive int `json:"positive"`
	Negative int `json:"negative"`
	Neutral  int `json:"neutral"`
}

// Store is the persistence contract the engine and API are written
// against. Implementations must provide per-document atomicity; no
// cross-collection transactions are assumed anywhere.
type Store interface {
	// Brands
	InsertBrand(ctx context.Context, brand *models.Brand) error
	ListBrands(ctx context.Context) ([]models.Brand, error) // active brands only
	GetBrand(ctx context.Context, id string) (*models.Brand, error)
	ReplaceBrand(ctx context.Context, brand *models.Brand) error
	DeactivateBrand(ctx context.Context, id string) error

	// Comments
	InsertComment(ctx context.Context, comment *models.Comment) error
	GetComment(ctx context.Context, id string) (*models.Comment, error)
	ListComments(ctx context.Context, filter CommentFilter) ([]models.Comment, error)
	MarkCommentResponded(ctx context.Context, id string, responseTimeMinutes int) error
	// CommentsSince returns up to limit comments for a brand created at
	// or after since, newest first.
	CommentsSince(ctx context.Context, brandID string, since time.Time, limit int64) ([]models.Comment, error)
	// CommentsBetween returns comments in [since, until), newest first.
	CommentsBetween(ctx context.Context, brandID string, since, until time.Time, limit int64) ([]models.Comment, error)
	// CountCommentsBetween counts comments in [since, until). A zero
	// until leaves the range open-ended.
	CountCommentsBetween(ctx context.Context, brandID string, since, until time.Time) (int64, error)
	// CountOverdueComments counts comments flagged needs_response with
	// no response yet, created before cutoff.
	CountOverdueComments(ctx context.Context, brandID string, cutoff time.Time) (int64, error)
	// PriorityComments returns unanswered needs_response comments,
	// highest priority first.
	PriorityComments(ctx context.Context, brandID string, limit int64) ([]models.Comment, error)

	// Mentions
	InsertMention(ctx context.Context, mention *models.Mention) error
	ListMentions(ctx context.Context, filter MentionFilter) ([]models.Mention, error)
	MentionsBetween(ctx context.Context, brandID string, since, until time.Time, limit int64) ([]models.Mention, error)
	CountMentionsSince(ctx context.Context, brandID string, since time.Time) (int64, error)

	// Posts
	InsertPost(ctx context.Context, post *models.Post) error
	ListPosts(ctx context.Context, filter PostFilter) ([]models.Post, error)

	// Alerts
	InsertAlert(ctx context.Context, alert *models.Alert) error
	ListAlerts(ctx context.Context, filter AlertFilter) ([]models.Alert, error)
	AcknowledgeAlert(ctx context.Context, id string) error
	AlertsBetween(ctx context.Context, brandID string, since, until time.Time, limit int64) ([]models.Alert, error)

	// Analytics
	SentimentDistribution(ctx context.Context, brandID string) (map[models.SentimentType]int, error)
	DailySentimentCounts(ctx context.Context, brandID string, since time.Time) (map[string]DailySentiment, error)
	UpsertSentimentTrend(ctx context.Context, trend *models.SentimentTrend) error
}
