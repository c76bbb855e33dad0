package models

import (
	"time"

	"github.com/google/uuid"
)

// Platform identifies the social network an item came from.
type Platform string

const (
	PlatformFacebook  Platform = "facebook"
	PlatformInstagram Platform = "instagram"
)

// Valid reports whether the platform is one we track.
func (p Platform) Valid() bool {
	return p == PlatformFacebook || p == PlatformInstagram
}

// SentimentType is the three-way polarity category of a piece of text.
type SentimentType string

const (
	SentimentPositive SentimentType = "positive"
	SentimentNegative SentimentType = "negative"
	SentimentNeutral  SentimentType = "neutral"
)

// AlertType identifies which detector produced an alert.
type AlertType string

const (
	AlertSentiment    AlertType = "sentiment"
	AlertVolume       AlertType = "volume"
	AlertResponseTime AlertType = "response_time"
)

// AlertSeverity ranks how urgent an alert is.
type AlertSeverity string

const (
	SeverityLow      AlertSeverity = "low"
	SeverityMedium   AlertSeverity = "medium"
	SeverityHigh     AlertSeverity = "high"
	SeverityCritical AlertSeverity = "critical"
)

// Brand is a tracked company or product whose social engagement we monitor.
type Brand struct {
	ID                  string                 `json:"id" bson:"id"`
	Name                string                 `json:"name" bson:"name"`
	FacebookPageID      string                 `json:"facebook_page_id,omitempty" bson:"facebook_page_id,omitempty"`
	InstagramBusinessID string                 `json:"instagram_business_id,omitempty" bson:"instagram_business_id,omitempty"`
	CreatedAt           time.Time              `json:"created_at" bson:"created_at"`
	IsActive            bool                   `json:"is_active" bson:"is_active"`
	Settings            map[string]interface{} `json:"settings" bson:"settings"`
}

// NewBrand builds a brand with a fresh ID and creation timestamp.
func NewBrand(name, facebookPageID, instagramBusinessID string) *Brand {
	return &Brand{
		ID:                  uuid.NewString(),
		Name:                name,
		FacebookPageID:      facebookPageID,
		InstagramBusinessID: instagramBusinessID,
		CreatedAt:           time.Now().UTC(),
		IsActive:            true,
		Settings:            map[string]interface{}{},
	}
}

// Comment is a user comment on a brand's post. Comments are the only
// content type that carries a priority and response tracking.
type Comment struct {
	ID             string        `json:"id" bson:"id"`
	BrandID        string        `json:"brand_id" bson:"brand_id"`
	Platform       Platform      `json:"platform" bson:"platform"`
	PlatformID     string        `json:"platform_id" bson:"platform_id"`
	Content        string        `json:"content" bson:"content"`
	AuthorName     string        `json:"author_name" bson:"author_name"`
	AuthorID       string        `json:"author_id" bson:"author_id"`
	PostID         string        `json:"post_id" bson:"post_id"`
	CreatedAt      time.Time     `json:"created_at" bson:"created_at"`
	SentimentScore float64       `json:"sentiment_score" bson:"sentiment_score"`
	SentimentType  SentimentType `json:"sentiment_type" bson:"sentiment_type"`
	NeedsResponse  bool          `json:"needs_response" bson:"needs_response"`
	HasResponse    bool          `json:"has_response" bson:"has_response"`
	ResponseTime   *int          `json:"response_time,omitempty" bson:"response_time,omitempty"` // minutes
	Priority       int           `json:"priority" bson:"priority"`                               // 0-5
}

// Mention is a brand mention somewhere outside the brand's own posts.
// Mentions are classified but never prioritized.
type Mention struct {
	ID             string        `json:"id" bson:"id"`
	BrandID        string        `json:"brand_id" bson:"brand_id"`
	Platform       Platform      `json:"platform" bson:"platform"`
	PlatformID     string        `json:"platform_id" bson:"platform_id"`
	Content        string        `json:"content" bson:"content"`
	AuthorName     string        `json:"author_name" bson:"author_name"`
	AuthorID       string        `json:"author_id" bson:"author_id"`
	URL            string        `json:"url" bson:"url"`
	CreatedAt      time.Time     `json:"created_at" bson:"created_at"`
	SentimentScore float64       `json:"sentiment_score" bson:"sentiment_score"`
	SentimentType  SentimentType `json:"sentiment_type" bson:"sentiment_type"`
	Reach          int           `json:"reach" bson:"reach"`
	Engagement     int           `json:"engagement" bson:"engagement"`
}

// Post is a brand's own published content.
type Post struct {
	ID             string        `json:"id" bson:"id"`
	BrandID        string        `json:"brand_id" bson:"brand_id"`
	Platform       Platform      `json:"platform" bson:"platform"`
	PlatformID     string        `json:"platform_id" bson:"platform_id"`
	Content        string        `json:"content" bson:"content"`
	CreatedAt      time.Time     `json:"created_at" bson:"created_at"`
	Likes          int           `json:"likes" bson:"likes"`
	Shares         int           `json:"shares" bson:"shares"`
	CommentsCount  int           `json:"comments_count" bson:"comments_count"`
	SentimentScore float64       `json:"sentiment_score" bson:"sentiment_score"`
	SentimentType  SentimentType `json:"sentiment_type" bson:"sentiment_type"`
}

// Alert is an anomaly raised by a detector for one brand. Alerts are
// append-only; acknowledgement is the only later mutation.
type Alert struct {
	ID             string                 `json:"id" bson:"id"`
	BrandID        string                 `json:"brand_id" bson:"brand_id"`
	AlertType      AlertType              `json:"alert_type" bson:"alert_type"`
	Severity       AlertSeverity          `json:"severity" bson:"severity"`
	Title          string                 `json:"title" bson:"title"`
	Description    string                 `json:"description" bson:"description"`
	CreatedAt      time.Time              `json:"created_at" bson:"created_at"`
	IsAcknowledged bool                   `json:"is_acknowledged" bson:"is_acknowledged"`
	AcknowledgedAt *time.Time             `json:"acknowledged_at,omitempty" bson:"acknowledged_at,omitempty"`
	Data           map[string]interface{} `json:"data" bson:"data"`
}

// NewAlert builds an alert with a fresh ID and creation timestamp.
func NewAlert(brandID string, alertType AlertType, severity AlertSeverity, title, description string, data map[string]interface{}) *Alert {
	if data == nil {
		data = map[string]interface{}{}
	}
	return &Alert{
		ID:          uuid.NewString(),
		BrandID:     brandID,
		AlertType:   alertType,
		Severity:    severity,
		Title:       title,
		Description: description,
		CreatedAt:   time.Now().UTC(),
		Data:        data,
	}
}

// SentimentTrend is a per-brand daily rollup of classified comments.
type SentimentTrend struct {
	ID                string    `json:"id" bson:"id"`
	BrandID           string    `json:"brand_id" bson:"brand_id"`
	Date              time.Time `json:"date" bson:"date"`
	PositiveCount     int       `json:"positive_count" bson:"positive_count"`
	NegativeCount     int       `json:"negative_count" bson:"negative_count"`
	NeutralCount      int       `json:"neutral_count" bson:"neutral_count"`
	TotalCount        int       `json:"total_count" bson:"total_count"`
	AvgSentimentScore float64   `json:"avg_sentiment_score" bson:"avg_sentiment_score"`
}
