package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/brandpulse/reputation-monitor/internal/models"
	"github.com/brandpulse/reputation-monitor/internal/sentiment"
	"github.com/brandpulse/reputation-monitor/internal/storage"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockNotifier is a mock implementation of the alert notifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) SendAlert(alert *models.Alert) error {
	args := m.Called(alert)
	return args.Error(0)
}

// failingAlertStore wraps a Store and fails every alert insert.
type failingAlertStore struct {
	storage.Store
}

func (s *failingAlertStore) InsertAlert(context.Context, *models.Alert) error {
	return errors.New("alert collection unavailable")
}

// failingCommentStore wraps a Store and fails every comment insert.
type failingCommentStore struct {
	storage.Store
}

func (s *failingCommentStore) InsertComment(context.Context, *models.Comment) error {
	return errors.New("comment collection unavailable")
}

func newTestService(t *testing.T, store storage.Store) *Service {
	t.Helper()
	lexicon, err := sentiment.DefaultLexicon()
	require.NoError(t, err)
	return NewService(store, sentiment.NewAnalyzer(lexicon), nil, time.Hour)
}

func validCommentInput(brandID string) CommentInput {
	return CommentInput{
		BrandID:    brandID,
		Platform:   models.PlatformFacebook,
		PlatformID: uuid.NewString(),
		Content:    "The customer service was terrible. Will not buy again.",
		AuthorName: "Jamie",
		AuthorID:   "user_1",
		PostID:     "post_1",
	}
}

func TestIngestComment_ClassifiesAndPersists(t *testing.T) {
	store := storage.NewMemoryStore()
	service := newTestService(t, store)
	brandID := uuid.NewString()

	comment, err := service.IngestComment(context.Background(), validCommentInput(brandID))
	require.NoError(t, err)

	assert.NotEmpty(t, comment.ID)
	assert.False(t, comment.CreatedAt.IsZero())
	assert.Equal(t, models.SentimentNegative, comment.SentimentType)
	assert.Negative(t, comment.SentimentScore)
	assert.Equal(t, 5, comment.Priority, "strongly negative comment hits the top sentiment band")
	assert.True(t, comment.NeedsResponse)
	assert.False(t, comment.HasResponse)

	stored, err := store.GetComment(context.Background(), comment.ID)
	require.NoError(t, err)
	assert.Equal(t, comment.SentimentScore, stored.SentimentScore)
	assert.Equal(t, comment.SentimentType, stored.SentimentType)
	assert.Equal(t, comment.Priority, stored.Priority)
}

func TestIngestComment_Validation(t *testing.T) {
	store := storage.NewMemoryStore()
	service := newTestService(t, store)

	tests := []struct {
		name   string
		mutate func(*CommentInput)
	}{
		{"missing brand", func(in *CommentInput) { in.BrandID = "" }},
		{"missing content", func(in *CommentInput) { in.Content = "" }},
		{"missing platform id", func(in *CommentInput) { in.PlatformID = "" }},
		{"missing author name", func(in *CommentInput) { in.AuthorName = "" }},
		{"missing author id", func(in *CommentInput) { in.AuthorID = "" }},
		{"missing post id", func(in *CommentInput) { in.PostID = "" }},
		{"unknown platform", func(in *CommentInput) { in.Platform = "myspace" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validCommentInput(uuid.NewString())
			tt.mutate(&input)

			_, err := service.IngestComment(context.Background(), input)
			var validationErr *ValidationError
			require.ErrorAs(t, err, &validationErr)

			// Rejection happens before any write.
			comments, listErr := store.ListComments(context.Background(), storage.CommentFilter{})
			require.NoError(t, listErr)
			assert.Empty(t, comments)
		})
	}
}

func TestIngestComment_StorageFailureSurfaces(t *testing.T) {
	service := newTestService(t, &failingCommentStore{Store: storage.NewMemoryStore()})

	_, err := service.IngestComment(context.Background(), validCommentInput(uuid.NewString()))
	require.Error(t, err)
	var validationErr *ValidationError
	assert.False(t, errors.As(err, &validationErr), "storage failure is not a validation error")
}

func TestIngestComment_AlertFailureDoesNotFailIngestion(t *testing.T) {
	inner := storage.NewMemoryStore()
	store := &failingAlertStore{Store: inner}
	service := newTestService(t, store)
	brandID := uuid.NewString()

	// Enough negative comments to trip the sentiment detector, whose
	// alert write will fail; ingestion must still succeed.
	for i := 0; i < 5; i++ {
		input := validCommentInput(brandID)
		comment, err := service.IngestComment(context.Background(), input)
		require.NoError(t, err)
		require.NotNil(t, comment)
	}

	comments, err := inner.ListComments(context.Background(), storage.CommentFilter{BrandID: brandID})
	require.NoError(t, err)
	assert.Len(t, comments, 5)
}

func TestIngestComment_AtLeastOnceAlerting(t *testing.T) {
	// No dedup: while the negative ratio stays above threshold, every
	// ingestion raises a fresh sentiment alert.
	store := storage.NewMemoryStore()
	service := newTestService(t, store)
	brandID := uuid.NewString()

	positive := validCommentInput(brandID)
	positive.Content = "Excellent experience! Fast delivery and great product."
	negative := validCommentInput(brandID)
	negative.Content = "Poor quality product. Waste of money."

	for i := 0; i < 6; i++ {
		_, err := service.IngestComment(context.Background(), positive)
		require.NoError(t, err)
	}
	for i := 0; i < 4; i++ {
		_, err := service.IngestComment(context.Background(), negative)
		require.NoError(t, err)
	}

	// Ratios after each negative ingest: 1/7, 2/8, 3/9, 4/10. The last
	// two both cross 0.30, so two separate alerts exist.
	alerts, err := store.ListAlerts(context.Background(), storage.AlertFilter{
		BrandID:   brandID,
		AlertType: models.AlertSentiment,
	})
	require.NoError(t, err)
	assert.Len(t, alerts, 2)
	for _, alert := range alerts {
		assert.False(t, alert.IsAcknowledged)
		assert.Equal(t, models.SeverityMedium, alert.Severity)
	}
}

func TestIngestComment_NotifierReceivesAlerts(t *testing.T) {
	store := storage.NewMemoryStore()
	lexicon, err := sentiment.DefaultLexicon()
	require.NoError(t, err)

	notifier := &MockNotifier{}
	notifier.On("SendAlert", mock.AnythingOfType("*models.Alert")).Return(nil)

	service := NewService(store, sentiment.NewAnalyzer(lexicon), notifier, time.Hour)
	brandID := uuid.NewString()

	negative := validCommentInput(brandID)
	negative.Content = "Worst experience ever. Avoid this brand."
	_, err = service.IngestComment(context.Background(), negative)
	require.NoError(t, err)

	// 1/1 negative crosses the ratio threshold immediately.
	notifier.AssertCalled(t, "SendAlert", mock.AnythingOfType("*models.Alert"))
}

func TestIngestMention_ClassifiedButNeverPrioritized(t *testing.T) {
	store := storage.NewMemoryStore()
	service := newTestService(t, store)
	brandID := uuid.NewString()

	mention, err := service.IngestMention(context.Background(), MentionInput{
		BrandID:    brandID,
		Platform:   models.PlatformInstagram,
		PlatformID: "m1",
		Content:    "Terrible support from this brand, avoid.",
		AuthorName: "Sam",
		AuthorID:   "user_9",
		URL:        "https://instagram.com/p/m1",
		Reach:      5000,
		Engagement: 200,
	})
	require.NoError(t, err)
	assert.Equal(t, models.SentimentNegative, mention.SentimentType)
	assert.Equal(t, 200, mention.Engagement)

	// Mentions never trigger the detectors, which window over comments.
	alerts, err := store.ListAlerts(context.Background(), storage.AlertFilter{BrandID: brandID})
	require.NoError(t, err)
	assert.Empty(t, alerts)
}

func TestIngestMention_Validation(t *testing.T) {
	service := newTestService(t, storage.NewMemoryStore())

	_, err := service.IngestMention(context.Background(), MentionInput{
		BrandID:    uuid.NewString(),
		Platform:   models.PlatformFacebook,
		PlatformID: "m1",
		Content:    "hello",
		AuthorName: "Sam",
		AuthorID:   "user_9",
		// URL missing
	})
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "url", validationErr.Field)
}

func TestIngestPost(t *testing.T) {
	store := storage.NewMemoryStore()
	service := newTestService(t, store)

	post, err := service.IngestPost(context.Background(), PostInput{
		BrandID:    uuid.NewString(),
		Platform:   models.PlatformFacebook,
		PlatformID: "p1",
		Content:    "We love our customers! Thanks for an amazing year.",
		Likes:      120,
		Shares:     14,
	})
	require.NoError(t, err)
	assert.Equal(t, models.SentimentPositive, post.SentimentType)
	assert.Equal(t, 120, post.Likes)
}

func TestStoredSentimentImmutableAfterResponse(t *testing.T) {
	store := storage.NewMemoryStore()
	service := newTestService(t, store)

	comment, err := service.IngestComment(context.Background(), validCommentInput(uuid.NewString()))
	require.NoError(t, err)

	require.NoError(t, store.MarkCommentResponded(context.Background(), comment.ID, 42))

	stored, err := store.GetComment(context.Background(), comment.ID)
	require.NoError(t, err)
	assert.True(t, stored.HasResponse)
	require.NotNil(t, stored.ResponseTime)
	assert.Equal(t, 42, *stored.ResponseTime)

	// Only response tracking mutates; classification is frozen.
	assert.Equal(t, comment.SentimentScore, stored.SentimentScore)
	assert.Equal(t, comment.SentimentType, stored.SentimentType)
	assert.Equal(t, comment.Priority, stored.Priority)
	assert.Equal(t, comment.NeedsResponse, stored.NeedsResponse)
}

func TestRunResponseSLACheck(t *testing.T) {
	store := storage.NewMemoryStore()
	service := newTestService(t, store)

	brand := models.NewBrand("TechCorp", "fb", "ig")
	require.NoError(t, store.InsertBrand(context.Background(), brand))

	overdue := &models.Comment{
		ID:            uuid.NewString(),
		BrandID:       brand.ID,
		Platform:      models.PlatformFacebook,
		PlatformID:    "c1",
		Content:       "still waiting",
		AuthorName:    "Sam",
		AuthorID:      "user_2",
		PostID:        "post_1",
		CreatedAt:     time.Now().UTC().Add(-3 * time.Hour),
		SentimentType: models.SentimentNegative,
		NeedsResponse: true,
	}
	require.NoError(t, store.InsertComment(context.Background(), overdue))

	require.NoError(t, service.RunResponseSLACheck(context.Background()))

	alerts, err := store.ListAlerts(context.Background(), storage.AlertFilter{
		BrandID:   brand.ID,
		AlertType: models.AlertResponseTime,
	})
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, models.SeverityMedium, alerts[0].Severity)
}

func TestRollupDailyTrends(t *testing.T) {
	store := storage.NewMemoryStore()
	service := newTestService(t, store)

	brand := models.NewBrand("FoodiePlace", "fb", "ig")
	require.NoError(t, store.InsertBrand(context.Background(), brand))

	day := time.Date(2024, 5, 9, 0, 0, 0, 0, time.UTC)
	for i, sentimentType := range []models.SentimentType{
		models.SentimentPositive, models.SentimentPositive,
		models.SentimentNegative, models.SentimentNeutral,
	} {
		comment := &models.Comment{
			ID:             uuid.NewString(),
			BrandID:        brand.ID,
			Platform:       models.PlatformFacebook,
			PlatformID:     uuid.NewString(),
			Content:        "rollup",
			AuthorName:     "seed",
			AuthorID:       "seed",
			PostID:         "post",
			CreatedAt:      day.Add(time.Duration(i) * time.Hour),
			SentimentType:  sentimentType,
			SentimentScore: 0.5,
		}
		require.NoError(t, store.InsertComment(context.Background(), comment))
	}

	require.NoError(t, service.RollupDailyTrends(context.Background(), day))
}
