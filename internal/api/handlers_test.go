package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/brandpulse/reputation-monitor/internal/engine"
	"github.com/brandpulse/reputation-monitor/internal/models"
	"github.com/brandpulse/reputation-monitor/internal/samples"
	"github.com/brandpulse/reputation-monitor/internal/sentiment"
	"github.com/brandpulse/reputation-monitor/internal/storage"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) (*mux.Router, *storage.MemoryStore) {
	t.Helper()
	store := storage.NewMemoryStore()
	lexicon, err := sentiment.DefaultLexicon()
	require.NoError(t, err)

	engineService := engine.NewService(store, sentiment.NewAnalyzer(lexicon), nil, time.Hour)
	sampler := samples.NewGenerator(store, engineService, 1)
	return NewRouter(NewHandler(store, engineService, sampler)), store
}

func doJSON(t *testing.T, router *mux.Router, method, path string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	if payload != nil {
		require.NoError(t, json.NewEncoder(&body).Encode(payload))
	}
	req := httptest.NewRequest(method, path, &body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestHealth(t *testing.T) {
	router, _ := newTestRouter(t)
	rec := doJSON(t, router, "GET", "/health", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", decodeBody(t, rec)["status"])
}

func TestCreateBrand(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, "POST", "/api/brands", map[string]string{
		"name":             "TechCorp",
		"facebook_page_id": "fb_123",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "TechCorp", body["name"])
	assert.NotEmpty(t, body["id"])
	assert.Equal(t, true, body["is_active"])
}

func TestCreateBrand_MissingName(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, "POST", "/api/brands", map[string]string{
		"facebook_page_id": "fb_123",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeBody(t, rec)["detail"], "name")
}

func TestBrandUpdateAndDelete(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, "POST", "/api/brands", map[string]string{"name": "TechCorp"})
	require.Equal(t, http.StatusOK, rec.Code)
	brandID := decodeBody(t, rec)["id"].(string)

	rec = doJSON(t, router, "PUT", "/api/brands/"+brandID, map[string]string{"name": "TechCorp Global"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "TechCorp Global", decodeBody(t, rec)["name"])

	rec = doJSON(t, router, "DELETE", "/api/brands/"+brandID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, "GET", "/api/brands", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]\n", rec.Body.String())
}

func TestGetBrand_NotFound(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, "GET", "/api/brands/does-not-exist", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func commentPayload(brandID string) map[string]interface{} {
	return map[string]interface{}{
		"brand_id":    brandID,
		"platform":    "facebook",
		"platform_id": "fb_c_1",
		"content":     "Terrible customer service, very disappointed.",
		"author_name": "Jamie",
		"author_id":   "user_1",
		"post_id":     "post_1",
	}
}

func TestCreateComment_Classified(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, "POST", "/api/comments", commentPayload("brand-1"))
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "negative", body["sentiment_type"])
	assert.Less(t, body["sentiment_score"].(float64), 0.0)
	assert.Equal(t, true, body["needs_response"])
	assert.Equal(t, float64(5), body["priority"])
}

func TestCreateComment_ValidationFailure(t *testing.T) {
	router, store := newTestRouter(t)

	payload := commentPayload("brand-1")
	payload["content"] = ""
	rec := doJSON(t, router, "POST", "/api/comments", payload)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeBody(t, rec)["detail"], "content")

	comments, err := store.ListComments(context.Background(), storage.CommentFilter{})
	require.NoError(t, err)
	assert.Empty(t, comments)
}

func TestCreateComment_MalformedJSON(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest("POST", "/api/comments", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRespondComment(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, "POST", "/api/comments", commentPayload("brand-1"))
	require.Equal(t, http.StatusOK, rec.Code)
	commentID := decodeBody(t, rec)["id"].(string)

	rec = doJSON(t, router, "PUT", fmt.Sprintf("/api/comments/%s/respond", commentID), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "Comment marked as responded", body["message"])
	assert.Contains(t, body, "response_time")

	rec = doJSON(t, router, "GET", "/api/comments?needs_response=true", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var comments []models.Comment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &comments))
	require.Len(t, comments, 1)
	assert.True(t, comments[0].HasResponse)
}

func TestRespondComment_NotFound(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, "PUT", "/api/comments/missing/respond", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateMention(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, "POST", "/api/mentions", map[string]interface{}{
		"brand_id":    "brand-1",
		"platform":    "instagram",
		"platform_id": "ig_m_1",
		"content":     "Love the new product line, great work!",
		"author_name": "Alex",
		"author_id":   "user_7",
		"url":         "https://instagram.com/p/ig_m_1",
		"reach":       2500,
		"engagement":  310,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "positive", body["sentiment_type"])
	assert.Equal(t, float64(2500), body["reach"])
}

func TestListAlerts_FilteredBySeverity(t *testing.T) {
	router, store := newTestRouter(t)
	ctx := context.Background()

	high := models.NewAlert("brand-1", models.AlertSentiment, models.SeverityHigh, "t", "d", nil)
	medium := models.NewAlert("brand-1", models.AlertVolume, models.SeverityMedium, "t", "d", nil)
	require.NoError(t, store.InsertAlert(ctx, high))
	require.NoError(t, store.InsertAlert(ctx, medium))

	rec := doJSON(t, router, "GET", "/api/alerts?severity=high", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var alerts []models.Alert
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &alerts))
	require.Len(t, alerts, 1)
	assert.Equal(t, high.ID, alerts[0].ID)
}

func TestAcknowledgeAlert(t *testing.T) {
	router, store := newTestRouter(t)
	ctx := context.Background()

	alert := models.NewAlert("brand-1", models.AlertSentiment, models.SeverityHigh, "t", "d", nil)
	require.NoError(t, store.InsertAlert(ctx, alert))

	rec := doJSON(t, router, "PUT", fmt.Sprintf("/api/alerts/%s/acknowledge", alert.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, "GET", "/api/alerts?is_acknowledged=false", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]\n", rec.Body.String())
}

func TestDashboard(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, "POST", "/api/comments", commentPayload("brand-1"))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, "GET", "/api/analytics/dashboard?brand_id=brand-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	require.Contains(t, body, "sentiment_distribution")
	require.Contains(t, body, "recent_activity")
	require.Contains(t, body, "priority_items")
	require.Contains(t, body, "unacknowledged_alerts")

	activity := body["recent_activity"].(map[string]interface{})
	assert.Equal(t, float64(1), activity["comments"])
	assert.Equal(t, float64(0), activity["mentions"])

	// The negative comment also lands in the priority queue.
	assert.Len(t, body["priority_items"], 1)
}

func TestTrends_PeriodClamped(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, "GET", "/api/analytics/trends?days=90", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "30 days", decodeBody(t, rec)["period"])

	rec = doJSON(t, router, "GET", "/api/analytics/trends", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "7 days", decodeBody(t, rec)["period"])
}

func TestGenerateSampleData(t *testing.T) {
	router, store := newTestRouter(t)

	rec := doJSON(t, router, "POST", "/api/sample-data/generate", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, float64(3), body["brands_created"])

	ctx := context.Background()
	brands, err := store.ListBrands(ctx)
	require.NoError(t, err)
	assert.Len(t, brands, 3)

	comments, err := store.ListComments(ctx, storage.CommentFilter{})
	require.NoError(t, err)
	assert.NotEmpty(t, comments)
}
