// Package api exposes the monitoring system over HTTP. Handlers stay
// thin: ingestion semantics live in the engine, queries in the store.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/brandpulse/reputation-monitor/internal/engine"
	"github.com/brandpulse/reputation-monitor/internal/models"
	"github.com/brandpulse/reputation-monitor/internal/samples"
	"github.com/brandpulse/reputation-monitor/internal/storage"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

const maxListLimit = 1000

// Handler carries the collaborators every route needs.
type Handler struct {
	store   storage.Store
	engine  *engine.Service
	sampler *samples.Generator
}

// NewHandler builds the API handler set.
func NewHandler(store storage.Store, engineService *engine.Service, sampler *samples.Generator) *Handler {
	return &Handler{store: store, engine: engineService, sampler: sampler}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logrus.Errorf("Failed to encode response: %v", err)
	}
}

func writeMessage(w http.ResponseWriter, status int, format string, args ...interface{}) {
	writeJSON(w, status, map[string]string{"message": fmt.Sprintf(format, args...)})
}

// writeError maps the error taxonomy onto HTTP statuses: validation
// failures are 400, missing documents 404, everything else 500.
func writeError(w http.ResponseWriter, err error) {
	var validationErr *engine.ValidationError
	switch {
	case errors.As(err, &validationErr):
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": validationErr.Error()})
	case errors.Is(err, storage.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "not found"})
	default:
		logrus.Errorf("Request failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": "internal server error"})
	}
}

func parseLimit(r *http.Request) int64 {
	limit := int64(100)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.ParseInt(raw, 10, 64); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	return limit
}

func parseBoolParam(r *http.Request, name string) *bool {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil
	}
	parsed, err := strconv.ParseBool(raw)
	if err != nil {
		return nil
	}
	return &parsed
}

// Root reports the API name and version.
func (h *Handler) Root(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Brand Reputation Monitor API",
		"version": "1.0.0",
	})
}

// Health is the liveness endpoint.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// Metrics returns the engine's ingest and alert counters.
func (h *Handler) Metrics(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(h.engine.GetMetrics()))
}

// Brands

type brandPayload struct {
	Name                string `json:"name"`
	FacebookPageID      string `json:"facebook_page_id"`
	InstagramBusinessID string `json:"instagram_business_id"`
}

func (h *Handler) CreateBrand(w http.ResponseWriter, r *http.Request) {
	var payload brandPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, &engine.ValidationError{Field: "body", Reason: "malformed JSON"})
		return
	}
	if payload.Name == "" {
		writeError(w, &engine.ValidationError{Field: "name"})
		return
	}

	brand := models.NewBrand(payload.Name, payload.FacebookPageID, payload.InstagramBusinessID)
	if err := h.store.InsertBrand(r.Context(), brand); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, brand)
}

func (h *Handler) ListBrands(w http.ResponseWriter, r *http.Request) {
	brands, err := h.store.ListBrands(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if brands == nil {
		brands = []models.Brand{}
	}
	writeJSON(w, http.StatusOK, brands)
}

func (h *Handler) GetBrand(w http.ResponseWriter, r *http.Request) {
	brand, err := h.store.GetBrand(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, brand)
}

func (h *Handler) UpdateBrand(w http.ResponseWriter, r *http.Request) {
	var payload brandPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, &engine.ValidationError{Field: "body", Reason: "malformed JSON"})
		return
	}

	brand, err := h.store.GetBrand(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}

	if payload.Name != "" {
		brand.Name = payload.Name
	}
	if payload.FacebookPageID != "" {
		brand.FacebookPageID = payload.FacebookPageID
	}
	if payload.InstagramBusinessID != "" {
		brand.InstagramBusinessID = payload.InstagramBusinessID
	}

	if err := h.store.ReplaceBrand(r.Context(), brand); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, brand)
}

func (h *Handler) DeleteBrand(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeactivateBrand(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "Brand deleted successfully")
}

// Comments

func (h *Handler) CreateComment(w http.ResponseWriter, r *http.Request) {
	var input engine.CommentInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, &engine.ValidationError{Field: "body", Reason: "malformed JSON"})
		return
	}

	comment, err := h.engine.IngestComment(r.Context(), input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, comment)
}

func (h *Handler) ListComments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := storage.CommentFilter{
		BrandID:       q.Get("brand_id"),
		Platform:      models.Platform(q.Get("platform")),
		SentimentType: models.SentimentType(q.Get("sentiment_type")),
		NeedsResponse: parseBoolParam(r, "needs_response"),
		Limit:         parseLimit(r),
	}

	comments, err := h.store.ListComments(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	if comments == nil {
		comments = []models.Comment{}
	}
	writeJSON(w, http.StatusOK, comments)
}

// RespondComment marks a comment as answered and records how long the
// response took, in whole minutes since the comment was created.
func (h *Handler) RespondComment(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	comment, err := h.store.GetComment(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	responseTime := int(time.Since(comment.CreatedAt).Minutes())
	if err := h.store.MarkCommentResponded(r.Context(), id, responseTime); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":       "Comment marked as responded",
		"response_time": responseTime,
	})
}

// Mentions

func (h *Handler) CreateMention(w http.ResponseWriter, r *http.Request) {
	var input engine.MentionInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, &engine.ValidationError{Field: "body", Reason: "malformed JSON"})
		return
	}

	mention, err := h.engine.IngestMention(r.Context(), input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mention)
}

func (h *Handler) ListMentions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := storage.MentionFilter{
		BrandID:       q.Get("brand_id"),
		Platform:      models.Platform(q.Get("platform")),
		SentimentType: models.SentimentType(q.Get("sentiment_type")),
		Limit:         parseLimit(r),
	}

	mentions, err := h.store.ListMentions(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	if mentions == nil {
		mentions = []models.Mention{}
	}
	writeJSON(w, http.StatusOK, mentions)
}

// Posts

func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	var input engine.PostInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, &engine.ValidationError{Field: "body", Reason: "malformed JSON"})
		return
	}

	post, err := h.engine.IngestPost(r.Context(), input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := storage.PostFilter{
		BrandID:  q.Get("brand_id"),
		Platform: models.Platform(q.Get("platform")),
		Limit:    parseLimit(r),
	}

	posts, err := h.store.ListPosts(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	if posts == nil {
		posts = []models.Post{}
	}
	writeJSON(w, http.StatusOK, posts)
}

// Alerts

func (h *Handler) ListAlerts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := storage.AlertFilter{
		BrandID:        q.Get("brand_id"),
		AlertType:      models.AlertType(q.Get("alert_type")),
		Severity:       models.AlertSeverity(q.Get("severity")),
		IsAcknowledged: parseBoolParam(r, "is_acknowledged"),
		Limit:          parseLimit(r),
	}

	alerts, err := h.store.ListAlerts(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	if alerts == nil {
		alerts = []models.Alert{}
	}
	writeJSON(w, http.StatusOK, alerts)
}

func (h *Handler) AcknowledgeAlert(w http.ResponseWriter, r *http.Request) {
	if err := h.store.AcknowledgeAlert(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "Alert acknowledged")
}

// Analytics

func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	brandID := r.URL.Query().Get("brand_id")

	distribution, err := h.store.SentimentDistribution(ctx, brandID)
	if err != nil {
		writeError(w, err)
		return
	}

	sevenDaysAgo := time.Now().UTC().AddDate(0, 0, -7)
	recentComments, err := h.store.CountCommentsBetween(ctx, brandID, sevenDaysAgo, time.Time{})
	if err != nil {
		writeError(w, err)
		return
	}
	recentMentions, err := h.store.CountMentionsSince(ctx, brandID, sevenDaysAgo)
	if err != nil {
		writeError(w, err)
		return
	}

	priorityItems, err := h.store.PriorityComments(ctx, brandID, 10)
	if err != nil {
		writeError(w, err)
		return
	}
	if priorityItems == nil {
		priorityItems = []models.Comment{}
	}

	unacknowledged := false
	alerts, err := h.store.ListAlerts(ctx, storage.AlertFilter{
		BrandID:        brandID,
		IsAcknowledged: &unacknowledged,
		Limit:          5,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	if alerts == nil {
		alerts = []models.Alert{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"sentiment_distribution": distribution,
		"recent_activity": map[string]int64{
			"comments": recentComments,
			"mentions": recentMentions,
		},
		"priority_items":        priorityItems,
		"unacknowledged_alerts": alerts,
	})
}

func (h *Handler) Trends(w http.ResponseWriter, r *http.Request) {
	brandID := r.URL.Query().Get("brand_id")

	days := 7
	if raw := r.URL.Query().Get("days"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			days = parsed
		}
	}
	if days > 30 {
		days = 30
	}

	since := time.Now().UTC().AddDate(0, 0, -days)
	trends, err := h.store.DailySentimentCounts(r.Context(), brandID, since)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"trends": trends,
		"period": fmt.Sprintf("%d days", days),
	})
}

// Sample data

func (h *Handler) GenerateSampleData(w http.ResponseWriter, r *http.Request) {
	created, err := h.sampler.Generate(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":        "Sample data generated successfully",
		"brands_created": created,
	})
}
