package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/brandpulse/reputation-monitor/internal/models"
)

// MemoryStore is an in-memory Store. It backs local development runs
// and serves as the storage fake in engine and API tests. All methods
// copy on the way in and out so callers never share slices or maps
// with the store.
type MemoryStore struct {
	mu       sync.RWMutex
	brands   []models.Brand
	comments []models.Comment
	mentions []models.Mention
	posts    []models.Post
	alerts   []models.Alert
	trends   []models.SentimentTrend
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func normalizeLimit(limit int64) int64 {
	if limit <= 0 || limit > DefaultScanLimit {
		return DefaultScanLimit
	}
	return limit
}

// Brands

func (s *MemoryStore) InsertBrand(_ context.Context, brand *models.Brand) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.brands = append(s.brands, *brand)
	return nil
}

func (s *MemoryStore) ListBrands(_ context.Context) ([]models.Brand, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Brand
	for _, b := range s.brands {
		if b.IsActive {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *MemoryStore) GetBrand(_ context.Context, id string) (*models.Brand, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, b := range s.brands {
		if b.ID == id {
			brand := b
			return &brand, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) ReplaceBrand(_ context.Context, brand *models.Brand) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.brands {
		if s.brands[i].ID == brand.ID {
			s.brands[i] = *brand
			return nil
		}
	}
	return ErrNotFound
}

func (s *MemoryStore) DeactivateBrand(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.brands {
		if s.brands[i].ID == id {
			s.brands[i].IsActive = false
			return nil
		}
	}
	return ErrNotFound
}

// Comments

func (s *MemoryStore) InsertComment(_ context.Context, comment *models.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.comments = append(s.comments, *comment)
	return nil
}

func (s *MemoryStore) GetComment(_ context.Context, id string) (*models.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.comments {
		if c.ID == id {
			comment := c
			return &comment, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) ListComments(_ context.Context, filter CommentFilter) ([]models.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Comment
	for _, c := range s.comments {
		if filter.BrandID != "" && c.BrandID != filter.BrandID {
			continue
		}
		if filter.Platform != "" && c.Platform != filter.Platform {
			continue
		}
		if filter.SentimentType != "" && c.SentimentType != filter.SentimentType {
			continue
		}
		if filter.NeedsResponse != nil && c.NeedsResponse != *filter.NeedsResponse {
			continue
		}
		out = append(out, c)
	}
	sortNewestFirst(out, func(c models.Comment) time.Time { return c.CreatedAt })
	return capComments(out, normalizeLimit(filter.Limit)), nil
}

func (s *MemoryStore) MarkCommentResponded(_ context.Context, id string, responseTimeMinutes int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.comments {
		if s.comments[i].ID == id {
			rt := responseTimeMinutes
			s.comments[i].HasResponse = true
			s.comments[i].ResponseTime = &rt
			return nil
		}
	}
	return ErrNotFound
}

func (s *MemoryStore) CommentsSince(ctx context.Context, brandID string, since time.Time, limit int64) ([]models.Comment, error) {
	return s.CommentsBetween(ctx, brandID, since, time.Time{}, limit)
}

func (s *MemoryStore) CommentsBetween(_ context.Context, brandID string, since, until time.Time, limit int64) ([]models.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Comment
	for _, c := range s.comments {
		if !matchesWindow(c.BrandID, c.CreatedAt, brandID, since, until) {
			continue
		}
		out = append(out, c)
	}
	sortNewestFirst(out, func(c models.Comment) time.Time { return c.CreatedAt })
	return capComments(out, normalizeLimit(limit)), nil
}

func (s *MemoryStore) CountCommentsBetween(_ context.Context, brandID string, since, until time.Time) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	for _, c := range s.comments {
		if matchesWindow(c.BrandID, c.CreatedAt, brandID, since, until) {
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) CountOverdueComments(_ context.Context, brandID string, cutoff time.Time) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	for _, c := range s.comments {
		if brandID != "" && c.BrandID != brandID {
			continue
		}
		if c.NeedsResponse && !c.HasResponse && c.CreatedAt.Before(cutoff) {
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) PriorityComments(_ context.Context, brandID string, limit int64) ([]models.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Comment
	for _, c := range s.comments {
		if brandID != "" && c.BrandID != brandID {
			continue
		}
		if c.NeedsResponse && !c.HasResponse {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Priority > out[j].Priority })
	return capComments(out, normalizeLimit(limit)), nil
}

// Mentions

func (s *MemoryStore) InsertMention(_ context.Context, mention *models.Mention) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mentions = append(s.mentions, *mention)
	return nil
}

func (s *MemoryStore) ListMentions(_ context.Context, filter MentionFilter) ([]models.Mention, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Mention
	for _, m := range s.mentions {
		if filter.BrandID != "" && m.BrandID != filter.BrandID {
			continue
		}
		if filter.Platform != "" && m.Platform != filter.Platform {
			continue
		}
		if filter.SentimentType != "" && m.SentimentType != filter.SentimentType {
			continue
		}
		out = append(out, m)
	}
	sortNewestFirst(out, func(m models.Mention) time.Time { return m.CreatedAt })
	limit := normalizeLimit(filter.Limit)
	if int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStore) MentionsBetween(_ context.Context, brandID string, since, until time.Time, limit int64) ([]models.Mention, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Mention
	for _, m := range s.mentions {
		if !matchesWindow(m.BrandID, m.CreatedAt, brandID, since, until) {
			continue
		}
		out = append(out, m)
	}
	sortNewestFirst(out, func(m models.Mention) time.Time { return m.CreatedAt })
	max := normalizeLimit(limit)
	if int64(len(out)) > max {
		out = out[:max]
	}
	return out, nil
}

func (s *MemoryStore) CountMentionsSince(_ context.Context, brandID string, since time.Time) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	for _, m := range s.mentions {
		if matchesWindow(m.BrandID, m.CreatedAt, brandID, since, time.Time{}) {
			n++
		}
	}
	return n, nil
}

// Posts

func (s *MemoryStore) InsertPost(_ context.Context, post *models.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.posts = append(s.posts, *post)
	return nil
}

func (s *MemoryStore) ListPosts(_ context.Context, filter PostFilter) ([]models.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Post
	for _, p := range s.posts {
		if filter.BrandID != "" && p.BrandID != filter.BrandID {
			continue
		}
		if filter.Platform != "" && p.Platform != filter.Platform {
			continue
		}
		out = append(out, p)
	}
	sortNewestFirst(out, func(p models.Post) time.Time { return p.CreatedAt })
	limit := normalizeLimit(filter.Limit)
	if int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Alerts

func (s *MemoryStore) InsertAlert(_ context.Context, alert *models.Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alerts = append(s.alerts, *alert)
	return nil
}

func (s *MemoryStore) ListAlerts(_ context.Context, filter AlertFilter) ([]models.Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Alert
	for _, a := range s.alerts {
		if filter.BrandID != "" && a.BrandID != filter.BrandID {
			continue
		}
		if filter.AlertType != "" && a.AlertType != filter.AlertType {
			continue
		}
		if filter.Severity != "" && a.Severity != filter.Severity {
			continue
		}
		if filter.IsAcknowledged != nil && a.IsAcknowledged != *filter.IsAcknowledged {
			continue
		}
		out = append(out, a)
	}
	sortNewestFirst(out, func(a models.Alert) time.Time { return a.CreatedAt })
	limit := normalizeLimit(filter.Limit)
	if int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStore) AcknowledgeAlert(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.alerts {
		if s.alerts[i].ID == id {
			now := time.Now().UTC()
			s.alerts[i].IsAcknowledged = true
			s.alerts[i].AcknowledgedAt = &now
			return nil
		}
	}
	return ErrNotFound
}

func (s *MemoryStore) AlertsBetween(_ context.Context, brandID string, since, until time.Time, limit int64) ([]models.Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Alert
	for _, a := range s.alerts {
		if !matchesWindow(a.BrandID, a.CreatedAt, brandID, since, until) {
			continue
		}
		out = append(out, a)
	}
	sortNewestFirst(out, func(a models.Alert) time.Time { return a.CreatedAt })
	max := normalizeLimit(limit)
	if int64(len(out)) > max {
		out = out[:max]
	}
	return out, nil
}

// Analytics

func (s *MemoryStore) SentimentDistribution(_ context.Context, brandID string) (map[models.SentimentType]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	dist := make(map[models.SentimentType]int)
	for _, c := range s.comments {
		if brandID != "" && c.BrandID != brandID {
			continue
		}
		dist[c.SentimentType]++
	}
	return dist, nil
}

func (s *MemoryStore) DailySentimentCounts(_ context.Context, brandID string, since time.Time) (map[string]DailySentiment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	trends := make(map[string]DailySentiment)
	for _, c := range s.comments {
		if !matchesWindow(c.BrandID, c.CreatedAt, brandID, since, time.Time{}) {
			continue
		}
		day := c.CreatedAt.UTC().Format("2006-01-02")
		counts := trends[day]
		switch c.SentimentType {
		case models.SentimentPositive:
			counts.Positive++
		case models.SentimentNegative:
			counts.Negative++
		default:
			counts.Neutral++
		}
		trends[day] = counts
	}
	return trends, nil
}

func (s *MemoryStore) UpsertSentimentTrend(_ context.Context, trend *models.SentimentTrend) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	day := trend.Date.UTC().Format("2006-01-02")
	for i := range s.trends {
		if s.trends[i].BrandID == trend.BrandID && s.trends[i].Date.UTC().Format("2006-01-02") == day {
			s.trends[i] = *trend
			return nil
		}
	}
	s.trends = append(s.trends, *trend)
	return nil
}

// matchesWindow applies the shared brand + [since, until) predicate.
// Zero since or until leaves that side of the range open.
func matchesWindow(docBrand string, createdAt time.Time, brandID string, since, until time.Time) bool {
	if brandID != "" && docBrand != brandID {
		return false
	}
	if !since.IsZero() && createdAt.Before(since) {
		return false
	}
	if !until.IsZero() && !createdAt.Before(until) {
		return false
	}
	return true
}

func sortNewestFirst[T any](items []T, createdAt func(T) time.Time) {
	sort.SliceStable(items, func(i, j int) bool {
		return createdAt(items[i]).After(createdAt(items[j]))
	})
}

func capComments(comments []models.Comment, limit int64) []models.Comment {
	if int64(len(comments)) > limit {
		return comments[:limit]
	}
	return comments
}
