package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/brandpulse/reputation-monitor/internal/models"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore is the MongoDB-backed Store. Each model lives in its own
// collection; the engine relies only on MongoDB's per-document write
// atomicity, never on multi-document transactions.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
}

var _ Store = (*MongoStore)(nil)

// NewMongoStore connects to MongoDB and verifies the connection.
func NewMongoStore(ctx context.Context, uri, dbName string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	logrus.Infof("Connected to MongoDB database %s", dbName)
	return &MongoStore{client: client, db: client.Database(dbName)}, nil
}

// Close releases the underlying client.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *MongoStore) brands() *mongo.Collection   { return s.db.Collection("brands") }
func (s *MongoStore) comments() *mongo.Collection { return s.db.Collection("comments") }
func (s *MongoStore) mentions() *mongo.Collection { return s.db.Collection("mentions") }
func (s *MongoStore) posts() *mongo.Collection    { return s.db.Collection("posts") }
func (s *MongoStore) alerts() *mongo.Collection   { return s.db.Collection("alerts") }
func (s *MongoStore) trends() *mongo.Collection   { return s.db.Collection("sentiment_trends") }

func newestFirst(limit int64) *options.FindOptions {
	return options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(normalizeLimit(limit))
}

// rangeFilter builds the [since, until) created_at predicate. Zero
// bounds are left open.
func rangeFilter(brandID string, since, until time.Time) bson.M {
	filter := bson.M{}
	if brandID != "" {
		filter["brand_id"] = brandID
	}
	createdAt := bson.M{}
	if !since.IsZero() {
		createdAt["$gte"] = since
	}
	if !until.IsZero() {
		createdAt["$lt"] = until
	}
	if len(createdAt) > 0 {
		filter["created_at"] = createdAt
	}
	return filter
}

// Brands

func (s *MongoStore) InsertBrand(ctx context.Context, brand *models.Brand) error {
	_, err := s.brands().InsertOne(ctx, brand)
	return err
}

func (s *MongoStore) ListBrands(ctx context.Context) ([]models.Brand, error) {
	cursor, err := s.brands().Find(ctx, bson.M{"is_active": true}, newestFirst(0))
	if err != nil {
		return nil, err
	}
	var brands []models.Brand
	if err := cursor.All(ctx, &brands); err != nil {
		return nil, err
	}
	return brands, nil
}

func (s *MongoStore) GetBrand(ctx context.Context, id string) (*models.Brand, error) {
	var brand models.Brand
	err := s.brands().FindOne(ctx, bson.M{"id": id}).Decode(&brand)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &brand, nil
}

func (s *MongoStore) ReplaceBrand(ctx context.Context, brand *models.Brand) error {
	result, err := s.brands().ReplaceOne(ctx, bson.M{"id": brand.ID}, brand)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) DeactivateBrand(ctx context.Context, id string) error {
	result, err := s.brands().UpdateOne(ctx, bson.M{"id": id}, bson.M{"$set": bson.M{"is_active": false}})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Comments

func (s *MongoStore) InsertComment(ctx context.Context, comment *models.Comment) error {
	_, err := s.comments().InsertOne(ctx, comment)
	return err
}

func (s *MongoStore) GetComment(ctx context.Context, id string) (*models.Comment, error) {
	var comment models.Comment
	err := s.comments().FindOne(ctx, bson.M{"id": id}).Decode(&comment)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

func (s *MongoStore) ListComments(ctx context.Context, filter CommentFilter) ([]models.Comment, error) {
	query := bson.M{}
	if filter.BrandID != "" {
		query["brand_id"] = filter.BrandID
	}
	if filter.Platform != "" {
		query["platform"] = filter.Platform
	}
	if filter.SentimentType != "" {
		query["sentiment_type"] = filter.SentimentType
	}
	if filter.NeedsResponse != nil {
		query["needs_response"] = *filter.NeedsResponse
	}
	return s.findComments(ctx, query, newestFirst(filter.Limit))
}

func (s *MongoStore) findComments(ctx context.Context, query bson.M, opts *options.FindOptions) ([]models.Comment, error) {
	cursor, err := s.comments().Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	var comments []models.Comment
	if err := cursor.All(ctx, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

func (s *MongoStore) MarkCommentResponded(ctx context.Context, id string, responseTimeMinutes int) error {
	result, err := s.comments().UpdateOne(ctx, bson.M{"id": id}, bson.M{
		"$set": bson.M{"has_response": true, "response_time": responseTimeMinutes},
	})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) CommentsSince(ctx context.Context, brandID string, since time.Time, limit int64) ([]models.Comment, error) {
	return s.findComments(ctx, rangeFilter(brandID, since, time.Time{}), newestFirst(limit))
}

func (s *MongoStore) CommentsBetween(ctx context.Context, brandID string, since, until time.Time, limit int64) ([]models.Comment, error) {
	return s.findComments(ctx, rangeFilter(brandID, since, until), newestFirst(limit))
}

func (s *MongoStore) CountCommentsBetween(ctx context.Context, brandID string, since, until time.Time) (int64, error) {
	return s.comments().CountDocuments(ctx, rangeFilter(brandID, since, until))
}

func (s *MongoStore) CountOverdueComments(ctx context.Context, brandID string, cutoff time.Time) (int64, error) {
	filter := bson.M{
		"needs_response": true,
		"has_response":   false,
		"created_at":     bson.M{"$lt": cutoff},
	}
	if brandID != "" {
		filter["brand_id"] = brandID
	}
	return s.comments().CountDocuments(ctx, filter)
}

func (s *MongoStore) PriorityComments(ctx context.Context, brandID string, limit int64) ([]models.Comment, error) {
	filter := bson.M{"needs_response": true, "has_response": false}
	if brandID != "" {
		filter["brand_id"] = brandID
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "priority", Value: -1}}).
		SetLimit(normalizeLimit(limit))
	return s.findComments(ctx, filter, opts)
}

// Mentions

func (s *MongoStore) InsertMention(ctx context.Context, mention *models.Mention) error {
	_, err := s.mentions().InsertOne(ctx, mention)
	return err
}

func (s *MongoStore) ListMentions(ctx context.Context, filter MentionFilter) ([]models.Mention, error) {
	query := bson.M{}
	if filter.BrandID != "" {
		query["brand_id"] = filter.BrandID
	}
	if filter.Platform != "" {
		query["platform"] = filter.Platform
	}
	if filter.SentimentType != "" {
		query["sentiment_type"] = filter.SentimentType
	}
	return s.findMentions(ctx, query, newestFirst(filter.Limit))
}

func (s *MongoStore) findMentions(ctx context.Context, query bson.M, opts *options.FindOptions) ([]models.Mention, error) {
	cursor, err := s.mentions().Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	var mentions []models.Mention
	if err := cursor.All(ctx, &mentions); err != nil {
		return nil, err
	}
	return mentions, nil
}

func (s *MongoStore) MentionsBetween(ctx context.Context, brandID string, since, until time.Time, limit int64) ([]models.Mention, error) {
	return s.findMentions(ctx, rangeFilter(brandID, since, until), newestFirst(limit))
}

func (s *MongoStore) CountMentionsSince(ctx context.Context, brandID string, since time.Time) (int64, error) {
	return s.mentions().CountDocuments(ctx, rangeFilter(brandID, since, time.Time{}))
}

// Posts

func (s *MongoStore) InsertPost(ctx context.Context, post *models.Post) error {
	_, err := s.posts().InsertOne(ctx, post)
	return err
}

func (s *MongoStore) ListPosts(ctx context.Context, filter PostFilter) ([]models.Post, error) {
	query := bson.M{}
	if filter.BrandID != "" {
		query["brand_id"] = filter.BrandID
	}
	if filter.Platform != "" {
		query["platform"] = filter.Platform
	}
	cursor, err := s.posts().Find(ctx, query, newestFirst(filter.Limit))
	if err != nil {
		return nil, err
	}
	var posts []models.Post
	if err := cursor.All(ctx, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// Alerts

func (s *MongoStore) InsertAlert(ctx context.Context, alert *models.Alert) error {
	_, err := s.alerts().InsertOne(ctx, alert)
	return err
}

func (s *MongoStore) ListAlerts(ctx context.Context, filter AlertFilter) ([]models.Alert, error) {
	query := bson.M{}
	if filter.BrandID != "" {
		query["brand_id"] = filter.BrandID
	}
	if filter.AlertType != "" {
		query["alert_type"] = filter.AlertType
	}
	if filter.Severity != "" {
		query["severity"] = filter.Severity
	}
	if filter.IsAcknowledged != nil {
		query["is_acknowledged"] = *filter.IsAcknowledged
	}
	return s.findAlerts(ctx, query, newestFirst(filter.Limit))
}

func (s *MongoStore) findAlerts(ctx context.Context, query bson.M, opts *options.FindOptions) ([]models.Alert, error) {
	cursor, err := s.alerts().Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	var alerts []models.Alert
	if err := cursor.All(ctx, &alerts); err != nil {
		return nil, err
	}
	return alerts, nil
}

func (s *MongoStore) AcknowledgeAlert(ctx context.Context, id string) error {
	result, err := s.alerts().UpdateOne(ctx, bson.M{"id": id}, bson.M{
		"$set": bson.M{"is_acknowledged": true, "acknowledged_at": time.Now().UTC()},
	})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) AlertsBetween(ctx context.Context, brandID string, since, until time.Time, limit int64) ([]models.Alert, error) {
	return s.findAlerts(ctx, rangeFilter(brandID, since, until), newestFirst(limit))
}

// Analytics

func (s *MongoStore) SentimentDistribution(ctx context.Context, brandID string) (map[models.SentimentType]int, error) {
	match := bson.M{}
	if brandID != "" {
		match["brand_id"] = brandID
	}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.M{
			"_id":   "$sentiment_type",
			"count": bson.M{"$sum": 1},
		}}},
	}

	cursor, err := s.comments().Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	var rows []struct {
		Sentiment models.SentimentType `bson:"_id"`
		Count     int                  `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}

	dist := make(map[models.SentimentType]int, len(rows))
	for _, row := range rows {
		dist[row.Sentiment] = row.Count
	}
	return dist, nil
}

func (s *MongoStore) DailySentimentCounts(ctx context.Context, brandID string, since time.Time) (map[string]DailySentiment, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: rangeFilter(brandID, since, time.Time{})}},
		{{Key: "$group", Value: bson.M{
			"_id": bson.M{
				"date": bson.M{"$dateToString": bson.M{
					"format": "%Y-%m-%d",
					"date":   "$created_at",
				}},
				"sentiment_type": "$sentiment_type",
			},
			"count": bson.M{"$sum": 1},
		}}},
		{{Key: "$sort", Value: bson.M{"_id.date": 1}}},
	}

	cursor, err := s.comments().Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	var rows []struct {
		Key struct {
			Date          string               `bson:"date"`
			SentimentType models.SentimentType `bson:"sentiment_type"`
		} `bson:"_id"`
		Count int `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}

	trends := make(map[string]DailySentiment)
	for _, row := range rows {
		counts := trends[row.Key.Date]
		switch row.Key.SentimentType {
		case models.SentimentPositive:
			counts.Positive = row.Count
		case models.SentimentNegative:
			counts.Negative = row.Count
		default:
			counts.Neutral = row.Count
		}
		trends[row.Key.Date] = counts
	}
	return trends, nil
}

func (s *MongoStore) UpsertSentimentTrend(ctx context.Context, trend *models.SentimentTrend) error {
	day := trend.Date.UTC().Format("2006-01-02")
	filter := bson.M{"brand_id": trend.BrandID, "day": day}
	update := bson.M{"$set": bson.M{
		"id":                  trend.ID,
		"brand_id":            trend.BrandID,
		"day":                 day,
		"date":                trend.Date,
		"positive_count":      trend.PositiveCount,
		"negative_count":      trend.NegativeCount,
		"neutral_count":       trend.NeutralCount,
		"total_count":         trend.TotalCount,
		"avg_sentiment_score": trend.AvgSentimentScore,
	}}
	_, err := s.trends().UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}
