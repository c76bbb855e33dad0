// Package samples seeds demo brands and comments through the real
// ingestion path, so generated data is classified, prioritized, and
// alert-evaluated exactly like production traffic.
package samples

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/brandpulse/reputation-monitor/internal/engine"
	"github.com/brandpulse/reputation-monitor/internal/models"
	"github.com/brandpulse/reputation-monitor/internal/storage"
	"github.com/sirupsen/logrus"
)

const commentsPerBrand = 20

var sampleBrands = []struct {
	name        string
	facebookID  string
	instagramID string
}{
	{"TechCorp", "tech_corp_fb", "tech_corp_ig"},
	{"FoodiePlace", "foodie_place_fb", "foodie_place_ig"},
	{"FashionBrand", "fashion_brand_fb", "fashion_brand_ig"},
}

var sampleComments = []string{
	"Love this product! Amazing quality and service.",
	"Not satisfied with the delivery time. Very disappointed.",
	"Good value for money. Would recommend to others.",
	"The customer service was terrible. Will not buy again.",
	"Excellent experience! Fast delivery and great product.",
	"Average product. Nothing special but okay.",
	"Outstanding quality! Exceeded my expectations.",
	"Poor quality product. Waste of money.",
	"Great customer support. Very helpful team.",
	"Delivery was delayed but product is good.",
	"Fantastic! Will definitely order again.",
	"Not worth the price. Expected better quality.",
	"Amazing experience from start to finish!",
	"Product arrived damaged. Poor packaging.",
	"Reasonable price and good quality.",
	"Worst experience ever. Avoid this brand.",
	"Perfect! Everything was as described.",
	"Okay product but could be better.",
	"Excellent service and fast response.",
	"Quality issues with the product.",
}

var platforms = []models.Platform{models.PlatformFacebook, models.PlatformInstagram}

// Generator seeds sample data for demos and manual testing.
type Generator struct {
	store  storage.Store
	engine *engine.Service
	rng    *rand.Rand
}

// NewGenerator builds a generator with the given random seed.
func NewGenerator(store storage.Store, engineService *engine.Service, seed int64) *Generator {
	return &Generator{
		store:  store,
		engine: engineService,
		rng:    rand.New(rand.NewSource(seed)),
	}
}

// Generate creates the sample brands and ingests a batch of comments
// for each, returning the number of brands created.
func (g *Generator) Generate(ctx context.Context) (int, error) {
	created := 0
	for _, sample := range sampleBrands {
		brand := models.NewBrand(sample.name, sample.facebookID, sample.instagramID)
		if err := g.store.InsertBrand(ctx, brand); err != nil {
			return created, fmt.Errorf("failed to create sample brand %s: %w", sample.name, err)
		}
		created++

		for i := 0; i < commentsPerBrand; i++ {
			input := engine.CommentInput{
				BrandID:    brand.ID,
				Platform:   platforms[g.rng.Intn(len(platforms))],
				PlatformID: fmt.Sprintf("comment_%d_%s", i, brand.ID),
				Content:    sampleComments[g.rng.Intn(len(sampleComments))],
				AuthorName: fmt.Sprintf("User_%d", i),
				AuthorID:   fmt.Sprintf("user_%d", i),
				PostID:     fmt.Sprintf("post_%d_%s", i, brand.ID),
			}
			if _, err := g.engine.IngestComment(ctx, input); err != nil {
				return created, fmt.Errorf("failed to ingest sample comment for %s: %w", sample.name, err)
			}
		}
		logrus.Infof("Seeded brand %s with %d comments", sample.name, commentsPerBrand)
	}
	return created, nil
}
