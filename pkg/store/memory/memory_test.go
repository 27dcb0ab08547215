package memory

import (
	"context"
	"testing"

	"github.com/signalhouse/brandgraph/pkg/common"
)

func TestLookupContextScoping(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	rels := []common.Relationship{
		{Source: "Apple", Target: "Samsung", Type: common.RelCompetitor, Category: "consumer_electronics", Context: "smartphones", Confidence: 0.95},
		{Source: "Apple", Target: "Samsung", Type: common.RelSupplier, Category: "consumer_electronics", Context: "display_panels", Confidence: 0.9},
		{Source: "Apple", Target: "Samsung", Type: common.RelNeutral, Category: "entertainment", Context: "streaming", Confidence: 0.6},
	}
	for _, r := range rels {
		if err := s.UpsertRelationship(ctx, r); err != nil {
			t.Fatalf("UpsertRelationship() error = %v", err)
		}
	}

	t.Run("exact tuple", func(t *testing.T) {
		got, err := s.Lookup(ctx, "Apple", "Samsung", "consumer_electronics", "smartphones")
		if err != nil {
			t.Fatalf("Lookup() error = %v", err)
		}
		if len(got) != 1 || got[0].Type != common.RelCompetitor {
			t.Fatalf("expected single competitor record, got %v", got)
		}
	})

	t.Run("category scope", func(t *testing.T) {
		got, err := s.Lookup(ctx, "Apple", "Samsung", "consumer_electronics", "")
		if err != nil {
			t.Fatalf("Lookup() error = %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("expected 2 records in category, got %d", len(got))
		}
		// most recent write first
		if got[0].Type != common.RelSupplier {
			t.Fatalf("expected supplier record first, got %v", got[0].Type)
		}
	})

	t.Run("pair scope", func(t *testing.T) {
		got, err := s.Lookup(ctx, "Apple", "Samsung", "", "")
		if err != nil {
			t.Fatalf("Lookup() error = %v", err)
		}
		if len(got) != 3 {
			t.Fatalf("expected 3 records for pair, got %d", len(got))
		}
	})

	t.Run("no cross-context substitution", func(t *testing.T) {
		got, err := s.Lookup(ctx, "Apple", "Samsung", "consumer_electronics", "wearables")
		if err != nil {
			t.Fatalf("Lookup() error = %v", err)
		}
		if len(got) != 0 {
			t.Fatalf("expected no records for unknown context, got %v", got)
		}
	})
}

func TestUpsertRelationshipLastWriterWins(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	first := common.Relationship{
		Source: "Nike", Target: "Adidas",
		Type: common.RelNeutral, Category: "sportswear", Context: "footwear",
		Confidence: 0.5,
	}
	second := first
	second.Type = common.RelCompetitor
	second.Confidence = 0.95

	if err := s.UpsertRelationship(ctx, first); err != nil {
		t.Fatalf("UpsertRelationship() error = %v", err)
	}
	if err := s.UpsertRelationship(ctx, second); err != nil {
		t.Fatalf("UpsertRelationship() error = %v", err)
	}

	got, err := s.Lookup(ctx, "Nike", "Adidas", "sportswear", "footwear")
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected single record after overwrite, got %d", len(got))
	}
	if got[0].Type != common.RelCompetitor || got[0].Confidence != 0.95 {
		t.Fatalf("expected overwritten record, got %+v", got[0])
	}
}

func TestLookupKeyNormalization(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	rel := common.Relationship{
		Source: "Apple", Target: "Samsung",
		Type: common.RelCompetitor, Category: "Consumer_Electronics", Context: "Smartphones",
	}
	if err := s.UpsertRelationship(ctx, rel); err != nil {
		t.Fatalf("UpsertRelationship() error = %v", err)
	}

	got, err := s.Lookup(ctx, " apple ", "SAMSUNG", "consumer_electronics", "smartphones")
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected normalized keys to match, got %d records", len(got))
	}
}

func TestRelationshipsForEitherDirection(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	rels := []common.Relationship{
		{Source: "Apple", Target: "Samsung", Type: common.RelCompetitor, Category: "consumer_electronics", Context: "smartphones"},
		{Source: "Foxconn", Target: "Apple", Type: common.RelSupplier, Category: "consumer_electronics", Context: "assembly"},
		{Source: "Nike", Target: "Adidas", Type: common.RelCompetitor, Category: "sportswear", Context: "footwear"},
	}
	for _, r := range rels {
		if err := s.UpsertRelationship(ctx, r); err != nil {
			t.Fatalf("UpsertRelationship() error = %v", err)
		}
	}

	got, err := s.RelationshipsFor(ctx, "Apple", "")
	if err != nil {
		t.Fatalf("RelationshipsFor() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 relationships touching Apple, got %d", len(got))
	}

	got, err = s.RelationshipsFor(ctx, "Apple", "consumer_electronics")
	if err != nil {
		t.Fatalf("RelationshipsFor() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 category relationships, got %d", len(got))
	}
}

func TestGraphDataAndStats(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	rels := []common.Relationship{
		{Source: "Apple", Target: "Samsung", Type: common.RelCompetitor, Category: "consumer_electronics", Context: "smartphones"},
		{Source: "Apple", Target: "Foxconn", Type: common.RelCustomer, Category: "consumer_electronics", Context: "assembly"},
		{Source: "Nike", Target: "Adidas", Type: common.RelCompetitor, Category: "sportswear", Context: "footwear"},
	}
	for _, r := range rels {
		if err := s.UpsertRelationship(ctx, r); err != nil {
			t.Fatalf("UpsertRelationship() error = %v", err)
		}
	}

	data, err := s.GraphData(ctx, "consumer_electronics")
	if err != nil {
		t.Fatalf("GraphData() error = %v", err)
	}
	if len(data.Edges) != 2 {
		t.Fatalf("expected 2 edges in category, got %d", len(data.Edges))
	}
	if len(data.Nodes) != 3 {
		t.Fatalf("expected 3 nodes in category, got %d", len(data.Nodes))
	}

	stats, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if stats.Brands != 5 {
		t.Fatalf("expected 5 brands, got %d", stats.Brands)
	}
	if stats.Relationships != 3 {
		t.Fatalf("expected 3 relationships, got %d", stats.Relationships)
	}
	if len(stats.Categories) != 2 {
		t.Fatalf("expected 2 categories, got %v", stats.Categories)
	}
	if stats.ByType["competitor"] != 2 {
		t.Fatalf("expected 2 competitor edges, got %d", stats.ByType["competitor"])
	}
}
