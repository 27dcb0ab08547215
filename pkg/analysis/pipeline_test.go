package analysis

import (
	"context"
	"errors"
	"testing"

	"github.com/signalhouse/brandgraph/pkg/common"
	"github.com/signalhouse/brandgraph/pkg/store/memory"
)

func newTestPipeline(client *fakeInference, st *memory.MemoryStore, searcher *fakeSearcher) *Pipeline {
	return NewPipeline(NewPipelineParams{
		SubjectBrand: "Apple",
		Inference:    client,
		Store:        st,
		Search:       searcher,
	})
}

func fullFakeInference() *fakeInference {
	client := newFakeInference()
	client.responses["brand_extraction"] = `{
		"brands": [
			{"name": "Apple", "mentions": 2, "snippets": ["Apple and Samsung battle for market share."], "aliases": []},
			{"name": "Samsung", "mentions": 2, "snippets": ["Apple and Samsung battle for market share."], "aliases": []}
		],
		"confidence": 0.9
	}`
	client.responses["category_identification"] = `{
		"primary_category": "technology/consumer_electronics",
		"secondary_categories": ["technology/semiconductors"],
		"confidence": 0.85
	}`
	client.responses["citation_extraction"] = `{
		"citations": [
			{"source": "Reuters", "text": "Samsung supplies OLED panels to Apple.", "citation_type": "article", "url": "", "date": ""}
		],
		"confidence": 0.9
	}`
	client.responses["relationship_inference"] = competitorVerdict
	return client
}

func TestAnalyze(t *testing.T) {
	client := fullFakeInference()
	st := memory.NewMemoryStore()
	result := newTestPipeline(client, st, &fakeSearcher{}).Analyze(
		context.Background(),
		"Apple and Samsung battle for market share.",
	)

	if result.SubjectBrand != "Apple" {
		t.Errorf("unexpected subject %q", result.SubjectBrand)
	}
	if result.Category != "technology/consumer_electronics" {
		t.Errorf("unexpected category %q", result.Category)
	}
	if len(result.Brands) != 2 {
		t.Errorf("expected 2 brands, got %d", len(result.Brands))
	}
	if len(result.Relationships) != 1 {
		t.Fatalf("expected 1 relationship, got %d", len(result.Relationships))
	}
	if result.Relationships[0].Target != "Samsung" {
		t.Errorf("unexpected relationship target %q", result.Relationships[0].Target)
	}
	if len(result.Citations) != 1 {
		t.Errorf("expected 1 citation, got %d", len(result.Citations))
	}
	if len(result.FlaggedItems) != 0 {
		t.Errorf("expected no flags with high confidences, got %+v", result.FlaggedItems)
	}

	for _, key := range []string{
		"brand_extraction_confidence",
		"citation_extraction_confidence",
		"category_confidence",
		"secondary_categories",
		"total_brands",
		"total_relationships",
		"total_citations",
		"flagged_count",
	} {
		if _, ok := result.Metadata[key]; !ok {
			t.Errorf("missing metadata key %q", key)
		}
	}
	if got := result.Metadata["total_relationships"]; got != 1 {
		t.Errorf("expected total_relationships 1, got %v", got)
	}

	stored, err := st.Lookup(context.Background(), "Apple", "Samsung", "", "")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if len(stored) != 1 {
		t.Errorf("expected resolved relationship persisted, got %d", len(stored))
	}
}

func TestAnalyzeSecondRunUsesStore(t *testing.T) {
	client := fullFakeInference()
	st := memory.NewMemoryStore()
	searcher := &fakeSearcher{}
	pipeline := newTestPipeline(client, st, searcher)

	pipeline.Analyze(context.Background(), "Apple and Samsung battle for market share.")

	searchesAfterFirst := searcher.calls.Load()
	if searchesAfterFirst == 0 {
		t.Fatal("expected first run to hit web search")
	}

	result := pipeline.Analyze(context.Background(), "Apple and Samsung battle for market share.")

	if searcher.calls.Load() != searchesAfterFirst {
		t.Error("expected second run to resolve from the store without searching")
	}
	if len(result.Relationships) != 1 {
		t.Fatalf("expected 1 relationship, got %d", len(result.Relationships))
	}
	if result.Relationships[0].Origin != common.OriginStore {
		t.Errorf("expected graph_db origin on second run, got %q", result.Relationships[0].Origin)
	}

	stored, err := st.Lookup(context.Background(), "Apple", "Samsung", "technology/consumer_electronics", "")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if len(stored) != 1 {
		t.Fatalf("expected a single stored record, got %d", len(stored))
	}
	if stored[0].Type != common.RelCompetitor {
		t.Errorf("expected first verdict retained, got %q", stored[0].Type)
	}
}

func TestAnalyzeLowConfidenceFlags(t *testing.T) {
	client := fullFakeInference()
	client.responses["brand_extraction"] = `{
		"brands": [{"name": "Samsung", "mentions": 1, "snippets": [], "aliases": []}],
		"confidence": 0.3
	}`
	client.responses["category_identification"] = `{
		"primary_category": "general/business",
		"secondary_categories": [],
		"confidence": 0.2
	}`
	client.responses["citation_extraction"] = `{"citations": [], "confidence": 0.4}`
	client.responses["relationship_inference"] = `{
		"relationship_type": "neutral",
		"relationship_context": "general",
		"confidence": 0.3,
		"evidence": ["weak evidence"],
		"reasoning": "",
		"sentiment": "neutral"
	}`

	result := newTestPipeline(client, memory.NewMemoryStore(), &fakeSearcher{}).Analyze(
		context.Background(), "some text")

	if len(result.FlaggedItems) != 4 {
		t.Fatalf("expected 3 stage flags plus 1 relationship flag, got %d: %+v",
			len(result.FlaggedItems), result.FlaggedItems)
	}

	byItem := map[string]common.FlaggedItem{}
	for _, item := range result.FlaggedItems {
		byItem[item.Item] = item
	}
	for _, stage := range []string{"brand_extraction", "citation_extraction", "category_identification"} {
		flag, ok := byItem[stage]
		if !ok {
			t.Errorf("missing %s flag", stage)
			continue
		}
		if !flag.RequiresReview {
			t.Errorf("expected %s flag to require review", stage)
		}
	}
	relFlag, ok := byItem["Apple-Samsung"]
	if !ok {
		t.Fatal("missing relationship flag")
	}
	if !relFlag.RequiresReview {
		t.Error("expected relationship flag to require review")
	}
	if relFlag.Kind != common.FlagRelationship {
		t.Errorf("unexpected flag kind %q", relFlag.Kind)
	}
}

func TestAnalyzeDegradesOnTotalFailure(t *testing.T) {
	client := newFakeInference()
	failure := errors.New("model unavailable")
	client.errs["brand_extraction"] = failure
	client.errs["category_identification"] = failure
	client.errs["citation_extraction"] = failure
	client.errs["relationship_inference"] = failure

	result := newTestPipeline(client, memory.NewMemoryStore(), &fakeSearcher{}).Analyze(
		context.Background(), "some text")

	if result.Category != DefaultCategory {
		t.Errorf("expected default category, got %q", result.Category)
	}
	if len(result.Brands) != 0 {
		t.Errorf("expected no brands, got %d", len(result.Brands))
	}
	if len(result.Relationships) != 0 {
		t.Errorf("expected no relationships, got %d", len(result.Relationships))
	}
	// All three stage confidences are zero, so all three stages are flagged.
	if len(result.FlaggedItems) != 3 {
		t.Errorf("expected 3 stage flags, got %d: %+v", len(result.FlaggedItems), result.FlaggedItems)
	}
}
