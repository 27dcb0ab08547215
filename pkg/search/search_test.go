package search

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/signalhouse/brandgraph/pkg/common"
)

type fakeProvider struct {
	calls   atomic.Int64
	results []common.SearchResult
	err     error

	// failFirst makes the first N calls fail before results are returned.
	failFirst int64
}

func (f *fakeProvider) Search(ctx context.Context, query string, maxResults int) ([]common.SearchResult, error) {
	call := f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	if call <= f.failFirst {
		return nil, errors.New("transient failure")
	}
	return f.results, nil
}

func (f *fakeProvider) Name() string {
	return "fake"
}

func TestRelationshipQuery(t *testing.T) {
	tests := []struct {
		name     string
		brandA   string
		brandB   string
		category string
		want     string
	}{
		{
			name:   "no category",
			brandA: "Apple",
			brandB: "Samsung",
			want:   `"Apple" "Samsung" relationship`,
		},
		{
			name:     "category underscores become spaces",
			brandA:   "Apple",
			brandB:   "Samsung",
			category: "consumer_electronics",
			want:     `"Apple" "Samsung" relationship consumer electronics`,
		},
		{
			name:     "category slashes become spaces",
			brandA:   "Visa",
			brandB:   "Stripe",
			category: "payments/fintech",
			want:     `"Visa" "Stripe" relationship payments fintech`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RelationshipQuery(tt.brandA, tt.brandB, tt.category); got != tt.want {
				t.Fatalf("RelationshipQuery() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSearchRelationshipCaches(t *testing.T) {
	provider := &fakeProvider{
		results: []common.SearchResult{
			{Title: "Apple vs Samsung", Snippet: "rivalry", URL: "https://example.com/a"},
		},
	}
	client := NewClient(NewClientParams{Provider: provider})

	ctx := context.Background()
	for range 3 {
		results, err := client.SearchRelationship(ctx, "Apple", "Samsung", "consumer_electronics")
		if err != nil {
			t.Fatalf("SearchRelationship() error = %v", err)
		}
		if len(results) != 1 {
			t.Fatalf("expected 1 result, got %d", len(results))
		}
	}

	if got := provider.calls.Load(); got != 1 {
		t.Fatalf("expected 1 provider call after caching, got %d", got)
	}
}

func TestSearchFillsSourceFromURL(t *testing.T) {
	provider := &fakeProvider{
		results: []common.SearchResult{
			{Title: "News", Snippet: "text", URL: "https://www.reuters.com/article"},
		},
	}
	client := NewClient(NewClientParams{Provider: provider})

	results, err := client.SearchBrandInfo(context.Background(), "Apple")
	if err != nil {
		t.Fatalf("SearchBrandInfo() error = %v", err)
	}
	if results[0].Source != "reuters.com" {
		t.Fatalf("expected source reuters.com, got %q", results[0].Source)
	}
}

func TestSearchCapsResults(t *testing.T) {
	provider := &fakeProvider{
		results: []common.SearchResult{
			{Title: "1"}, {Title: "2"}, {Title: "3"}, {Title: "4"},
		},
	}
	client := NewClient(NewClientParams{Provider: provider, MaxResults: 2})

	results, err := client.SearchBrandInfo(context.Background(), "Apple")
	if err != nil {
		t.Fatalf("SearchBrandInfo() error = %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
}

func TestSearchRetriesTransientFailure(t *testing.T) {
	provider := &fakeProvider{
		failFirst: 1,
		results: []common.SearchResult{
			{Title: "Apple vs Samsung", Snippet: "rivalry", URL: "https://example.com/a"},
		},
	}
	client := NewClient(NewClientParams{Provider: provider})

	results, err := client.SearchBrandInfo(context.Background(), "Apple")
	if err != nil {
		t.Fatalf("SearchBrandInfo() error = %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if got := provider.calls.Load(); got != 2 {
		t.Fatalf("expected 2 provider calls, got %d", got)
	}
}

func TestSearchProviderFailure(t *testing.T) {
	provider := &fakeProvider{err: errors.New("boom")}
	client := NewClient(NewClientParams{Provider: provider})

	_, err := client.SearchBrandInfo(context.Background(), "Apple")
	if !errors.Is(err, common.ErrSearchUnavailable) {
		t.Fatalf("expected ErrSearchUnavailable, got %v", err)
	}
}

func TestSynthesize(t *testing.T) {
	t.Run("empty results", func(t *testing.T) {
		if got := Synthesize(nil); got != NoResultsText {
			t.Fatalf("Synthesize(nil) = %q, want %q", got, NoResultsText)
		}
	})

	t.Run("numbered block", func(t *testing.T) {
		results := []common.SearchResult{
			{Title: "Apple sues Samsung", Snippet: "patent dispute", URL: "https://example.com/1", Source: "example.com"},
			{Title: "Samsung supplies Apple", Snippet: "display panels", URL: "https://example.com/2", Source: "example.com"},
		}
		got := Synthesize(results)
		want := "[1] Apple sues Samsung\n" +
			"    patent dispute\n" +
			"    Source: example.com (https://example.com/1)\n\n" +
			"[2] Samsung supplies Apple\n" +
			"    display panels\n" +
			"    Source: example.com (https://example.com/2)"
		if got != want {
			t.Fatalf("Synthesize() = %q, want %q", got, want)
		}
	})
}
