// Package search finds web evidence for brand relationships. It wraps a
// pluggable search provider with query construction, result capping, and an
// in-process cache so repeated lookups for the same brand pair during a
// pipeline run hit the network once.
package search

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/signalhouse/brandgraph/internal/util"
	"github.com/signalhouse/brandgraph/pkg/common"
	"github.com/signalhouse/brandgraph/pkg/logger"

	"golang.org/x/sync/singleflight"
)

// NoResultsText is the synthesis output when a search returns nothing. The
// inference prompt receives it verbatim so the model knows the web tier came
// up empty rather than being skipped.
const NoResultsText = "No search results found."

// DefaultMaxResults caps how many results a single search returns.
const DefaultMaxResults = 5

// searchTries is how many times a provider query is attempted before the
// failure is surfaced to the caller.
const searchTries = 2

// Provider executes a raw search query against some search backend.
type Provider interface {
	// Search returns at most maxResults results for the query.
	Search(ctx context.Context, query string, maxResults int) ([]common.SearchResult, error)
	// Name identifies the provider in logs.
	Name() string
}

// Client performs relationship and brand searches through a Provider,
// deduplicating concurrent identical queries and caching results for the
// lifetime of the client.
type Client struct {
	provider   Provider
	maxResults int

	cache   map[string][]common.SearchResult
	cacheMu sync.RWMutex
	group   singleflight.Group
}

// NewClientParams configures a search Client.
type NewClientParams struct {
	Provider   Provider
	MaxResults int
}

// NewClient creates a search client. A MaxResults of zero or less falls back
// to DefaultMaxResults.
func NewClient(params NewClientParams) *Client {
	maxResults := params.MaxResults
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	return &Client{
		provider:   params.Provider,
		maxResults: maxResults,
		cache:      make(map[string][]common.SearchResult),
	}
}

// RelationshipQuery builds the search query for a brand pair. Underscores and
// slashes in the category are treated as word separators.
func RelationshipQuery(brandA, brandB, category string) string {
	query := fmt.Sprintf("%q %q relationship", brandA, brandB)
	if category != "" {
		words := strings.NewReplacer("_", " ", "/", " ").Replace(category)
		query += " " + words
	}
	return query
}

// SearchRelationship searches the web for evidence of a relationship between
// two brands, scoped by category.
func (c *Client) SearchRelationship(
	ctx context.Context,
	brandA string,
	brandB string,
	category string,
) ([]common.SearchResult, error) {
	return c.search(ctx, RelationshipQuery(brandA, brandB, category))
}

// SearchBrandInfo searches the web for general information about a brand.
func (c *Client) SearchBrandInfo(ctx context.Context, brand string) ([]common.SearchResult, error) {
	return c.search(ctx, fmt.Sprintf("%q company business", brand))
}

func (c *Client) search(ctx context.Context, query string) ([]common.SearchResult, error) {
	if c.provider == nil {
		return nil, fmt.Errorf("%w: no provider configured", common.ErrSearchUnavailable)
	}

	c.cacheMu.RLock()
	if cached, ok := c.cache[query]; ok {
		c.cacheMu.RUnlock()
		return cached, nil
	}
	c.cacheMu.RUnlock()

	result, err, _ := c.group.Do(query, func() (any, error) {
		c.cacheMu.RLock()
		if cached, ok := c.cache[query]; ok {
			c.cacheMu.RUnlock()
			return cached, nil
		}
		c.cacheMu.RUnlock()

		logger.Info("[Search] Querying", "provider", c.provider.Name(), "query", query)

		results, err := util.RetryWithContext(ctx, searchTries, func(ctx context.Context) ([]common.SearchResult, error) {
			return c.provider.Search(ctx, query, c.maxResults)
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %s", common.ErrSearchUnavailable, c.provider.Name(), err)
		}
		if len(results) > c.maxResults {
			results = results[:c.maxResults]
		}
		for i := range results {
			if results[i].Source == "" {
				results[i].Source = util.DomainFromURL(results[i].URL)
			}
		}

		c.cacheMu.Lock()
		c.cache[query] = results
		c.cacheMu.Unlock()

		return results, nil
	})
	if err != nil {
		return nil, err
	}

	return result.([]common.SearchResult), nil
}

// Synthesize renders search results as a numbered evidence block for the
// inference prompt. Empty input yields NoResultsText.
func Synthesize(results []common.SearchResult) string {
	if len(results) == 0 {
		return NoResultsText
	}

	var b strings.Builder
	for i, r := range results {
		fmt.Fprintf(&b, "[%d] %s\n", i+1, r.Title)
		fmt.Fprintf(&b, "    %s\n", r.Snippet)
		fmt.Fprintf(&b, "    Source: %s (%s)\n\n", r.Source, r.URL)
	}
	return strings.TrimRight(b.String(), "\n")
}
