// Package serpapi implements a search.Provider on the SerpAPI Google
// search endpoint. It is the fallback when no Tavily key is configured.
package serpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/signalhouse/brandgraph/pkg/common"
)

const defaultBaseURL = "https://serpapi.com"

// SerpApiProvider queries Google search results through SerpAPI.
type SerpApiProvider struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewSerpApiProviderParams configures a SerpApiProvider.
type NewSerpApiProviderParams struct {
	ApiKey  string
	BaseURL string
}

// NewSerpApiProvider creates a SerpAPI-backed search provider.
func NewSerpApiProvider(params NewSerpApiProviderParams) *SerpApiProvider {
	baseURL := params.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &SerpApiProvider{
		apiKey:     params.ApiKey,
		baseURL:    baseURL,
		httpClient: http.DefaultClient,
	}
}

// Name identifies the provider in logs.
func (p *SerpApiProvider) Name() string {
	return "serpapi"
}

type searchResponse struct {
	OrganicResults []struct {
		Title   string `json:"title"`
		Snippet string `json:"snippet"`
		Link    string `json:"link"`
	} `json:"organic_results"`
}

// Search runs the query against the Google engine and returns at most
// maxResults organic results.
func (p *SerpApiProvider) Search(
	ctx context.Context,
	query string,
	maxResults int,
) ([]common.SearchResult, error) {
	params := url.Values{}
	params.Set("engine", "google")
	params.Set("q", query)
	params.Set("num", strconv.Itoa(maxResults))
	params.Set("api_key", p.apiKey)

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodGet,
		p.baseURL+"/search.json?"+params.Encode(),
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to query serpapi: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("serpapi returned status %d: %s", resp.StatusCode, data)
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode serpapi response: %w", err)
	}

	results := make([]common.SearchResult, 0, len(parsed.OrganicResults))
	for _, r := range parsed.OrganicResults {
		results = append(results, common.SearchResult{
			Title:   r.Title,
			Snippet: r.Snippet,
			URL:     r.Link,
		})
	}
	return results, nil
}
