// Package tavily implements a search.Provider on the Tavily search API.
package tavily

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/signalhouse/brandgraph/pkg/common"
)

const defaultBaseURL = "https://api.tavily.com"

// TavilyProvider queries the Tavily API, which is tuned for feeding search
// results into language models.
type TavilyProvider struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewTavilyProviderParams configures a TavilyProvider.
type NewTavilyProviderParams struct {
	ApiKey  string
	BaseURL string
}

// NewTavilyProvider creates a Tavily-backed search provider.
func NewTavilyProvider(params NewTavilyProviderParams) *TavilyProvider {
	baseURL := params.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &TavilyProvider{
		apiKey:     params.ApiKey,
		baseURL:    baseURL,
		httpClient: http.DefaultClient,
	}
}

// Name identifies the provider in logs.
func (p *TavilyProvider) Name() string {
	return "tavily"
}

type searchRequest struct {
	ApiKey      string `json:"api_key"`
	Query       string `json:"query"`
	MaxResults  int    `json:"max_results"`
	SearchDepth string `json:"search_depth"`
}

type searchResponse struct {
	Results []struct {
		Title   string `json:"title"`
		Content string `json:"content"`
		URL     string `json:"url"`
	} `json:"results"`
}

// Search runs the query with advanced search depth and returns at most
// maxResults results.
func (p *TavilyProvider) Search(
	ctx context.Context,
	query string,
	maxResults int,
) ([]common.SearchResult, error) {
	body, err := json.Marshal(searchRequest{
		ApiKey:      p.apiKey,
		Query:       query,
		MaxResults:  maxResults,
		SearchDepth: "advanced",
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		p.baseURL+"/search",
		bytes.NewReader(body),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to query tavily: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("tavily returned status %d: %s", resp.StatusCode, data)
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode tavily response: %w", err)
	}

	results := make([]common.SearchResult, 0, len(parsed.Results))
	for _, r := range parsed.Results {
		results = append(results, common.SearchResult{
			Title:   r.Title,
			Snippet: r.Content,
			URL:     r.URL,
		})
	}
	return results, nil
}
