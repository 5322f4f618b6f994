// Package newsapi fetches top business headlines from NewsAPI and pairs
// them with static macroeconomic indicator links per country.
package newsapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sidkap/optadvisor/internal/domain"
)

const (
	defaultBaseURL = "https://newsapi.org/v2"
	maxArticles    = 10
)

// macroIndicators are static reference links per country, served alongside
// headlines for dashboard display.
var macroIndicators = map[string][]domain.MacroIndicator{
	"India": {
		{Name: "GDP Growth", URL: "https://tradingeconomics.com/india/gdp-growth-annual"},
		{Name: "Inflation", URL: "https://tradingeconomics.com/india/inflation-cpi"},
		{Name: "Unemployment", URL: "https://tradingeconomics.com/india/unemployment-rate"},
		{Name: "Interest Rate", URL: "https://tradingeconomics.com/india/interest-rate"},
	},
	"USA": {
		{Name: "GDP Growth", URL: "https://tradingeconomics.com/united-states/gdp-growth-annual"},
		{Name: "Inflation", URL: "https://tradingeconomics.com/united-states/inflation-cpi"},
		{Name: "Unemployment", URL: "https://tradingeconomics.com/united-states/unemployment-rate"},
		{Name: "Interest Rate", URL: "https://tradingeconomics.com/united-states/interest-rate"},
	},
}

// Client implements domain.NewsProvider over NewsAPI. With no API key
// configured it degrades to a single placeholder headline instead of
// failing, so the pipeline keeps running in development.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a NewsAPI client. An empty baseURL uses the public API.
func NewClient(baseURL, apiKey string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// AggregateNewsAndMacro returns headlines and macro links for a country.
// Recognized countries are "India" and "USA"; India is the fallback region
// for anything else.
func (c *Client) AggregateNewsAndMacro(ctx context.Context, country string) (domain.NewsBundle, error) {
	code := "in"
	if country == "USA" {
		code = "us"
	}
	news, err := c.fetchNews(ctx, code)
	if err != nil {
		return domain.NewsBundle{}, fmt.Errorf("newsapi: fetch %s news: %w", country, err)
	}
	return domain.NewsBundle{
		Country:         country,
		News:            news,
		MacroIndicators: macroIndicators[country],
	}, nil
}

type apiResponse struct {
	Articles []apiArticle `json:"articles"`
}

type apiArticle struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	PublishedAt string `json:"publishedAt"`
	Description string `json:"description"`
	Source      struct {
		Name string `json:"name"`
	} `json:"source"`
}

func (c *Client) fetchNews(ctx context.Context, countryCode string) ([]domain.NewsArticle, error) {
	if c.apiKey == "" {
		return []domain.NewsArticle{
			{Title: "No news API key set. Configure one for live news."},
		}, nil
	}

	params := url.Values{}
	params.Set("country", countryCode)
	params.Set("category", "business")
	params.Set("apiKey", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/top-headlines?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d: %s: %w", resp.StatusCode, body, domain.ErrProvider)
	}

	var api apiResponse
	if err := json.Unmarshal(body, &api); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	articles := api.Articles
	if len(articles) > maxArticles {
		articles = articles[:maxArticles]
	}
	out := make([]domain.NewsArticle, 0, len(articles))
	for _, a := range articles {
		out = append(out, domain.NewsArticle{
			Title:       a.Title,
			URL:         a.URL,
			Source:      a.Source.Name,
			PublishedAt: a.PublishedAt,
			Description: a.Description,
		})
	}
	return out, nil
}
