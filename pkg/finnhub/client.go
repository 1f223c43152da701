package finnhub

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	finnhubapi "github.com/Finnhub-Stock-API/finnhub-go/v2"
)

const baseURL = "https://finnhub.io/api/v1"

const (
	// Profiles change rarely; an hour of staleness is acceptable.
	profileTTL = 3600 * time.Second
	searchTTL  = 1800 * time.Second
)

// UpstreamError is returned for non-2xx provider responses and carries the
// status and body for diagnostics.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("fetch failed (%d): %s", e.Status, e.Body)
}

// RawArticle is the provider-native news record. Untrusted: any field may be
// missing or zero.
type RawArticle struct {
	ID       int64  `json:"id"`
	Headline string `json:"headline"`
	Summary  string `json:"summary"`
	URL      string `json:"url"`
	Datetime int64  `json:"datetime"`
	Related  string `json:"related"`
	Source   string `json:"source"`
}

type SymbolMatch struct {
	Description   string `json:"description"`
	DisplaySymbol string `json:"displaySymbol"`
	Symbol        string `json:"symbol"`
	Type          string `json:"type"`
}

type searchResponse struct {
	Count  int           `json:"count"`
	Result []SymbolMatch `json:"result"`
}

type CompanyProfile struct {
	Name     string `json:"name"`
	Ticker   string `json:"ticker"`
	Exchange string `json:"exchange"`
	Country  string `json:"country"`
	Currency string `json:"currency"`
	WebURL   string `json:"weburl"`
	Industry string `json:"finnhubIndustry"`
}

// Client talks to the Finnhub REST API. General market news goes through the
// official SDK; the remaining endpoints go through FetchJSON so responses can
// be cached per URL.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	cache      Cache
	market     *finnhubapi.DefaultApiService
}

func NewClient(apiKey string, cache Cache) *Client {
	cfg := finnhubapi.NewConfiguration()
	cfg.AddDefaultHeader("X-Finnhub-Token", apiKey)
	cfg.HTTPClient = &http.Client{Timeout: 10 * time.Second}

	return &Client{
		apiKey:     apiKey,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		cache:      cache,
		market:     finnhubapi.NewAPIClient(cfg).DefaultApi,
	}
}

// FetchJSON performs a GET against the provider. When ttl is positive the
// response body is cached by URL; ttl zero means always-fresh.
func (c *Client) FetchJSON(ctx context.Context, fetchURL string, ttl time.Duration) ([]byte, error) {
	key := cacheKey(fetchURL)
	if ttl > 0 && c.cache != nil {
		if body, ok := c.cache.Get(ctx, key); ok {
			return body, nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fetchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("finnhub: build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("finnhub: fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("finnhub: read body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &UpstreamError{Status: resp.StatusCode, Body: string(body)}
	}

	if ttl > 0 && c.cache != nil {
		c.cache.Set(ctx, key, body, ttl)
	}

	return body, nil
}

// CompanyNews fetches symbol-scoped news over the given window, always fresh.
func (c *Client) CompanyNews(ctx context.Context, symbol string, from, to time.Time) ([]RawArticle, error) {
	u := fmt.Sprintf("%s/company-news?symbol=%s&from=%s&to=%s&token=%s",
		c.baseURL,
		url.QueryEscape(symbol),
		from.Format("2006-01-02"),
		to.Format("2006-01-02"),
		c.apiKey,
	)

	body, err := c.FetchJSON(ctx, u, 0)
	if err != nil {
		return nil, err
	}

	var articles []RawArticle
	if err := json.Unmarshal(body, &articles); err != nil {
		return nil, fmt.Errorf("finnhub: decode company news: %w", err)
	}
	return articles, nil
}

// GeneralNews fetches the general market-news feed, always fresh.
func (c *Client) GeneralNews(ctx context.Context) ([]RawArticle, error) {
	res, _, err := c.market.MarketNews(ctx).Category("general").Execute()
	if err != nil {
		return nil, fmt.Errorf("finnhub: market news: %w", err)
	}

	articles := make([]RawArticle, 0, len(res))
	for _, news := range res {
		var a RawArticle

		if news.Id != nil {
			a.ID = *news.Id
		}
		if news.Headline != nil {
			a.Headline = *news.Headline
		}
		if news.Summary != nil {
			a.Summary = *news.Summary
		}
		if news.Url != nil {
			a.URL = *news.Url
		}
		if news.Datetime != nil {
			a.Datetime = *news.Datetime
		}
		if news.Related != nil {
			a.Related = *news.Related
		}
		if news.Source != nil {
			a.Source = *news.Source
		}

		articles = append(articles, a)
	}

	return articles, nil
}

// SearchSymbols queries the provider symbol search, cached for 30 minutes.
func (c *Client) SearchSymbols(ctx context.Context, query string) ([]SymbolMatch, error) {
	u := fmt.Sprintf("%s/search?q=%s&token=%s", c.baseURL, url.QueryEscape(query), c.apiKey)

	body, err := c.FetchJSON(ctx, u, searchTTL)
	if err != nil {
		return nil, err
	}

	var res searchResponse
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, fmt.Errorf("finnhub: decode search: %w", err)
	}
	return res.Result, nil
}

// CompanyProfile fetches a company profile, cached for an hour.
func (c *Client) CompanyProfile(ctx context.Context, symbol string) (*CompanyProfile, error) {
	u := fmt.Sprintf("%s/stock/profile2?symbol=%s&token=%s", c.baseURL, url.QueryEscape(symbol), c.apiKey)

	body, err := c.FetchJSON(ctx, u, profileTTL)
	if err != nil {
		return nil, err
	}

	var profile CompanyProfile
	if err := json.Unmarshal(body, &profile); err != nil {
		return nil, fmt.Errorf("finnhub: decode profile: %w", err)
	}
	return &profile, nil
}

func cacheKey(fetchURL string) string {
	sum := sha256.Sum256([]byte(fetchURL))
	return "stocktracker:fetch:" + fmt.Sprintf("%x", sum)[:16]
}
