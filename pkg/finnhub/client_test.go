package finnhub

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"
)

func newTestClient(srv *httptest.Server, cache Cache) *Client {
	return &Client{
		apiKey:     "test-key",
		baseURL:    srv.URL,
		httpClient: srv.Client(),
		cache:      cache,
	}
}

func TestFetchJSONCachesByURL(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"name": "Apple Inc"})
	}))
	defer srv.Close()

	client := newTestClient(srv, NewMemoryCache())

	_, err := client.FetchJSON(context.Background(), srv.URL+"/stock/profile2?symbol=AAPL", time.Hour)
	assert.Equal(t, nil, err)

	_, err = client.FetchJSON(context.Background(), srv.URL+"/stock/profile2?symbol=AAPL", time.Hour)
	assert.Equal(t, nil, err)
	assert.Equal(t, 1, hits)
}

func TestFetchJSONNoTTLAlwaysFresh(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	client := newTestClient(srv, NewMemoryCache())

	client.FetchJSON(context.Background(), srv.URL, 0)
	client.FetchJSON(context.Background(), srv.URL, 0)
	assert.Equal(t, 2, hits)
}

func TestFetchJSONUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte("rate limit exceeded"))
	}))
	defer srv.Close()

	client := newTestClient(srv, nil)

	_, err := client.FetchJSON(context.Background(), srv.URL, 0)
	assert.NotEqual(t, nil, err)

	var upstream *UpstreamError
	assert.Equal(t, true, errors.As(err, &upstream))
	assert.Equal(t, http.StatusTooManyRequests, upstream.Status)
	assert.Equal(t, "rate limit exceeded", upstream.Body)
}

func TestCompanyNewsDecodesArticles(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/company-news", r.URL.Path)
		assert.Equal(t, "AAPL", r.URL.Query().Get("symbol"))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode([]map[string]interface{}{
			{
				"id":       int64(101),
				"headline": "Apple unveils new chip",
				"summary":  "Apple announced its next generation silicon.",
				"url":      "https://example.com/apple-chip",
				"datetime": int64(1756400000),
				"related":  "AAPL",
				"source":   "Reuters",
			},
		})
	}))
	defer srv.Close()

	client := newTestClient(srv, nil)

	to := time.Now()
	from := to.AddDate(0, 0, -5)
	articles, err := client.CompanyNews(context.Background(), "AAPL", from, to)

	assert.Equal(t, nil, err)
	assert.Equal(t, 1, len(articles))
	assert.Equal(t, int64(101), articles[0].ID)
	assert.Equal(t, "Apple unveils new chip", articles[0].Headline)
	assert.Equal(t, "https://example.com/apple-chip", articles[0].URL)
	assert.Equal(t, int64(1756400000), articles[0].Datetime)
	assert.Equal(t, "AAPL", articles[0].Related)
}

func TestSearchSymbolsDecodesMatches(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"count": 1,
			"result": []map[string]string{
				{
					"description":   "APPLE INC",
					"displaySymbol": "AAPL",
					"symbol":        "AAPL",
					"type":          "Common Stock",
				},
			},
		})
	}))
	defer srv.Close()

	client := newTestClient(srv, NewMemoryCache())

	matches, err := client.SearchSymbols(context.Background(), "apple")
	assert.Equal(t, nil, err)
	assert.Equal(t, 1, len(matches))
	assert.Equal(t, "APPLE INC", matches[0].Description)
	assert.Equal(t, "AAPL", matches[0].Symbol)
}

func TestCompanyProfileDecodes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/stock/profile2", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"name":     "Apple Inc",
			"ticker":   "AAPL",
			"exchange": "NASDAQ NMS - GLOBAL MARKET",
		})
	}))
	defer srv.Close()

	client := newTestClient(srv, NewMemoryCache())

	profile, err := client.CompanyProfile(context.Background(), "AAPL")
	assert.Equal(t, nil, err)
	assert.Equal(t, "Apple Inc", profile.Name)
	assert.Equal(t, "NASDAQ NMS - GLOBAL MARKET", profile.Exchange)
}

func TestMemoryCacheExpiry(t *testing.T) {
	cache := NewMemoryCache()
	cache.Set(context.Background(), "k", []byte("v"), -time.Second)

	_, ok := cache.Get(context.Background(), "k")
	assert.Equal(t, false, ok)

	cache.Set(context.Background(), "k", []byte("v"), time.Minute)
	val, ok := cache.Get(context.Background(), "k")
	assert.Equal(t, true, ok)
	assert.Equal(t, []byte("v"), val)
}
