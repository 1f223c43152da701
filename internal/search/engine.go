// Package search implements the instrument search/rank engine. Search is a
// best-effort, UI-facing feature: total provider failure surfaces as an empty
// result list, never an error.
package search

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/codinBabe/stock-tracker-app/internal/gather"
	"github.com/codinBabe/stock-tracker-app/internal/model"
	"github.com/codinBabe/stock-tracker-app/pkg/finnhub"
)

const (
	maxResults         = 15
	popularLimit       = 10
	profileConcurrency = 5

	defaultExchange = "US"
	defaultType     = "Stock"
)

// popularSymbols backs the empty-query path. List order is the only ranking
// signal; the first popularLimit entries are shown.
var popularSymbols = []string{
	"AAPL", "MSFT", "GOOGL", "AMZN", "NVDA",
	"TSLA", "META", "NFLX", "AMD", "INTC",
	"CRM", "ORCL", "ADBE", "UBER", "SHOP",
	"SPOT", "ABNB", "COIN", "PLTR", "PYPL",
}

var errUnusableProfile = errors.New("search: profile has no usable name")

// Provider is the slice of the upstream client the engine needs.
type Provider interface {
	SearchSymbols(ctx context.Context, query string) ([]finnhub.SymbolMatch, error)
	CompanyProfile(ctx context.Context, symbol string) (*finnhub.CompanyProfile, error)
}

type Engine struct {
	provider Provider
}

func NewEngine(provider Provider) *Engine {
	return &Engine{provider: provider}
}

// SearchStocks returns up to 15 candidates for a query, or the popular-symbols
// profile lookup when the query is empty. IsInWatchlist is always false here;
// watchlist enrichment happens upstream.
func (e *Engine) SearchStocks(ctx context.Context, query string) []model.Candidate {
	query = strings.TrimSpace(query)
	if query == "" {
		return e.popularStocks(ctx)
	}
	return e.searchProvider(ctx, query)
}

func (e *Engine) popularStocks(ctx context.Context) []model.Candidate {
	symbols := popularSymbols
	if len(symbols) > popularLimit {
		symbols = symbols[:popularLimit]
	}

	// Partial results are expected: a symbol whose profile fetch fails or
	// lacks a name is dropped, not retried.
	candidates, failed := gather.Map(ctx, profileConcurrency, symbols, func(ctx context.Context, symbol string) (model.Candidate, error) {
		profile, err := e.provider.CompanyProfile(ctx, symbol)
		if err != nil {
			slog.Warn("failed fetching profile for popular symbol", "symbol", symbol, "error", err)
			return model.Candidate{}, err
		}
		if strings.TrimSpace(profile.Name) == "" {
			return model.Candidate{}, errUnusableProfile
		}
		return model.Candidate{
			Symbol:   symbol,
			Name:     profile.Name,
			Exchange: fallback(profile.Exchange, defaultExchange),
			Type:     defaultType,
		}, nil
	})
	if failed > 0 {
		slog.Warn("popular symbols resolved with failures", "failed", failed)
	}

	return candidates
}

func (e *Engine) searchProvider(ctx context.Context, query string) []model.Candidate {
	matches, err := e.provider.SearchSymbols(ctx, query)
	if err != nil {
		slog.Error("stock search failed", "query", query, "error", err)
		return []model.Candidate{}
	}

	candidates := make([]model.Candidate, 0, maxResults)
	for _, m := range matches {
		if len(candidates) >= maxResults {
			break
		}
		symbol := strings.ToUpper(strings.TrimSpace(m.Symbol))
		if symbol == "" {
			continue
		}
		candidates = append(candidates, model.Candidate{
			Symbol:   symbol,
			Name:     fallback(m.Description, symbol),
			Exchange: fallback(m.DisplaySymbol, defaultExchange),
			Type:     fallback(m.Type, defaultType),
		})
	}
	return candidates
}

func fallback(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return value
}

// Session memoizes results per distinct query for the life of one request, so
// repeated identical queries within a render do not re-hit the provider.
type Session struct {
	engine *Engine

	mu   sync.Mutex
	memo map[string][]model.Candidate
}

func (e *Engine) Session() *Session {
	return &Session{engine: e, memo: make(map[string][]model.Candidate)}
}

func (s *Session) SearchStocks(ctx context.Context, query string) []model.Candidate {
	key := strings.TrimSpace(query)

	s.mu.Lock()
	cached, ok := s.memo[key]
	s.mu.Unlock()
	if ok {
		return cached
	}

	results := s.engine.SearchStocks(ctx, key)

	s.mu.Lock()
	s.memo[key] = results
	s.mu.Unlock()
	return results
}
