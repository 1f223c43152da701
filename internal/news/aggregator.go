package news

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/codinBabe/stock-tracker-app/internal/gather"
	"github.com/codinBabe/stock-tracker-app/internal/model"
	"github.com/codinBabe/stock-tracker-app/pkg/finnhub"
)

const (
	maxArticles = 6
	maxRounds   = 6

	// Trailing window for symbol-scoped news.
	windowDays = 5

	fetchConcurrency = 4
)

// Provider is the slice of the upstream client the aggregator needs.
type Provider interface {
	CompanyNews(ctx context.Context, symbol string, from, to time.Time) ([]finnhub.RawArticle, error)
	GeneralNews(ctx context.Context) ([]finnhub.RawArticle, error)
}

// Aggregator turns a set of watchlist symbols (or none) into a bounded,
// ranked article list.
type Aggregator struct {
	provider Provider
}

func NewAggregator(provider Provider) *Aggregator {
	return &Aggregator{provider: provider}
}

// GetNews returns at most 6 articles. With symbols it collects company news
// round-robin across the deduplicated symbol set and sorts by recency; with
// no symbols it returns the deduplicated general feed in provider order.
// Per-symbol failures are logged and skipped; only a total general-feed
// failure surfaces as an error.
func (a *Aggregator) GetNews(ctx context.Context, symbols []string) ([]model.Article, error) {
	if len(symbols) > 0 {
		cleaned := dedupSymbols(symbols)
		if len(cleaned) == 0 {
			return []model.Article{}, nil
		}
		return a.symbolNews(ctx, cleaned), nil
	}
	return a.generalNews(ctx)
}

type symbolArticles struct {
	symbol   string
	articles []finnhub.RawArticle
}

func (a *Aggregator) symbolNews(ctx context.Context, symbols []string) []model.Article {
	to := time.Now()
	from := to.AddDate(0, 0, -windowDays)

	// One fetch per symbol; a failed symbol drops out of the rotation but
	// never fails the aggregation.
	lists, failed := gather.Map(ctx, fetchConcurrency, symbols, func(ctx context.Context, symbol string) (symbolArticles, error) {
		raw, err := a.provider.CompanyNews(ctx, symbol, from, to)
		if err != nil {
			slog.Error("failed fetching company news", "symbol", symbol, "error", err)
			return symbolArticles{}, err
		}

		valid := make([]finnhub.RawArticle, 0, len(raw))
		for _, art := range raw {
			if Validate(art) {
				valid = append(valid, art)
			}
		}
		return symbolArticles{symbol: symbol, articles: valid}, nil
	})
	if failed > 0 {
		slog.Warn("company news collected with failures", "symbols", len(symbols), "failed", failed)
	}

	// Round-robin: one article per symbol per round, so no single symbol's
	// bulk news crowds out the others. Offsets are local to this call.
	offsets := make(map[string]int, len(lists))
	collected := make([]model.Article, 0, maxArticles)

	for round := 0; round < maxRounds && len(collected) < maxArticles; round++ {
		for _, list := range lists {
			if len(collected) >= maxArticles {
				break
			}
			offset := offsets[list.symbol]
			if offset >= len(list.articles) {
				continue
			}
			collected = append(collected, Format(list.articles[offset], true, list.symbol, len(collected)))
			offsets[list.symbol] = offset + 1
		}
	}

	sort.SliceStable(collected, func(i, j int) bool {
		return collected[i].Datetime > collected[j].Datetime
	})
	if len(collected) > maxArticles {
		collected = collected[:maxArticles]
	}
	return collected
}

func (a *Aggregator) generalNews(ctx context.Context) ([]model.Article, error) {
	raw, err := a.provider.GeneralNews(ctx)
	if err != nil {
		return nil, fmt.Errorf("news: general feed: %w", err)
	}

	// The provider occasionally re-emits near-duplicate records with
	// different ids; the composite key catches those. Provider order is
	// trusted, so no re-sort on this path.
	seen := make(map[string]struct{})
	result := make([]model.Article, 0, maxArticles)

	for i := 0; i < len(raw) && len(result) < maxArticles; i++ {
		art := raw[i]
		if !Validate(art) {
			continue
		}
		key := dedupKey(art)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		result = append(result, Format(art, false, "", i))
	}

	return result, nil
}

func dedupKey(raw finnhub.RawArticle) string {
	headline := raw.Headline
	if len(headline) > 60 {
		headline = headline[:60]
	}
	return fmt.Sprintf("%d-%s-%s", raw.ID, raw.URL, headline)
}

// dedupSymbols trims, uppercases and deduplicates while preserving first
// occurrence order.
func dedupSymbols(symbols []string) []string {
	seen := make(map[string]struct{}, len(symbols))
	cleaned := make([]string, 0, len(symbols))
	for _, s := range symbols {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		cleaned = append(cleaned, s)
	}
	return cleaned
}
