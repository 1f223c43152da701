package news

import (
	"crypto/sha256"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/codinBabe/stock-tracker-app/internal/model"
	"github.com/codinBabe/stock-tracker-app/pkg/finnhub"
)

// Validate reports whether a raw provider record is usable: non-empty
// headline, parseable absolute URL and a positive publication time.
func Validate(raw finnhub.RawArticle) bool {
	if strings.TrimSpace(raw.Headline) == "" {
		return false
	}
	if raw.Datetime <= 0 {
		return false
	}
	u, err := url.Parse(raw.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return false
	}
	return true
}

// Format maps a validated raw record into the canonical article shape. When
// symbolScoped is true the article is stamped with the symbol it was fetched
// for; ordinal seeds SourceRank for stable ordering among same-timestamp
// articles.
func Format(raw finnhub.RawArticle, symbolScoped bool, symbol string, ordinal int) model.Article {
	a := model.Article{
		ID:         articleID(raw),
		Headline:   strings.TrimSpace(raw.Headline),
		Summary:    strings.TrimSpace(raw.Summary),
		URL:        raw.URL,
		Source:     raw.Source,
		Datetime:   raw.Datetime,
		SourceRank: ordinal,
	}
	if symbolScoped {
		a.RelatedSymbol = symbol
	}
	return a
}

// articleID prefers the provider id; records without one get a stable id
// derived from the URL.
func articleID(raw finnhub.RawArticle) string {
	if raw.ID != 0 {
		return strconv.FormatInt(raw.ID, 10)
	}
	sum := sha256.Sum256([]byte(raw.URL))
	return fmt.Sprintf("%x", sum)[:16]
}
