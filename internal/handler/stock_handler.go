package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/codinBabe/stock-tracker-app/internal/model"
	"github.com/codinBabe/stock-tracker-app/internal/search"
	"github.com/gin-gonic/gin"
)

type NewsSource interface {
	GetNews(ctx context.Context, symbols []string) ([]model.Article, error)
}

// StockHandler serves instrument search and news aggregation.
type StockHandler struct {
	engine *search.Engine
	news   NewsSource
}

func NewStockHandler(engine *search.Engine, news NewsSource) *StockHandler {
	return &StockHandler{engine: engine, news: news}
}

// Search handles GET /search?q=. An empty query returns the popular-symbols
// profile list; search never fails visibly, worst case is an empty list.
func (h *StockHandler) Search(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))

	// A fresh session per request: repeated identical queries within one
	// request are memoized, nothing leaks across requests.
	session := h.engine.Session()
	stocks := session.SearchStocks(c.Request.Context(), query)

	c.JSON(http.StatusOK, SearchResponse{Query: query, Stocks: stocks})
}

// News handles GET /news?symbols=AAPL,MSFT. Without symbols it serves the
// general feed.
func (h *StockHandler) News(c *gin.Context) {
	var symbols []string
	if raw := c.Query("symbols"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			if s = strings.TrimSpace(s); s != "" {
				symbols = append(symbols, s)
			}
		}
	}

	articles, err := h.news.GetNews(c.Request.Context(), symbols)
	if err != nil {
		slog.Error("error fetching news", "symbols", symbols, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to fetch news"})
		return
	}

	c.JSON(http.StatusOK, NewsResponse{Articles: articles, Count: len(articles)})
}
