package handler

import (
	"log/slog"
	"net/http"

	"github.com/codinBabe/stock-tracker-app/internal/model"
	"github.com/gin-gonic/gin"
)

type WatchlistStore interface {
	ItemsByEmail(email string) ([]model.WatchlistItem, error)
	Add(email, symbol, company string) (bool, error)
	Remove(email, symbol string) error
}

type WatchlistHandler struct {
	store WatchlistStore
}

func NewWatchlistHandler(store WatchlistStore) *WatchlistHandler {
	return &WatchlistHandler{store: store}
}

func (h *WatchlistHandler) GetItems(c *gin.Context) {
	email := c.Param("email")

	items, err := h.store.ItemsByEmail(email)
	if err != nil {
		slog.Error("error fetching watchlist", "email", email, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *WatchlistHandler) Add(c *gin.Context) {
	email := c.Param("email")

	var req AddWatchlistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "symbol is required"})
		return
	}

	added, err := h.store.Add(email, req.Symbol, req.Company)
	if err != nil {
		slog.Error("error adding to watchlist", "email", email, "symbol", req.Symbol, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	if !added {
		c.JSON(http.StatusOK, gin.H{"added": false})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"added": true})
}

func (h *WatchlistHandler) Remove(c *gin.Context) {
	email := c.Param("email")
	symbol := c.Param("symbol")

	if err := h.store.Remove(email, symbol); err != nil {
		slog.Error("error removing from watchlist", "email", email, "symbol", symbol, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"removed": true})
}
