package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/codinBabe/stock-tracker-app/internal/digest"
	"github.com/codinBabe/stock-tracker-app/internal/model"
	"github.com/codinBabe/stock-tracker-app/internal/search"
	"github.com/codinBabe/stock-tracker-app/pkg/finnhub"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/assert/v2"
)

type fakeSearchProvider struct {
	matches   []finnhub.SymbolMatch
	searchErr error
}

func (f *fakeSearchProvider) SearchSymbols(_ context.Context, _ string) ([]finnhub.SymbolMatch, error) {
	return f.matches, f.searchErr
}

func (f *fakeSearchProvider) CompanyProfile(_ context.Context, symbol string) (*finnhub.CompanyProfile, error) {
	return &finnhub.CompanyProfile{Name: symbol + " Inc", Exchange: "NASDAQ"}, nil
}

type fakeNews struct {
	articles []model.Article
	err      error
	symbols  []string
}

func (f *fakeNews) GetNews(_ context.Context, symbols []string) ([]model.Article, error) {
	f.symbols = symbols
	return f.articles, f.err
}

type fakeWatchlistStore struct {
	items []model.WatchlistItem
	added bool
	err   error
}

func (f *fakeWatchlistStore) ItemsByEmail(string) ([]model.WatchlistItem, error) {
	return f.items, f.err
}

func (f *fakeWatchlistStore) Add(string, string, string) (bool, error) {
	return f.added, f.err
}

func (f *fakeWatchlistStore) Remove(string, string) error {
	return f.err
}

type fakeUserStore struct {
	created bool
	err     error
	user    *model.User
}

func (f *fakeUserStore) Create(user *model.User) (bool, error) {
	user.ID = "generated-id"
	f.user = user
	return f.created, f.err
}

type fakeWelcome struct {
	outcome digest.Outcome
	called  int
}

func (f *fakeWelcome) SendWelcome(_ context.Context, _ digest.NewUser) digest.Outcome {
	f.called++
	return f.outcome
}

func newTestRouter(stocks *StockHandler, watchlist *WatchlistHandler, users *UserHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	if stocks != nil {
		r.GET("/search", stocks.Search)
		r.GET("/news", stocks.News)
	}
	if watchlist != nil {
		r.GET("/watchlist/:email", watchlist.GetItems)
		r.POST("/watchlist/:email", watchlist.Add)
		r.DELETE("/watchlist/:email/:symbol", watchlist.Remove)
	}
	if users != nil {
		r.POST("/users", users.Create)
	}
	return r
}

func TestSearchReturnsCandidates(t *testing.T) {
	provider := &fakeSearchProvider{matches: []finnhub.SymbolMatch{
		{Symbol: "AAPL", Description: "Apple Inc", DisplaySymbol: "AAPL", Type: "Common Stock"},
	}}
	h := NewStockHandler(search.NewEngine(provider), &fakeNews{})
	r := newTestRouter(h, nil, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/search?q=apple", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var res SearchResponse
	json.Unmarshal(w.Body.Bytes(), &res)
	assert.Equal(t, "apple", res.Query)
	assert.Equal(t, 1, len(res.Stocks))
	assert.Equal(t, "Apple Inc", res.Stocks[0].Name)
}

func TestSearchEmptyQueryReturnsPopular(t *testing.T) {
	h := NewStockHandler(search.NewEngine(&fakeSearchProvider{}), &fakeNews{})
	r := newTestRouter(h, nil, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/search", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var res SearchResponse
	json.Unmarshal(w.Body.Bytes(), &res)
	assert.Equal(t, 10, len(res.Stocks))
}

func TestSearchProviderFailureYieldsEmptyList(t *testing.T) {
	provider := &fakeSearchProvider{searchErr: errors.New("upstream down")}
	h := NewStockHandler(search.NewEngine(provider), &fakeNews{})
	r := newTestRouter(h, nil, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/search?q=apple", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var res SearchResponse
	json.Unmarshal(w.Body.Bytes(), &res)
	assert.Equal(t, 0, len(res.Stocks))
}

func TestNewsParsesSymbols(t *testing.T) {
	news := &fakeNews{articles: []model.Article{{ID: "1", Headline: "h", URL: "https://e.com", Datetime: 1}}}
	h := NewStockHandler(search.NewEngine(&fakeSearchProvider{}), news)
	r := newTestRouter(h, nil, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/news?symbols=AAPL,%20MSFT,", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"AAPL", "MSFT"}, news.symbols)

	var res NewsResponse
	json.Unmarshal(w.Body.Bytes(), &res)
	assert.Equal(t, 1, res.Count)
}

func TestNewsFailureReturnsBadGateway(t *testing.T) {
	news := &fakeNews{err: errors.New("general feed down")}
	h := NewStockHandler(search.NewEngine(&fakeSearchProvider{}), news)
	r := newTestRouter(h, nil, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/news", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestWatchlistAdd(t *testing.T) {
	store := &fakeWatchlistStore{added: true}
	r := newTestRouter(nil, NewWatchlistHandler(store), nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/watchlist/a@example.com", strings.NewReader(`{"symbol":"AAPL","company":"Apple Inc"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestWatchlistAddMissingSymbol(t *testing.T) {
	r := newTestRouter(nil, NewWatchlistHandler(&fakeWatchlistStore{}), nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/watchlist/a@example.com", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWatchlistGetDBError(t *testing.T) {
	store := &fakeWatchlistStore{err: errors.New("db down")}
	r := newTestRouter(nil, NewWatchlistHandler(store), nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/watchlist/a@example.com", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestWatchlistRemove(t *testing.T) {
	r := newTestRouter(nil, NewWatchlistHandler(&fakeWatchlistStore{}), nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("DELETE", "/watchlist/a@example.com/AAPL", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCreateUserFiresWelcomeFlow(t *testing.T) {
	store := &fakeUserStore{created: true}
	welcome := &fakeWelcome{outcome: digest.Outcome{Success: true, Message: "Welcome email sent successfully"}}
	r := newTestRouter(nil, nil, NewUserHandler(store, welcome))

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/users", strings.NewReader(`{"email":"new@example.com","name":"Noa","country":"Japan"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, 1, welcome.called)
	assert.Equal(t, "generated-id", store.user.ID)
}

func TestCreateUserDuplicate(t *testing.T) {
	store := &fakeUserStore{created: false}
	welcome := &fakeWelcome{}
	r := newTestRouter(nil, nil, NewUserHandler(store, welcome))

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/users", strings.NewReader(`{"email":"new@example.com","name":"Noa"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, 0, welcome.called)
}

func TestCreateUserInvalidBody(t *testing.T) {
	r := newTestRouter(nil, nil, NewUserHandler(&fakeUserStore{}, &fakeWelcome{}))

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/users", strings.NewReader(`{"email":"not-an-email"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
