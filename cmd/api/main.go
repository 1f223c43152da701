package main

import (
	"log"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/codinBabe/stock-tracker-app/db"
	"github.com/codinBabe/stock-tracker-app/internal/digest"
	"github.com/codinBabe/stock-tracker-app/internal/handler"
	"github.com/codinBabe/stock-tracker-app/internal/mailer"
	"github.com/codinBabe/stock-tracker-app/internal/news"
	"github.com/codinBabe/stock-tracker-app/internal/repository"
	"github.com/codinBabe/stock-tracker-app/internal/search"
	"github.com/codinBabe/stock-tracker-app/pkg/finnhub"
	"github.com/codinBabe/stock-tracker-app/pkg/llm"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {

	godotenv.Load()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	apiKey := os.Getenv("FINNHUB_API_KEY")
	if apiKey == "" {
		slog.Error("FINNHUB_API_KEY is not set; upstream calls will fail")
	}

	err := db.Connect()
	if err != nil {
		log.Fatalf("error connecting to DB: %v", err)
	}
	defer db.Close()

	var cache finnhub.Cache
	var steps digest.StepStore
	if err := db.ConnectRedis(); err != nil {
		slog.Warn("redis unavailable, falling back to in-memory cache", "error", err)
		cache = finnhub.NewMemoryCache()
		steps = digest.NewMemoryStepStore()
	} else {
		defer db.CloseRedis()
		cache = finnhub.NewRedisCache(db.Redis)
		steps = digest.NewRedisStepStore(db.Redis, 24*time.Hour)
	}

	client := finnhub.NewClient(apiKey, cache)
	aggregator := news.NewAggregator(client)
	engine := search.NewEngine(client)

	userRepo := repository.NewUserRepository(db.DB)
	watchlistRepo := repository.NewWatchlistRepository(db.DB)

	pipeline := digest.NewPipeline(userRepo, watchlistRepo, aggregator, newInferencer(), newMailer(), steps)

	stockHandler := handler.NewStockHandler(engine, aggregator)
	watchlistHandler := handler.NewWatchlistHandler(watchlistRepo)
	userHandler := handler.NewUserHandler(userRepo, pipeline)

	r := gin.Default()

	allowedOrigins := []string{"http://localhost:3000"}

	if frontendURL := os.Getenv("FRONTEND_URL"); frontendURL != "" {
		allowedOrigins = append(allowedOrigins, frontendURL)
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins: allowedOrigins,
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type"},
	}))

	r.GET("/search", stockHandler.Search)
	r.GET("/news", stockHandler.News)
	r.GET("/watchlist/:email", watchlistHandler.GetItems)
	r.POST("/watchlist/:email", watchlistHandler.Add)
	r.DELETE("/watchlist/:email/:symbol", watchlistHandler.Remove)
	r.POST("/users", userHandler.Create)
	r.GET("/health", getHealth)

	err = r.Run(":8080")
	if err != nil {
		log.Fatalf("error starting server: %v", err)
	}
}

func getHealth(c *gin.Context) {
	if err := db.DB.Ping(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":   "unhealthy",
			"database": "disconnected",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"database": "connected",
	})
}

func newInferencer() llm.Inferencer {
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		return llm.NewAnthropicClient(key)
	}

	key := os.Getenv("OPENAI_API_KEY")
	if key == "" {
		slog.Error("no LLM API key configured; summarization calls will fail and fall back to defaults")
	}
	return llm.NewOpenAIClient(key)
}

func newMailer() mailer.Mailer {
	port, err := strconv.Atoi(os.Getenv("SMTP_PORT"))
	if err != nil {
		port = 587
	}
	return mailer.NewSMTPMailer(
		os.Getenv("SMTP_HOST"),
		port,
		os.Getenv("SMTP_USERNAME"),
		os.Getenv("SMTP_PASSWORD"),
		os.Getenv("SMTP_FROM"),
	)
}
