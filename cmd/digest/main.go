package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/codinBabe/stock-tracker-app/db"
	"github.com/codinBabe/stock-tracker-app/internal/digest"
	"github.com/codinBabe/stock-tracker-app/internal/mailer"
	"github.com/codinBabe/stock-tracker-app/internal/news"
	"github.com/codinBabe/stock-tracker-app/internal/repository"
	"github.com/codinBabe/stock-tracker-app/pkg/finnhub"
	"github.com/codinBabe/stock-tracker-app/pkg/llm"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

func main() {
	once := flag.Bool("once", false, "run one digest cycle and exit")
	flag.Parse()

	godotenv.Load()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	apiKey := os.Getenv("FINNHUB_API_KEY")
	if apiKey == "" {
		slog.Error("FINNHUB_API_KEY is not set; upstream calls will fail")
	}

	if err := db.Connect(); err != nil {
		log.Fatalf("error connecting to DB: %v", err)
	}
	defer db.Close()

	var cache finnhub.Cache
	var steps digest.StepStore
	if err := db.ConnectRedis(); err != nil {
		slog.Warn("redis unavailable, checkpoints will not survive restarts", "error", err)
		cache = finnhub.NewMemoryCache()
		steps = digest.NewMemoryStepStore()
	} else {
		defer db.CloseRedis()
		cache = finnhub.NewRedisCache(db.Redis)
		steps = digest.NewRedisStepStore(db.Redis, 24*time.Hour)
	}

	client := finnhub.NewClient(apiKey, cache)
	pipeline := digest.NewPipeline(
		repository.NewUserRepository(db.DB),
		repository.NewWatchlistRepository(db.DB),
		news.NewAggregator(client),
		newInferencer(),
		newMailer(),
		steps,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runDigest := func() {
		// The run ID is the calendar date, so a re-run after a crash
		// skips steps that already completed today.
		runID := time.Now().Format("2006-01-02")
		slog.Info("starting digest run", "run_id", runID)

		outcome := pipeline.RunDaily(ctx, runID)
		if outcome.Success {
			slog.Info("digest run finished", "run_id", runID, "message", outcome.Message)
		} else {
			slog.Error("digest run failed", "run_id", runID, "message", outcome.Message)
		}
	}

	if *once {
		runDigest()
		return
	}

	schedule := os.Getenv("DIGEST_CRON")
	if schedule == "" {
		schedule = "0 12 * * *"
	}

	c := cron.New()
	if _, err := c.AddFunc(schedule, runDigest); err != nil {
		log.Fatalf("invalid DIGEST_CRON %q: %v", schedule, err)
	}
	c.Start()
	slog.Info("digest scheduler started", "schedule", schedule)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	slog.Info("shutting down digest scheduler")
	cancel()
	stopCtx := c.Stop()
	<-stopCtx.Done()
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
