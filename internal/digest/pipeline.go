// Package digest orchestrates the scheduled notification pipeline: resolve
// users, fetch per-user news, summarize, deliver. Every stage is isolated per
// user and the run itself is split into checkpointed steps.
package digest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/codinBabe/stock-tracker-app/internal/gather"
	"github.com/codinBabe/stock-tracker-app/internal/mailer"
	"github.com/codinBabe/stock-tracker-app/internal/model"
	"github.com/codinBabe/stock-tracker-app/pkg/llm"
)

const (
	maxArticlesPerUser = 6

	defaultSendConcurrency = 8
	defaultPerUserTimeout  = 60 * time.Second

	// Substituted when the model answers but with no usable text.
	fallbackDigestContent = "Here is your daily market news summary."

	defaultWelcomeIntro = "Thanks for joining. You now have the tools to track markets and make smarter moves."
)

type UserSource interface {
	GetUsersForDigest() ([]model.User, error)
}

type WatchlistSource interface {
	SymbolsByEmail(email string) ([]string, error)
}

type NewsSource interface {
	GetNews(ctx context.Context, symbols []string) ([]model.Article, error)
}

// Outcome is what a triggerable operation reports back to the scheduling
// host. Partial failure still yields an Outcome, never a panic or a bare
// error.
type Outcome struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// NewUser carries the profile attributes of a just-created user for the
// welcome flow.
type NewUser struct {
	Email             string `json:"email"`
	Name              string `json:"name"`
	Country           string `json:"country"`
	InvestmentGoals   string `json:"investmentGoals"`
	RiskTolerance     string `json:"riskTolerance"`
	PreferredIndustry string `json:"preferredIndustry"`
}

type Pipeline struct {
	users      UserSource
	watchlists WatchlistSource
	news       NewsSource
	ai         llm.Inferencer
	mailer     mailer.Mailer
	steps      StepStore

	sendConcurrency int
	perUserTimeout  time.Duration
}

func NewPipeline(users UserSource, watchlists WatchlistSource, news NewsSource, ai llm.Inferencer, m mailer.Mailer, steps StepStore) *Pipeline {
	return &Pipeline{
		users:           users,
		watchlists:      watchlists,
		news:            news,
		ai:              ai,
		mailer:          m,
		steps:           steps,
		sendConcurrency: defaultSendConcurrency,
		perUserTimeout:  defaultPerUserTimeout,
	}
}

// runStep executes one named, checkpointed unit of work. A step already
// recorded for this runID is reused without re-executing its side effects.
func runStep[T any](ctx context.Context, store StepStore, runID, name string, fn func() (T, error)) (T, error) {
	var cached T
	if store != nil {
		ok, err := store.Get(ctx, runID, name, &cached)
		if err != nil {
			slog.Warn("step checkpoint read failed", "run", runID, "step", name, "error", err)
		}
		if ok {
			slog.Info("step already completed, skipping", "run", runID, "step", name)
			return cached, nil
		}
	}

	value, err := fn()
	if err != nil {
		return value, err
	}

	if store != nil {
		if err := store.Set(ctx, runID, name, value); err != nil {
			slog.Warn("step checkpoint write failed", "run", runID, "step", name, "error", err)
		}
	}
	return value, nil
}

// RunDaily executes one digest run. A failure for one user never affects the
// others; only a total absence of users fails the run.
func (p *Pipeline) RunDaily(ctx context.Context, runID string) Outcome {
	users, err := runStep(ctx, p.steps, runID, "get-all-users", func() ([]model.User, error) {
		return p.users.GetUsersForDigest()
	})
	if err != nil {
		slog.Error("failed resolving digest users", "run", runID, "error", err)
		return Outcome{Success: false, Message: "failed to resolve users for news email"}
	}
	if len(users) == 0 {
		return Outcome{Success: false, Message: "No users found for news email"}
	}

	items, err := runStep(ctx, p.steps, runID, "fetch-user-news", func() ([]model.DigestItem, error) {
		perUser := make([]model.DigestItem, 0, len(users))
		for _, user := range users {
			perUser = append(perUser, model.DigestItem{User: user, Articles: p.newsForUser(ctx, user)})
		}
		return perUser, nil
	})
	if err != nil {
		slog.Error("failed fetching user news", "run", runID, "error", err)
		return Outcome{Success: false, Message: "failed to fetch user news"}
	}

	p.summarize(ctx, runID, items)
	sent, failed := p.deliver(ctx, runID, items)

	slog.Info("digest run complete", "run", runID, "users", len(users), "sent", sent, "failed", failed)
	return Outcome{Success: true, Message: "Daily news summary emails sent"}
}

// newsForUser resolves one user's articles: watchlist symbols first, then the
// general feed when that yields nothing. Every failure degrades to an empty
// list for this user alone.
func (p *Pipeline) newsForUser(ctx context.Context, user model.User) []model.Article {
	ctx, cancel := context.WithTimeout(ctx, p.perUserTimeout)
	defer cancel()

	symbols, err := p.watchlists.SymbolsByEmail(user.Email)
	if err != nil {
		slog.Error("failed resolving watchlist", "email", user.Email, "error", err)
		symbols = nil
	}

	articles, err := p.news.GetNews(ctx, symbols)
	if err != nil {
		slog.Error("failed fetching news for user", "email", user.Email, "error", err)
		articles = nil
	}

	if len(articles) == 0 {
		articles, err = p.news.GetNews(ctx, nil)
		if err != nil {
			slog.Error("failed fetching fallback general news", "email", user.Email, "error", err)
			articles = nil
		}
	}

	if len(articles) > maxArticlesPerUser {
		articles = articles[:maxArticlesPerUser]
	}
	return articles
}

// summarize fills in each item's Summary. Users without articles, or whose
// summarization failed, keep a nil summary and are skipped at delivery.
func (p *Pipeline) summarize(ctx context.Context, runID string, items []model.DigestItem) {
	for i := range items {
		item := &items[i]
		if len(item.Articles) == 0 {
			continue
		}

		text, err := runStep(ctx, p.steps, runID, "summarize-news-"+item.User.Email, func() (string, error) {
			newsData, err := json.MarshalIndent(item.Articles, "", "  ")
			if err != nil {
				return "", fmt.Errorf("digest: marshal articles: %w", err)
			}

			inferCtx, cancel := context.WithTimeout(ctx, p.perUserTimeout)
			defer cancel()
			return p.ai.Infer(inferCtx, llm.NewsSummaryPrompt(string(newsData)))
		})
		if err != nil {
			slog.Error("failed summarizing news for user", "email", item.User.Email, "error", err)
			continue
		}

		if strings.TrimSpace(text) == "" {
			text = fallbackDigestContent
		}
		item.Summary = &text
	}
}

// deliver fans digest emails out to every user with a non-nil summary.
// Delivery failures are logged, not retried here.
func (p *Pipeline) deliver(ctx context.Context, runID string, items []model.DigestItem) (sent, failed int) {
	deliverable := make([]model.DigestItem, 0, len(items))
	for _, item := range items {
		if item.Summary != nil {
			deliverable = append(deliverable, item)
		}
	}

	date := time.Now().Format("January 2, 2006")

	delivered, failed := gather.Map(ctx, p.sendConcurrency, deliverable, func(ctx context.Context, item model.DigestItem) (string, error) {
		_, err := runStep(ctx, p.steps, runID, "send-news-email-"+item.User.Email, func() (bool, error) {
			sendCtx, cancel := context.WithTimeout(ctx, p.perUserTimeout)
			defer cancel()

			if err := p.mailer.SendDigest(sendCtx, mailer.DigestEmail{
				Email:   item.User.Email,
				Date:    date,
				Content: *item.Summary,
			}); err != nil {
				slog.Error("failed sending digest email", "email", item.User.Email, "error", err)
				return false, err
			}
			return true, nil
		})
		if err != nil {
			return "", err
		}
		return item.User.Email, nil
	})

	return len(delivered), failed
}

// SendWelcome runs the single-user welcome flow for a freshly created user.
func (p *Pipeline) SendWelcome(ctx context.Context, user NewUser) Outcome {
	profile := fmt.Sprintf(
		"- Country: %s\n- Investment goals: %s\n- Risk tolerance: %s\n- Preferred industry: %s",
		user.Country, user.InvestmentGoals, user.RiskTolerance, user.PreferredIndustry,
	)

	intro := defaultWelcomeIntro

	inferCtx, cancel := context.WithTimeout(ctx, p.perUserTimeout)
	text, err := p.ai.Infer(inferCtx, llm.WelcomePrompt(profile))
	cancel()
	if err != nil {
		slog.Error("failed generating welcome intro", "email", user.Email, "error", err)
	} else if strings.TrimSpace(text) != "" {
		intro = text
	}

	if err := p.mailer.SendWelcome(ctx, mailer.WelcomeEmail{
		Email: user.Email,
		Name:  user.Name,
		Intro: intro,
	}); err != nil {
		slog.Error("failed sending welcome email", "email", user.Email, "error", err)
		return Outcome{Success: false, Message: "failed to send welcome email"}
	}

	return Outcome{Success: true, Message: "Welcome email sent successfully"}
}
