package model

import "time"

type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

type WatchlistItem struct {
	ID      int64     `json:"id"`
	UserID  string    `json:"userId"`
	Symbol  string    `json:"symbol"`
	Company string    `json:"company"`
	AddedAt time.Time `json:"addedAt"`
}

// DigestItem is the per-user bundle carried through one digest run. Summary
// stays nil when summarization failed or the user had no articles; such users
// are skipped at delivery.
type DigestItem struct {
	User     User      `json:"user"`
	Articles []Article `json:"articles"`
	Summary  *string   `json:"summary"`
}
