package repository

import (
	"database/sql"
	"strings"

	"github.com/codinBabe/stock-tracker-app/internal/model"
)

type WatchlistRepository struct {
	db *sql.DB
}

func NewWatchlistRepository(db *sql.DB) *WatchlistRepository {
	return &WatchlistRepository{db: db}
}

// SymbolsByEmail resolves a user's watchlist symbols. An unknown user or an
// empty watchlist both yield an empty slice, never an error.
func (r *WatchlistRepository) SymbolsByEmail(email string) ([]string, error) {
	rows, err := r.db.Query(`
		SELECT w.symbol
		FROM watchlist w
		JOIN app_user u ON u.id = w.user_id
		WHERE u.email = $1
		ORDER BY w.added_at
	`, email)

	if err != nil {
		return nil, err
	}
	defer rows.Close()

	symbols := []string{}
	for rows.Next() {
		var symbol string
		if err := rows.Scan(&symbol); err != nil {
			return nil, err
		}
		symbols = append(symbols, symbol)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return symbols, nil
}

func (r *WatchlistRepository) ItemsByEmail(email string) ([]model.WatchlistItem, error) {
	rows, err := r.db.Query(`
		SELECT w.id, w.user_id, w.symbol, w.company, w.added_at
		FROM watchlist w
		JOIN app_user u ON u.id = w.user_id
		WHERE u.email = $1
		ORDER BY w.added_at
	`, email)

	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []model.WatchlistItem{}
	for rows.Next() {
		var item model.WatchlistItem
		if err := rows.Scan(&item.ID, &item.UserID, &item.Symbol, &item.Company, &item.AddedAt); err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return items, nil
}

// Add inserts a symbol into a user's watchlist. (user_id, symbol) is unique;
// adding an existing symbol, or adding for an unknown user, returns false.
func (r *WatchlistRepository) Add(email, symbol, company string) (bool, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))

	var id int64
	err := r.db.QueryRow(`
		INSERT INTO watchlist(user_id, symbol, company)
		SELECT id, $2, $3 FROM app_user WHERE email = $1
		ON CONFLICT (user_id, symbol) DO NOTHING
		RETURNING id
	`, email, symbol, strings.TrimSpace(company)).Scan(&id)

	if err == sql.ErrNoRows {
		return false, nil
	}

	if err != nil {
		return false, err
	}

	return true, nil
}

func (r *WatchlistRepository) Remove(email, symbol string) error {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))

	_, err := r.db.Exec(`
		DELETE FROM watchlist w
		USING app_user u
		WHERE w.user_id = u.id AND u.email = $1 AND w.symbol = $2
	`, email, symbol)
	return err
}
