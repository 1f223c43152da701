package repository

import (
	"database/sql"

	"github.com/codinBabe/stock-tracker-app/internal/model"
)

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// GetUsersForDigest returns every user with a usable email and name.
func (r *UserRepository) GetUsersForDigest() ([]model.User, error) {
	rows, err := r.db.Query(`
		SELECT id, email, name
		FROM app_user
		WHERE email <> '' AND name <> ''
		ORDER BY id
	`)

	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Email, &u.Name); err != nil {
			return nil, err
		}
		users = append(users, u)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return users, nil
}

func (r *UserRepository) GetByEmail(email string) (*model.User, error) {
	var u model.User
	err := r.db.QueryRow(`
		SELECT id, email, name
		FROM app_user
		WHERE email = $1
	`, email).Scan(&u.ID, &u.Email, &u.Name)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	return &u, nil
}

// Create inserts a new user and fills in the generated id. Returns false when
// the email is already registered.
func (r *UserRepository) Create(user *model.User) (bool, error) {
	err := r.db.QueryRow(`
		INSERT INTO app_user(email, name)
		VALUES($1, $2)
		ON CONFLICT (email) DO NOTHING
		RETURNING id
	`, user.Email, user.Name).Scan(&user.ID)

	if err == sql.ErrNoRows {
		return false, nil
	}

	if err != nil {
		return false, err
	}

	return true, nil
}
