package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// UserRepo resolves display names from the users table.
type UserRepo struct {
	db *DB
}

func NewUserRepo(db *DB) *UserRepo {
	return &UserRepo{db: db}
}

// GetName returns the user's display name, or "" when the user is unknown.
func (r *UserRepo) GetName(ctx context.Context, userID int64) (string, error) {
	var name string
	err := r.db.GetContext(ctx, &name, `SELECT name FROM users WHERE id = $1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to load user %d: %w", userID, err)
	}
	return name, nil
}
