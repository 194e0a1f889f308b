package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const userColumns = `user_id, username, name, email, image, about, github_url, created_at`

const getUserByUsername = `SELECT ` + userColumns + ` FROM users WHERE username = $1`

const getUserByID = `SELECT ` + userColumns + ` FROM users WHERE user_id = $1`

const listUsernames = `SELECT username FROM users ORDER BY username`

const updateUserAbout = `UPDATE users SET about = $2, updated_at = now() WHERE user_id = $1`

// UserRepository exposes the user reads and the bio update.
type UserRepository struct {
	db DBTX
}

func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db: db}
}

// GetByUsername fetches a user by handle.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (User, error) {
	u, err := scanUser(r.db.QueryRow(ctx, getUserByUsername, username))
	if err != nil {
		return User{}, fmt.Errorf("get user %q: %w", username, err)
	}
	return u, nil
}

// GetByID fetches a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, userID uuid.UUID) (User, error) {
	u, err := scanUser(r.db.QueryRow(ctx, getUserByID, userID))
	if err != nil {
		return User{}, fmt.Errorf("get user %s: %w", userID, err)
	}
	return u, nil
}

// ListUsernames returns every handle, used to enumerate profile pages.
func (r *UserRepository) ListUsernames(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx, listUsernames)
	if err != nil {
		return nil, fmt.Errorf("list usernames: %w", err)
	}
	defer rows.Close()

	out := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

// UpdateAbout stores a new bio for userID.
func (r *UserRepository) UpdateAbout(ctx context.Context, userID uuid.UUID, about string) error {
	tag, err := r.db.Exec(ctx, updateUserAbout, userID, about)
	if err != nil {
		return fmt.Errorf("update about: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (User, error) {
	var u User
	if err := row.Scan(
		&u.ID,
		&u.Username,
		&u.Name,
		&u.Email,
		&u.Image,
		&u.About,
		&u.GithubURL,
		&u.CreatedAt,
	); err != nil {
		return User{}, notFound(err)
	}
	return u, nil
}
