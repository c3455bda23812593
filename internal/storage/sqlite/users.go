package sqlite

import (
	"context"
	"database/sql"

	"github.com/uschtwill/trackd/internal/types"
)

// CreateUser inserts a user row. Email must be unique.
func (s *SQLiteStorage) CreateUser(ctx context.Context, user *types.User) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, name, email, image) VALUES (?, ?, ?, ?)
	`, user.ID, user.Name, user.Email, user.Image)
	return wrapDBError("create user", err)
}

// GetUser fetches a user by id. Returns (nil, nil) when absent.
func (s *SQLiteStorage) GetUser(ctx context.Context, id string) (*types.User, error) {
	return s.getUser(ctx, `SELECT id, name, email, image FROM users WHERE id = ?`, id)
}

// GetUserByEmail fetches a user by email. Returns (nil, nil) when absent.
func (s *SQLiteStorage) GetUserByEmail(ctx context.Context, email string) (*types.User, error) {
	return s.getUser(ctx, `SELECT id, name, email, image FROM users WHERE email = ?`, email)
}

func (s *SQLiteStorage) getUser(ctx context.Context, query string, arg interface{}) (*types.User, error) {
	var u types.User
	err := s.db.QueryRowContext(ctx, query, arg).Scan(&u.ID, &u.Name, &u.Email, &u.Image)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, wrapDBError("get user", err)
	}
	return &u, nil
}

// ListUsers returns all users ordered by name ascending.
func (s *SQLiteStorage) ListUsers(ctx context.Context) ([]*types.User, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, email, image FROM users ORDER BY name`)
	if err != nil {
		return nil, wrapDBError("list users", err)
	}
	defer func() { _ = rows.Close() }()

	users := []*types.User{}
	for rows.Next() {
		var u types.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Image); err != nil {
			return nil, wrapDBError("scan user", err)
		}
		users = append(users, &u)
	}
	return users, wrapDBError("iterate users", rows.Err())
}
