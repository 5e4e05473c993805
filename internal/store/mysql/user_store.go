package mysqlstore

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/askar/teamboard/internal/models"
	"github.com/askar/teamboard/internal/store"
)

const userColumns = `user_id, username, email, password, COALESCE(full_name, ''), xp, created_at`

func scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.UserID, &u.Username, &u.Email, &u.Password, &u.FullName, &u.XP, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	now := time.Now().UTC().Unix()
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO users (username, email, password, full_name, created_at) VALUES (?, ?, ?, ?, ?)`,
		u.Username, u.Email, u.Password, u.FullName, now,
	)
	if err != nil {
		return translateErr(err)
	}
	u.UserID, err = result.LastInsertId()
	u.CreatedAt = now
	return err
}

func (s *Store) UserByID(ctx context.Context, id int64) (*models.User, error) {
	return scanUser(s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE user_id = ?`, id))
}

func (s *Store) UserByUsername(ctx context.Context, username string) (*models.User, error) {
	return scanUser(s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = ?`, username))
}

func (s *Store) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	return scanUser(s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email))
}
