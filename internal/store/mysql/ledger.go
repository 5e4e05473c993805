package mysqlstore

import (
	"context"
	"database/sql"
	"time"
)

// Grant adds XP to a user and appends an xp_logs row in one transaction.
func (s *Store) Grant(ctx context.Context, userID int64, amount int, reason string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`UPDATE users SET xp = xp + ? WHERE user_id = ?`, amount, userID); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO xp_logs (user_id, amount, reason, created_at) VALUES (?, ?, ?, ?)`,
			userID, amount, reason, time.Now().UTC().Unix(),
		)
		return err
	})
}
