// Package mysqlstore implements the store contracts on MySQL via
// database/sql.
package mysqlstore

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"

	"github.com/askar/teamboard/internal/store"
)

// Store implements store.TeamStore, store.UserStore, store.TaskStore and
// store.RewardLedger on a shared *sql.DB.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// translateErr maps MySQL duplicate-key violations (error 1062) onto the
// typed store errors, keyed by which unique index was hit. Raw driver
// errors never leave the store for constraint conflicts.
func translateErr(err error) error {
	if err == nil {
		return nil
	}
	var me *mysql.MySQLError
	if errors.As(err, &me) && me.Number == 1062 {
		switch {
		case strings.Contains(me.Message, "uq_teams_name"):
			return store.ErrNameTaken
		case strings.Contains(me.Message, "uq_teams_invite_code"):
			return store.ErrInviteCodeTaken
		case strings.Contains(me.Message, "uq_memberships_user"):
			return store.ErrAlreadyTeamed
		case strings.Contains(me.Message, "uq_join_requests_pending"),
			strings.Contains(me.Message, "uq_invitations_pending"):
			return store.ErrDuplicatePending
		case strings.Contains(me.Message, "uq_users_"):
			return store.ErrUserExists
		}
	}
	return err
}

// withTx runs fn inside a transaction, rolling back on error.
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return translateErr(err)
	}
	return translateErr(tx.Commit())
}
