package mysqlstore

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/askar/teamboard/internal/models"
	"github.com/askar/teamboard/internal/store"
)

func (s *Store) CreateTeamWithLeader(ctx context.Context, team *models.Team, leaderID int64) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		now := time.Now().UTC().Unix()
		result, err := tx.ExecContext(ctx,
			`INSERT INTO teams (team_name, theme, invite_code, created_at) VALUES (?, ?, ?, ?)`,
			team.Name, team.Theme, team.InviteCode, now,
		)
		if err != nil {
			return err
		}
		teamID, err := result.LastInsertId()
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO memberships (team_id, user_id, role, joined_at) VALUES (?, ?, ?, ?)`,
			teamID, leaderID, models.RoleLeader, now,
		)
		if err != nil {
			return err
		}

		team.ID = teamID
		team.CreatedAt = now
		return nil
	})
}

const teamColumns = `team_id, team_name, COALESCE(theme, ''), invite_code, created_at`

func scanTeam(row *sql.Row) (*models.Team, error) {
	var t models.Team
	err := row.Scan(&t.ID, &t.Name, &t.Theme, &t.InviteCode, &t.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *Store) TeamByID(ctx context.Context, id int64) (*models.Team, error) {
	return scanTeam(s.db.QueryRowContext(ctx,
		`SELECT `+teamColumns+` FROM teams WHERE team_id = ?`, id))
}

func (s *Store) TeamByName(ctx context.Context, name string) (*models.Team, error) {
	return scanTeam(s.db.QueryRowContext(ctx,
		`SELECT `+teamColumns+` FROM teams WHERE team_name = ?`, name))
}

func (s *Store) TeamByInviteCode(ctx context.Context, code string) (*models.Team, error) {
	return scanTeam(s.db.QueryRowContext(ctx,
		`SELECT `+teamColumns+` FROM teams WHERE invite_code = ?`, code))
}

func (s *Store) ListTeams(ctx context.Context, query string) ([]models.Team, error) {
	q := `SELECT ` + teamColumns + ` FROM teams ORDER BY created_at DESC`
	args := []interface{}{}
	if query != "" {
		q = `SELECT ` + teamColumns + ` FROM teams WHERE team_name LIKE ? ORDER BY created_at DESC`
		args = append(args, "%"+query+"%")
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var teams []models.Team
	for rows.Next() {
		var t models.Team
		if err := rows.Scan(&t.ID, &t.Name, &t.Theme, &t.InviteCode, &t.CreatedAt); err != nil {
			return nil, err
		}
		teams = append(teams, t)
	}
	return teams, rows.Err()
}

func (s *Store) UpdateTeam(ctx context.Context, team *models.Team) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE teams SET team_name = ?, theme = ? WHERE team_id = ?`,
		team.Name, team.Theme, team.ID,
	)
	return translateErr(err)
}

func (s *Store) SetInviteCode(ctx context.Context, teamID int64, code string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE teams SET invite_code = ? WHERE team_id = ?`, code, teamID)
	return translateErr(err)
}

// ── Memberships ──

func (s *Store) CreateMembership(ctx context.Context, m *models.Membership) error {
	now := time.Now().UTC().Unix()
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO memberships (team_id, user_id, role, joined_at) VALUES (?, ?, ?, ?)`,
		m.TeamID, m.UserID, m.Role, now,
	)
	if err != nil {
		return translateErr(err)
	}
	m.ID, err = result.LastInsertId()
	m.JoinedAt = now
	return err
}

const membershipColumns = `membership_id, team_id, user_id, role, joined_at`

func scanMembership(row *sql.Row) (*models.Membership, error) {
	var m models.Membership
	err := row.Scan(&m.ID, &m.TeamID, &m.UserID, &m.Role, &m.JoinedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *Store) MembershipByUser(ctx context.Context, userID int64) (*models.Membership, error) {
	return scanMembership(s.db.QueryRowContext(ctx,
		`SELECT `+membershipColumns+` FROM memberships WHERE user_id = ?`, userID))
}

func (s *Store) Membership(ctx context.Context, teamID, userID int64) (*models.Membership, error) {
	return scanMembership(s.db.QueryRowContext(ctx,
		`SELECT `+membershipColumns+` FROM memberships WHERE team_id = ? AND user_id = ?`,
		teamID, userID))
}

func (s *Store) MembersOf(ctx context.Context, teamID int64) ([]models.Membership, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+membershipColumns+` FROM memberships WHERE team_id = ? ORDER BY membership_id ASC`,
		teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []models.Membership
	for rows.Next() {
		var m models.Membership
		if err := rows.Scan(&m.ID, &m.TeamID, &m.UserID, &m.Role, &m.JoinedAt); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (s *Store) MemberInfos(ctx context.Context, teamID int64) ([]models.TeamMemberInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT m.user_id, u.username, COALESCE(u.full_name, ''), m.role, m.joined_at, u.xp
		FROM memberships m
		JOIN users u ON u.user_id = m.user_id
		WHERE m.team_id = ?
		ORDER BY m.membership_id ASC`,
		teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var infos []models.TeamMemberInfo
	for rows.Next() {
		var info models.TeamMemberInfo
		if err := rows.Scan(&info.UserID, &info.Username, &info.FullName, &info.Role, &info.JoinedAt, &info.XP); err != nil {
			return nil, err
		}
		infos = append(infos, info)
	}
	return infos, rows.Err()
}

func (s *Store) DeleteMembership(ctx context.Context, membershipID int64) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM memberships WHERE membership_id = ?`, membershipID)
	return err
}

func (s *Store) RemoveMembershipAndTeam(ctx context.Context, membershipID, teamID int64) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM memberships WHERE membership_id = ?`, membershipID); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `DELETE FROM teams WHERE team_id = ?`, teamID)
		return err
	})
}

func (s *Store) PromoteAndRemove(ctx context.Context, promoteID, removeID int64) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`UPDATE memberships SET role = ? WHERE membership_id = ?`,
			models.RoleLeader, promoteID); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx,
			`DELETE FROM memberships WHERE membership_id = ?`, removeID)
		return err
	})
}

func (s *Store) SwapRoles(ctx context.Context, demoteID, promoteID int64) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`UPDATE memberships SET role = ? WHERE membership_id = ?`,
			models.RoleMember, demoteID); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx,
			`UPDATE memberships SET role = ? WHERE membership_id = ?`,
			models.RoleLeader, promoteID)
		return err
	})
}

// ── Join requests ──

func (s *Store) CreateJoinRequest(ctx context.Context, r *models.JoinRequest) error {
	now := time.Now().UTC().Unix()
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO join_requests (team_id, user_id, message, status, pending, created_at)
		 VALUES (?, ?, ?, ?, 1, ?)`,
		r.TeamID, r.UserID, r.Message, models.StatusPending, now,
	)
	if err != nil {
		return translateErr(err)
	}
	r.ID, err = result.LastInsertId()
	r.Status = models.StatusPending
	r.CreatedAt = now
	return err
}

func (s *Store) JoinRequestByID(ctx context.Context, id int64) (*models.JoinRequest, error) {
	var r models.JoinRequest
	err := s.db.QueryRowContext(ctx,
		`SELECT request_id, team_id, user_id, COALESCE(message, ''), status, created_at
		 FROM join_requests WHERE request_id = ?`, id).
		Scan(&r.ID, &r.TeamID, &r.UserID, &r.Message, &r.Status, &r.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *Store) PendingJoinRequests(ctx context.Context, teamID int64) ([]models.JoinRequest, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT request_id, team_id, user_id, COALESCE(message, ''), status, created_at
		 FROM join_requests WHERE team_id = ? AND status = ? ORDER BY created_at ASC`,
		teamID, models.StatusPending)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []models.JoinRequest
	for rows.Next() {
		var r models.JoinRequest
		if err := rows.Scan(&r.ID, &r.TeamID, &r.UserID, &r.Message, &r.Status, &r.CreatedAt); err != nil {
			return nil, err
		}
		requests = append(requests, r)
	}
	return requests, rows.Err()
}

func (s *Store) ResolveJoinRequest(ctx context.Context, id int64, status string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE join_requests SET status = ?, pending = NULL WHERE request_id = ?`,
		status, id)
	return err
}

func (s *Store) AcceptJoinRequest(ctx context.Context, id int64, m *models.Membership) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`UPDATE join_requests SET status = ?, pending = NULL WHERE request_id = ?`,
			models.StatusAccepted, id); err != nil {
			return err
		}
		now := time.Now().UTC().Unix()
		result, err := tx.ExecContext(ctx,
			`INSERT INTO memberships (team_id, user_id, role, joined_at) VALUES (?, ?, ?, ?)`,
			m.TeamID, m.UserID, m.Role, now,
		)
		if err != nil {
			return err
		}
		m.ID, err = result.LastInsertId()
		m.JoinedAt = now
		return err
	})
}

// ── Invitations ──

func (s *Store) CreateInvitation(ctx context.Context, inv *models.TeamInvitation) error {
	now := time.Now().UTC().Unix()
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO invitations (team_id, inviter_id, invitee_id, message, status, pending, created_at)
		 VALUES (?, ?, ?, ?, ?, 1, ?)`,
		inv.TeamID, inv.InviterID, inv.InviteeID, inv.Message, models.StatusPending, now,
	)
	if err != nil {
		return translateErr(err)
	}
	inv.ID, err = result.LastInsertId()
	inv.Status = models.StatusPending
	inv.CreatedAt = now
	return err
}

func (s *Store) InvitationByID(ctx context.Context, id int64) (*models.TeamInvitation, error) {
	var inv models.TeamInvitation
	err := s.db.QueryRowContext(ctx,
		`SELECT invitation_id, team_id, inviter_id, invitee_id, COALESCE(message, ''), status, created_at
		 FROM invitations WHERE invitation_id = ?`, id).
		Scan(&inv.ID, &inv.TeamID, &inv.InviterID, &inv.InviteeID, &inv.Message, &inv.Status, &inv.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func (s *Store) PendingInvitationsFor(ctx context.Context, inviteeID int64) ([]models.TeamInvitation, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT invitation_id, team_id, inviter_id, invitee_id, COALESCE(message, ''), status, created_at
		 FROM invitations WHERE invitee_id = ? AND status = ? ORDER BY created_at ASC`,
		inviteeID, models.StatusPending)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invitations []models.TeamInvitation
	for rows.Next() {
		var inv models.TeamInvitation
		if err := rows.Scan(&inv.ID, &inv.TeamID, &inv.InviterID, &inv.InviteeID, &inv.Message, &inv.Status, &inv.CreatedAt); err != nil {
			return nil, err
		}
		invitations = append(invitations, inv)
	}
	return invitations, rows.Err()
}

func (s *Store) ResolveInvitation(ctx context.Context, id int64, status string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE invitations SET status = ?, pending = NULL WHERE invitation_id = ?`,
		status, id)
	return err
}

func (s *Store) AcceptInvitation(ctx context.Context, id int64, m *models.Membership) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`UPDATE invitations SET status = ?, pending = NULL WHERE invitation_id = ?`,
			models.StatusAccepted, id); err != nil {
			return err
		}
		now := time.Now().UTC().Unix()
		result, err := tx.ExecContext(ctx,
			`INSERT INTO memberships (team_id, user_id, role, joined_at) VALUES (?, ?, ?, ?)`,
			m.TeamID, m.UserID, m.Role, now,
		)
		if err != nil {
			return err
		}
		m.ID, err = result.LastInsertId()
		m.JoinedAt = now
		return err
	})
}
