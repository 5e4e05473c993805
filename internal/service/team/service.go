// Package teamservice enforces the membership lifecycle invariants: a user
// belongs to at most one team, each non-empty team has exactly one leader,
// and pending join requests / invitations never race into double
// memberships. Precondition checks run before any mutation; the store's
// unique indexes backstop check-then-act races, and those conflicts are
// translated back into the same typed errors.
package teamservice

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"

	"github.com/askar/teamboard/internal/logger"
	"github.com/askar/teamboard/internal/models"
	"github.com/askar/teamboard/internal/store"
)

const (
	inviteCodeLen         = 6
	inviteCodeFallbackLen = 8
	inviteCodeAttempts    = 20
)

type Service struct {
	store store.TeamStore
	users store.UserStore
	log   *logger.Logger
}

func New(teamStore store.TeamStore, userStore store.UserStore, log *logger.Logger) *Service {
	return &Service{
		store: teamStore,
		users: userStore,
		log:   log,
	}
}

// randomCode returns n uppercase hex characters from crypto/rand.
func randomCode(n int) string {
	buf := make([]byte, (n+1)/2)
	if _, err := rand.Read(buf); err != nil {
		panic(err) // crypto/rand failing means the process is unusable
	}
	return strings.ToUpper(hex.EncodeToString(buf))[:n]
}

// newInviteCode generates a fresh unique invite code, retrying on collision
// a bounded number of times before falling back to a longer code.
func (s *Service) newInviteCode(ctx context.Context) (string, error) {
	for i := 0; i < inviteCodeAttempts; i++ {
		code := randomCode(inviteCodeLen)
		_, err := s.store.TeamByInviteCode(ctx, code)
		if errors.Is(err, store.ErrNotFound) {
			return code, nil
		}
		if err != nil {
			return "", err
		}
	}
	return randomCode(inviteCodeFallbackLen), nil
}

// CreateTeam creates a team with the caller as leader and a fresh invite
// code. Fails with ErrAlreadyTeamed or ErrNameTaken.
func (s *Service) CreateTeam(ctx context.Context, userID int64, name, theme string) (*models.Team, error) {
	if _, err := s.store.MembershipByUser(ctx, userID); err == nil {
		return nil, ErrAlreadyTeamed
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	if _, err := s.store.TeamByName(ctx, name); err == nil {
		return nil, ErrNameTaken
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	code, err := s.newInviteCode(ctx)
	if err != nil {
		return nil, err
	}

	team := &models.Team{Name: name, Theme: theme, InviteCode: code}
	if err := s.store.CreateTeamWithLeader(ctx, team, userID); err != nil {
		return nil, s.translate(err)
	}

	s.log.Info("team created", "team_id", team.ID, "user_id", userID)
	return team, nil
}

// JoinByCode joins the caller as a member of the team matching the code.
// Codes are implicit approval; no leader resolves anything.
func (s *Service) JoinByCode(ctx context.Context, userID int64, code string) (*models.Team, error) {
	if _, err := s.store.MembershipByUser(ctx, userID); err == nil {
		return nil, ErrAlreadyTeamed
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	team, err := s.store.TeamByInviteCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrInvalidCode
	}
	if err != nil {
		return nil, err
	}

	m := &models.Membership{TeamID: team.ID, UserID: userID, Role: models.RoleMember}
	if err := s.store.CreateMembership(ctx, m); err != nil {
		return nil, s.translate(err)
	}

	s.log.Info("joined team by code", "team_id", team.ID, "user_id", userID)
	return team, nil
}

// RequestToJoin files a pending join request from a non-member.
func (s *Service) RequestToJoin(ctx context.Context, userID, teamID int64, message string) (*models.JoinRequest, error) {
	if _, err := s.store.MembershipByUser(ctx, userID); err == nil {
		return nil, ErrAlreadyTeamed
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	if _, err := s.store.TeamByID(ctx, teamID); err != nil {
		return nil, s.translate(err)
	}

	r := &models.JoinRequest{TeamID: teamID, UserID: userID, Message: message}
	if err := s.store.CreateJoinRequest(ctx, r); err != nil {
		return nil, s.translate(err)
	}
	return r, nil
}

// RespondToJoinRequest resolves a pending request. Only the team's current
// leader may resolve it. On accept, the requester must still be teamless:
// requests go stale, and a stale accept resolves the request as rejected
// and reports ErrAlreadyTeamed instead of silently succeeding.
func (s *Service) RespondToJoinRequest(ctx context.Context, leaderID, requestID int64, accept bool) (string, error) {
	r, err := s.store.JoinRequestByID(ctx, requestID)
	if err != nil {
		return "", s.translate(err)
	}
	if err := s.requireLeader(ctx, leaderID, r.TeamID); err != nil {
		return "", err
	}
	if r.Status != models.StatusPending {
		return "", ErrAlreadyResolved
	}

	if !accept {
		if err := s.store.ResolveJoinRequest(ctx, requestID, models.StatusRejected); err != nil {
			return "", err
		}
		return models.StatusRejected, nil
	}

	// Re-validate at resolution time: the requester may have joined another
	// team since filing the request.
	if _, err := s.store.MembershipByUser(ctx, r.UserID); err == nil {
		if err := s.store.ResolveJoinRequest(ctx, requestID, models.StatusRejected); err != nil {
			return "", err
		}
		return models.StatusRejected, ErrAlreadyTeamed
	} else if !errors.Is(err, store.ErrNotFound) {
		return "", err
	}

	m := &models.Membership{TeamID: r.TeamID, UserID: r.UserID, Role: models.RoleMember}
	if err := s.store.AcceptJoinRequest(ctx, requestID, m); err != nil {
		// Lost the race against a concurrent join: the unique index caught it.
		if errors.Is(err, store.ErrAlreadyTeamed) {
			if rerr := s.store.ResolveJoinRequest(ctx, requestID, models.StatusRejected); rerr != nil {
				return "", rerr
			}
			return models.StatusRejected, ErrAlreadyTeamed
		}
		return "", err
	}

	s.log.Info("join request accepted", "request_id", requestID, "team_id", r.TeamID, "user_id", r.UserID)
	return models.StatusAccepted, nil
}

// Invite files a pending invitation from the leader to a user by username.
func (s *Service) Invite(ctx context.Context, leaderID, teamID int64, username, message string) (*models.TeamInvitation, error) {
	if err := s.requireLeader(ctx, leaderID, teamID); err != nil {
		return nil, err
	}

	invitee, err := s.users.UserByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if invitee.UserID == leaderID {
		return nil, ErrSelfInvite
	}
	if _, err := s.store.Membership(ctx, teamID, invitee.UserID); err == nil {
		return nil, ErrAlreadyMember
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	inv := &models.TeamInvitation{
		TeamID:    teamID,
		InviterID: leaderID,
		InviteeID: invitee.UserID,
		Message:   message,
	}
	if err := s.store.CreateInvitation(ctx, inv); err != nil {
		return nil, s.translate(err)
	}
	return inv, nil
}

// RespondToInvitation resolves a pending invitation. Only the invitee may
// resolve it, and their membership is re-validated at resolution time.
func (s *Service) RespondToInvitation(ctx context.Context, inviteeID, invitationID int64, accept bool) (string, error) {
	inv, err := s.store.InvitationByID(ctx, invitationID)
	if err != nil {
		return "", s.translate(err)
	}
	if inv.InviteeID != inviteeID {
		return "", ErrNotFound
	}
	if inv.Status != models.StatusPending {
		return "", ErrAlreadyResolved
	}

	if !accept {
		if err := s.store.ResolveInvitation(ctx, invitationID, models.StatusDeclined); err != nil {
			return "", err
		}
		return models.StatusDeclined, nil
	}

	if _, err := s.store.MembershipByUser(ctx, inviteeID); err == nil {
		if err := s.store.ResolveInvitation(ctx, invitationID, models.StatusDeclined); err != nil {
			return "", err
		}
		return models.StatusDeclined, ErrAlreadyTeamed
	} else if !errors.Is(err, store.ErrNotFound) {
		return "", err
	}

	m := &models.Membership{TeamID: inv.TeamID, UserID: inviteeID, Role: models.RoleMember}
	if err := s.store.AcceptInvitation(ctx, invitationID, m); err != nil {
		if errors.Is(err, store.ErrAlreadyTeamed) {
			if rerr := s.store.ResolveInvitation(ctx, invitationID, models.StatusDeclined); rerr != nil {
				return "", rerr
			}
			return models.StatusDeclined, ErrAlreadyTeamed
		}
		return "", err
	}

	s.log.Info("invitation accepted", "invitation_id", invitationID, "team_id", inv.TeamID, "user_id", inviteeID)
	return models.StatusAccepted, nil
}

// Leave removes the caller from the team. The sole member leaving disbands
// the team. A leader leaving with others present promotes the earliest
// remaining joiner (lowest membership id) before removal, so the team is
// never leaderless.
func (s *Service) Leave(ctx context.Context, userID, teamID int64) error {
	m, err := s.store.Membership(ctx, teamID, userID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotAMember
	}
	if err != nil {
		return err
	}

	members, err := s.store.MembersOf(ctx, teamID)
	if err != nil {
		return err
	}
	var remaining []models.Membership
	for _, other := range members {
		if other.ID != m.ID {
			remaining = append(remaining, other)
		}
	}

	switch {
	case len(remaining) == 0:
		if err := s.store.RemoveMembershipAndTeam(ctx, m.ID, teamID); err != nil {
			return err
		}
		s.log.Info("team disbanded", "team_id", teamID, "user_id", userID)
	case m.Role == models.RoleLeader:
		// MembersOf is ordered by membership id, so remaining[0] is the
		// earliest joiner.
		if err := s.store.PromoteAndRemove(ctx, remaining[0].ID, m.ID); err != nil {
			return err
		}
		s.log.Info("leadership promoted on leave",
			"team_id", teamID, "left_user", userID, "new_leader", remaining[0].UserID)
	default:
		if err := s.store.DeleteMembership(ctx, m.ID); err != nil {
			return err
		}
	}
	return nil
}

// TransferLeadership swaps the leader and member roles atomically.
func (s *Service) TransferLeadership(ctx context.Context, leaderID, teamID, targetUserID int64) error {
	leader, err := s.store.Membership(ctx, teamID, leaderID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotLeader
	}
	if err != nil {
		return err
	}
	if leader.Role != models.RoleLeader {
		return ErrNotLeader
	}

	target, err := s.store.Membership(ctx, teamID, targetUserID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrTargetNotMember
	}
	if err != nil {
		return err
	}

	if err := s.store.SwapRoles(ctx, leader.ID, target.ID); err != nil {
		return err
	}
	s.log.Info("leadership transferred", "team_id", teamID, "from", leaderID, "to", targetUserID)
	return nil
}

// Kick removes another member from the team. Leaders leave via Leave, not
// by kicking themselves.
func (s *Service) Kick(ctx context.Context, leaderID, teamID, targetUserID int64) error {
	if err := s.requireLeader(ctx, leaderID, teamID); err != nil {
		return err
	}
	if targetUserID == leaderID {
		return ErrCannotKickSelf
	}

	target, err := s.store.Membership(ctx, teamID, targetUserID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrTargetNotMember
	}
	if err != nil {
		return err
	}

	if err := s.store.DeleteMembership(ctx, target.ID); err != nil {
		return err
	}
	s.log.Info("member kicked", "team_id", teamID, "by", leaderID, "user_id", targetUserID)
	return nil
}

// UpdateSettings renames the team and/or changes its theme (leader only).
func (s *Service) UpdateSettings(ctx context.Context, leaderID, teamID int64, name, theme *string) (*models.Team, error) {
	if err := s.requireLeader(ctx, leaderID, teamID); err != nil {
		return nil, err
	}
	team, err := s.store.TeamByID(ctx, teamID)
	if err != nil {
		return nil, s.translate(err)
	}

	if name != nil && *name != team.Name {
		if _, err := s.store.TeamByName(ctx, *name); err == nil {
			return nil, ErrNameTaken
		} else if !errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
		team.Name = *name
	}
	if theme != nil {
		team.Theme = *theme
	}

	if err := s.store.UpdateTeam(ctx, team); err != nil {
		return nil, s.translate(err)
	}
	return team, nil
}

// RegenerateInviteCode replaces the team's invite code (leader only).
func (s *Service) RegenerateInviteCode(ctx context.Context, leaderID, teamID int64) (string, error) {
	if err := s.requireLeader(ctx, leaderID, teamID); err != nil {
		return "", err
	}
	code, err := s.newInviteCode(ctx)
	if err != nil {
		return "", err
	}
	if err := s.store.SetInviteCode(ctx, teamID, code); err != nil {
		return "", s.translate(err)
	}
	return code, nil
}

// ── Read surface ──

// ListTeams lists all teams with member details, optionally filtered by a
// name substring.
func (s *Service) ListTeams(ctx context.Context, query string, viewerID int64) ([]models.TeamDetail, error) {
	teams, err := s.store.ListTeams(ctx, query)
	if err != nil {
		return nil, err
	}
	details := make([]models.TeamDetail, 0, len(teams))
	for i := range teams {
		d, err := s.teamDetail(ctx, &teams[i], viewerID)
		if err != nil {
			return nil, err
		}
		details = append(details, *d)
	}
	return details, nil
}

// GetTeam returns one team with its member list.
func (s *Service) GetTeam(ctx context.Context, teamID, viewerID int64) (*models.TeamDetail, error) {
	team, err := s.store.TeamByID(ctx, teamID)
	if err != nil {
		return nil, s.translate(err)
	}
	return s.teamDetail(ctx, team, viewerID)
}

// MyTeam returns the caller's team, or nil if teamless.
func (s *Service) MyTeam(ctx context.Context, userID int64) (*models.TeamDetail, error) {
	m, err := s.store.MembershipByUser(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s.GetTeam(ctx, m.TeamID, userID)
}

// MyInvitations returns pending invitations addressed to the caller.
func (s *Service) MyInvitations(ctx context.Context, userID int64) ([]models.TeamInvitation, error) {
	return s.store.PendingInvitationsFor(ctx, userID)
}

// JoinRequests returns pending requests for a team (leader only).
func (s *Service) JoinRequests(ctx context.Context, leaderID, teamID int64) ([]models.JoinRequest, error) {
	if err := s.requireLeader(ctx, leaderID, teamID); err != nil {
		return nil, err
	}
	return s.store.PendingJoinRequests(ctx, teamID)
}

func (s *Service) teamDetail(ctx context.Context, team *models.Team, viewerID int64) (*models.TeamDetail, error) {
	infos, err := s.store.MemberInfos(ctx, team.ID)
	if err != nil {
		return nil, err
	}
	d := &models.TeamDetail{
		Team:        *team,
		MemberCount: len(infos),
		Members:     infos,
	}
	for _, info := range infos {
		if info.UserID == viewerID {
			d.MyRole = info.Role
		}
	}
	return d, nil
}

// requireLeader fails with ErrNotLeader unless userID holds the leader
// membership of teamID.
func (s *Service) requireLeader(ctx context.Context, userID, teamID int64) error {
	m, err := s.store.Membership(ctx, teamID, userID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotLeader
	}
	if err != nil {
		return err
	}
	if m.Role != models.RoleLeader {
		return ErrNotLeader
	}
	return nil
}

// translate maps store errors onto the service taxonomy.
func (s *Service) translate(err error) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, store.ErrNameTaken):
		return ErrNameTaken
	case errors.Is(err, store.ErrAlreadyTeamed):
		return ErrAlreadyTeamed
	case errors.Is(err, store.ErrDuplicatePending):
		return ErrDuplicatePending
	default:
		return err
	}
}
