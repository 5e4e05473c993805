// Package store defines the persistence contracts consumed by the services.
// Uniqueness invariants (one team per user, unique team names and invite
// codes, one pending request/invitation per pair) are enforced by unique
// indexes in the MySQL implementation, not just by application checks, so
// two concurrent writers cannot both succeed in violating one. Constraint
// violations surface as the typed errors below.
package store

import (
	"context"
	"errors"

	"github.com/askar/teamboard/internal/models"
)

// Typed storage errors. Services translate these into their own taxonomy.
var (
	ErrNotFound         = errors.New("store: not found")
	ErrNameTaken        = errors.New("store: team name taken")
	ErrInviteCodeTaken  = errors.New("store: invite code taken")
	ErrAlreadyTeamed    = errors.New("store: user already has a membership")
	ErrDuplicatePending = errors.New("store: pending request already exists")
	ErrUserExists       = errors.New("store: username or email already registered")
)

// TeamStore is the membership store: teams, memberships, join requests and
// invitations. Methods that touch more than one row run in a single
// transaction.
type TeamStore interface {
	// CreateTeamWithLeader inserts the team and its leader membership
	// atomically, filling team.ID on success.
	CreateTeamWithLeader(ctx context.Context, team *models.Team, leaderID int64) error
	TeamByID(ctx context.Context, id int64) (*models.Team, error)
	TeamByName(ctx context.Context, name string) (*models.Team, error)
	TeamByInviteCode(ctx context.Context, code string) (*models.Team, error)
	ListTeams(ctx context.Context, query string) ([]models.Team, error)
	UpdateTeam(ctx context.Context, team *models.Team) error
	SetInviteCode(ctx context.Context, teamID int64, code string) error

	CreateMembership(ctx context.Context, m *models.Membership) error
	MembershipByUser(ctx context.Context, userID int64) (*models.Membership, error)
	Membership(ctx context.Context, teamID, userID int64) (*models.Membership, error)
	// MembersOf returns memberships ordered by membership id ascending,
	// i.e. join order. Leadership promotion depends on this ordering.
	MembersOf(ctx context.Context, teamID int64) ([]models.Membership, error)
	MemberInfos(ctx context.Context, teamID int64) ([]models.TeamMemberInfo, error)
	DeleteMembership(ctx context.Context, membershipID int64) error
	// RemoveMembershipAndTeam deletes the last membership and its team in
	// one transaction (disband-on-empty).
	RemoveMembershipAndTeam(ctx context.Context, membershipID, teamID int64) error
	// PromoteAndRemove promotes one membership to leader and deletes
	// another in one transaction, so the team never observes zero leaders.
	PromoteAndRemove(ctx context.Context, promoteID, removeID int64) error
	// SwapRoles demotes one membership and promotes the other atomically.
	SwapRoles(ctx context.Context, demoteID, promoteID int64) error

	CreateJoinRequest(ctx context.Context, r *models.JoinRequest) error
	JoinRequestByID(ctx context.Context, id int64) (*models.JoinRequest, error)
	PendingJoinRequests(ctx context.Context, teamID int64) ([]models.JoinRequest, error)
	ResolveJoinRequest(ctx context.Context, id int64, status string) error
	// AcceptJoinRequest marks the request accepted and inserts the
	// membership in one transaction. The memberships unique index is the
	// backstop against the requester having joined elsewhere in between.
	AcceptJoinRequest(ctx context.Context, id int64, m *models.Membership) error

	CreateInvitation(ctx context.Context, inv *models.TeamInvitation) error
	InvitationByID(ctx context.Context, id int64) (*models.TeamInvitation, error)
	PendingInvitationsFor(ctx context.Context, inviteeID int64) ([]models.TeamInvitation, error)
	ResolveInvitation(ctx context.Context, id int64, status string) error
	AcceptInvitation(ctx context.Context, id int64, m *models.Membership) error
}

// UserStore holds user accounts.
type UserStore interface {
	CreateUser(ctx context.Context, u *models.User) error
	UserByID(ctx context.Context, id int64) (*models.User, error)
	UserByUsername(ctx context.Context, username string) (*models.User, error)
	UserByEmail(ctx context.Context, email string) (*models.User, error)
}

// TaskFilter narrows task listings.
type TaskFilter struct {
	TeamID *int64
	UserID *int64
	Status string
}

// TaskStore holds board items.
type TaskStore interface {
	CreateTask(ctx context.Context, t *models.Task) error
	TaskByID(ctx context.Context, id int64) (*models.Task, error)
	ListTasks(ctx context.Context, f TaskFilter) ([]models.Task, error)
	UpdateTask(ctx context.Context, t *models.Task) error
	UpdateTaskStatus(ctx context.Context, id int64, status string) error
	DeleteTask(ctx context.Context, id int64) error
}

// RewardLedger accepts XP grants. The board service depends on this
// capability, not on a concrete ledger.
type RewardLedger interface {
	Grant(ctx context.Context, userID int64, amount int, reason string) error
}
