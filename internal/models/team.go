package models

// Membership roles. Each team with members has exactly one leader.
const (
	RoleLeader = "leader"
	RoleMember = "member"
)

// Join request / invitation statuses.
const (
	StatusPending  = "pending"
	StatusAccepted = "accepted"
	StatusRejected = "rejected"
	StatusDeclined = "declined"
)

// Team represents a team entity. A team with zero members does not exist:
// it is deleted when the last member leaves.
type Team struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Theme      string `json:"theme,omitempty"`
	InviteCode string `json:"invite_code"`
	CreatedAt  int64  `json:"created_at"`
}

// Membership binds one user to one team with a role. A user id appears in
// at most one membership row system-wide.
type Membership struct {
	ID       int64  `json:"id"`
	TeamID   int64  `json:"team_id"`
	UserID   int64  `json:"user_id"`
	Role     string `json:"role"`
	JoinedAt int64  `json:"joined_at"`
}

// JoinRequest is a non-member asking to join a team, resolved by the leader.
type JoinRequest struct {
	ID        int64  `json:"id"`
	TeamID    int64  `json:"team_id"`
	UserID    int64  `json:"user_id"`
	Message   string `json:"message,omitempty"`
	Status    string `json:"status"`
	CreatedAt int64  `json:"created_at"`
}

// TeamInvitation is a leader inviting a user, resolved by the invitee.
type TeamInvitation struct {
	ID        int64  `json:"id"`
	TeamID    int64  `json:"team_id"`
	InviterID int64  `json:"inviter_id"`
	InviteeID int64  `json:"invitee_id"`
	Message   string `json:"message,omitempty"`
	Status    string `json:"status"`
	CreatedAt int64  `json:"created_at"`
}

// TeamMemberInfo is a membership joined with user display fields.
type TeamMemberInfo struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	FullName string `json:"full_name,omitempty"`
	Role     string `json:"role"`
	JoinedAt int64  `json:"joined_at"`
	XP       int    `json:"xp"`
}

// TeamDetail is a team with its member list, as returned by read endpoints.
type TeamDetail struct {
	Team
	MemberCount int              `json:"member_count"`
	MyRole      string           `json:"my_role,omitempty"`
	Members     []TeamMemberInfo `json:"members"`
}
