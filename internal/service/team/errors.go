package teamservice

import "errors"

// Typed failures returned by lifecycle operations. Every precondition is
// checked and reported before any mutation; storage-level constraint
// conflicts are re-translated into the same set, never surfaced raw.
var (
	ErrAlreadyTeamed    = errors.New("user already belongs to a team")
	ErrNameTaken        = errors.New("team name already taken")
	ErrInvalidCode      = errors.New("invalid invite code")
	ErrNotLeader        = errors.New("only the team leader may do this")
	ErrDuplicatePending = errors.New("a pending request already exists")
	ErrAlreadyResolved  = errors.New("request already resolved")
	ErrNotAMember       = errors.New("user is not a member of this team")
	ErrTargetNotMember  = errors.New("target user is not a member of this team")
	ErrCannotKickSelf   = errors.New("leader cannot kick themselves")
	ErrSelfInvite       = errors.New("cannot invite yourself")
	ErrAlreadyMember    = errors.New("user is already a member of this team")
	ErrNotFound         = errors.New("not found")
)
