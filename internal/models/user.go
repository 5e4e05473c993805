package models

type User struct {
	UserID    int64  `json:"user_id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password,omitempty"`
	FullName  string `json:"full_name,omitempty"`
	XP        int    `json:"xp"`
	CreatedAt int64  `json:"created_at"`
}

// XPLog records a single XP grant.
type XPLog struct {
	ID        int64  `json:"id"`
	UserID    int64  `json:"user_id"`
	Amount    int    `json:"amount"`
	Reason    string `json:"reason"`
	CreatedAt int64  `json:"created_at"`
}
