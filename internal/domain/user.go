package domain

// User is an account. Every user owns exactly one Ledger.
type User struct {
	Timestamps
	Email        string `json:"email"`
	Nickname     string `json:"nickname"`
	PasswordHash string `json:"-"`
}

// Profile is what a user sees about themselves.
type Profile struct {
	User    *User          `json:"user"`
	Ledger  *Ledger        `json:"ledger"`
	Unlocks []*BadgeUnlock `json:"badges"`
	Next    int64          `json:"exp_to_next_level"`
}
