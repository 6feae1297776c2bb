package model

import "time"

// User represents an application user record as stored in the
// `users` table. The username doubles as the login e-mail and is
// unique. PasswordHash is never serialized; handlers that need to
// expose a user build a UserSummary instead.
//
// Fields:
//
//	ID           – primary key identifier of the user.
//	FirstName    – given name, at least three characters.
//	LastName     – family name, at least three characters.
//	Username     – unique e-mail shaped login.
//	PasswordHash – bcrypt hashed password.
type User struct {
	ID           uint64 `json:"id"`         // users.id
	FirstName    string `json:"first_name"` // users.first_name
	LastName     string `json:"last_name"`  // users.last_name
	Username     string `json:"username"`   // users.username
	PasswordHash string `json:"-"`          // users.password
}

// Summary strips the credential from a user.
func (u User) Summary() UserSummary {
	return UserSummary{ID: u.ID, FirstName: u.FirstName, LastName: u.LastName, Username: u.Username}
}

// UserSummary is the public projection of a user embedded in event
// listings and details. It has no password field.
type UserSummary struct {
	ID        uint64 `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Username  string `json:"username"`
}

// RefreshToken models an entry in the `refresh_tokens` table. Only the
// SHA‑256 hash of the token handed to the client is stored.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	UserID    uint64     // refresh_tokens.user_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
}
