// Package model defines the records persisted by the mood art service.
package model

import "time"

// DefaultAvatar is assigned when a user signs up without choosing a mood.
const DefaultAvatar = "default_avatar"

// User is a registered account.
//
// Email is stored trimmed and lower-cased so the UNIQUE constraint in the
// store matches addresses case-insensitively. PasswordHash is a bcrypt hash
// and is never serialised.
type User struct {
	ID           string    `json:"id"        db:"id"`
	Email        string    `json:"email"     db:"email"`
	PasswordHash string    `json:"-"         db:"password_hash"`
	Avatar       string    `json:"avatar"    db:"avatar"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}
