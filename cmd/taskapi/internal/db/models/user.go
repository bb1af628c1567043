package models

import (
	"time"

	"github.com/uptrace/bun"
)

// User is an account that bearer tokens refer to by Username.
// PasswordHash is only set for users that log in through /auth/login.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID           string     `bun:"id,pk,type:uuid"`
	Username     string     `bun:"username,notnull,unique"`
	Email        string     `bun:"email"`
	PasswordHash *string    `bun:"password_hash"` // bcrypt
	CreatedAt    time.Time  `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt    time.Time  `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
	DisabledAt   *time.Time `bun:"disabled_at"`
}

// IsDisabled reports whether the account has been switched off.
func (u *User) IsDisabled() bool {
	return u != nil && u.DisabledAt != nil
}
