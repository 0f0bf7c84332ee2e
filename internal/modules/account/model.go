// README: Account and login-session definitions.
package account

import (
	"time"

	"roadie/internal/types"
)

type Role string

const (
	RoleClient Role = "client"
	RoleDriver Role = "driver"
)

func (r Role) Valid() bool {
	return r == RoleClient || r == RoleDriver
}

type User struct {
	Email        types.ID
	Role         Role
	PasswordHash []byte
	CreatedAt    time.Time
}

// Session is an issued bearer token.
type Session struct {
	Token    string
	UserID   types.ID
	Role     Role
	IssuedAt time.Time
}

// Identity is what the auth middleware attaches to a request.
type Identity struct {
	UserID types.ID
	Role   Role
}
