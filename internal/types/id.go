// README: Shared identifier type and short-token generation.
package types

import (
	"strings"

	"github.com/google/uuid"
)

type ID string

// NewShortID returns an 8-character hex token taken from a random UUID.
func NewShortID() ID {
	return ID(NewToken()[:8])
}

// NewToken returns a 32-character hex token.
func NewToken() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}
