package storage

import (
	"fmt"
	"time"

	domerrors "github.com/garyellow/calmmate-go/internal/errors"
)

// ErrInvalidCredentials is returned for an unknown email or a wrong password.
var ErrInvalidCredentials = fmt.Errorf("%w: invalid email or password", domerrors.ErrUnauthorized)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 8

// User is a registered account. The password hash never leaves the package.
type User struct {
	Email       string     `json:"email"`
	Name        string     `json:"name"`
	CreatedAt   time.Time  `json:"created_at"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}
