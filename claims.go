package identity

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenClaims is the payload minted into every bearer token: the subject
// email, the principal id, issuance, and expiry.
type TokenClaims struct {
	jwt.RegisteredClaims
	UID string `json:"uid,omitempty"`
}

// Email returns the subject address the token was minted for.
func (c *TokenClaims) Email() string {
	return c.RegisteredClaims.Subject
}

// PrincipalID parses the uid claim back into the stored principal id.
func (c *TokenClaims) PrincipalID() (uuid.UUID, error) {
	return uuid.Parse(c.UID)
}

// Expires returns the expiration time
func (c *TokenClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// IssuedAt returns the issued at time
func (c *TokenClaims) IssuedAt() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}
