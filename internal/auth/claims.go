package auth

import (
	"time"

	"github.com/ecomindsapp/ecominds-server/internal/domain"
)

// AccessClaims represents the claims stored in a PASETO access token.
// These are encrypted in v4.local tokens, so they're not readable without the key.
type AccessClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	Grade  string `json:"grade,omitempty"`
	IsRoot bool   `json:"is_root"`

	// Standard PASETO claims
	Issuer     string    `json:"iss"`
	Subject    string    `json:"sub"`
	Audience   string    `json:"aud"`
	Expiration time.Time `json:"exp"`
	NotBefore  time.Time `json:"nbf"`
	IssuedAt   time.Time `json:"iat"`
	TokenID    string    `json:"jti"`
}

// IsAdmin reports whether the token belongs to an admin user.
func (c *AccessClaims) IsAdmin() bool {
	return c.IsRoot || c.Role == string(domain.RoleAdmin)
}

// CanReview reports whether the token holder may review mission proofs.
func (c *AccessClaims) CanReview() bool {
	return c.IsAdmin() || c.Role == string(domain.RoleTeacher)
}
