package models

import "github.com/golang-jwt/jwt/v5"

// JWTClaims is the access-token payload. SchoolCode is the session school
// context: for a superuser entering another tenant it differs from the home
// school stored on the account.
type JWTClaims struct {
	UserID      string   `json:"user_id"`
	Role        UserRole `json:"role"`
	SchoolCode  string   `json:"school_code"`
	Permissions []string `json:"permissions"`
	jwt.RegisteredClaims
}

// HasPermission reports whether the session carries permission p. Superusers
// pass every permission check unconditionally.
func (c *JWTClaims) HasPermission(p string) bool {
	if c.Role == RoleSuperuser {
		return true
	}
	for _, held := range c.Permissions {
		if held == p {
			return true
		}
	}
	return false
}
