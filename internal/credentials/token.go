package credentials

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenExpired reports whether tokenString is a JWT whose exp claim has
// passed. The signature is NOT verified here: the client only needs to know
// whether a refresh is due before spending a round trip; the backend remains
// the authority on validity. Tokens that do not parse as JWTs, or that carry
// no exp claim, are treated as non-expiring and the backend's 401 handling
// takes over.
func TokenExpired(tokenString string, now time.Time) bool {
	token, _, err := jwt.NewParser().ParseUnverified(tokenString, jwt.MapClaims{})
	if err != nil {
		return false
	}

	exp, err := token.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(now)
}
