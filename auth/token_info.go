package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

// TokenExpiry extracts the expiry time from a Minecraft session token.
// Session tokens issued by the platform are JWTs; the signature is not
// verified here — the caller holds the token because the server issued it,
// and the key set is not published for clients. Use the result for
// refresh scheduling only, never for trust decisions.
func TokenExpiry(accessToken string) (time.Time, error) {
	if accessToken == "" {
		return time.Time{}, errors.New("[TokenExpiry] empty access token")
	}

	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(accessToken, claims); err != nil {
		return time.Time{}, errors.Wrap(err, "[TokenExpiry] parse token")
	}

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, errors.Wrap(err, "[TokenExpiry] exp claim")
	}
	if exp == nil {
		return time.Time{}, errors.New("[TokenExpiry] token has no exp claim")
	}
	return exp.Time, nil
}
