package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/nirmitee/clinic-api/internal/domain"
)

// UserClaims is the session token payload: {id, role, exp}.
type UserClaims struct {
	UID  string      `json:"id"`
	Role domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// MakeUserToken mints an HS512-signed session token. The caller persists the
// returned string verbatim on the user record; that overwrite is what makes
// it the single valid session.
func MakeUserToken(secret, uid string, role domain.Role, ttl time.Duration) (string, error) {
	c := UserClaims{
		UID:  uid,
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			Subject:   uid,
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS512, c)
	return t.SignedString([]byte(secret))
}

// ParseUserToken verifies signature, algorithm and expiry.
func ParseUserToken(secret, token string) (*UserClaims, error) {
	t, err := jwt.ParseWithClaims(token, &UserClaims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{"HS512"}))
	if err != nil {
		return nil, err
	}
	c, ok := t.Claims.(*UserClaims)
	if !ok || !t.Valid {
		return nil, errors.New("invalid token")
	}
	return c, nil
}
