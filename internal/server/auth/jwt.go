package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"guestsnap/internal/common"
)

// Claims carries the guest session identity: which guest, at which event.
// A token is only ever valid for the one event it was issued for.
type Claims struct {
	jwt.RegisteredClaims
	GuestID string
	EventID string
}

// GenerateToken issues a signed guest session token.
func GenerateToken(guestID, eventID string, secretKey []byte, validityDuration time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validityDuration)),
		},
		GuestID: guestID,
		EventID: eventID,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ParseToken validates the token and returns its claims. Expired tokens
// map to common.ErrTokenExpired, everything else invalid to
// common.ErrInvalidToken.
func ParseToken(tokenString string, secretKey []byte) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}

	if !token.Valid {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}
