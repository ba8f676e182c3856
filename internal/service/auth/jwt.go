package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type claims struct {
	UserId string `json:"uid"`
	jwt.RegisteredClaims
}

func (s service) generateJWT(userId string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &claims{
		UserId: userId,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	})

	return token.SignedString(s.secret)
}

// ParseToken validates a bearer token and returns the user id it carries.
// Both the http middleware and the websocket handshake go through here.
func (s service) ParseToken(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &claims{}, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		return "", ErrInvalidToken
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid || c.UserId == "" {
		return "", ErrInvalidToken
	}

	return c.UserId, nil
}
