// Package auth mints and parses the HS256 tokens used by the server: admin
// access tokens and entry verification tokens.
package auth

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/giveaway/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

var validMethods = jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})

// Claims carries the admin identity of an access token.
type Claims struct {
	jwt.RegisteredClaims
	AdminID string `json:"adminId"`
}

func GenerateToken(adminID string, secretKey []byte, validityDuration time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validityDuration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		AdminID: adminID,
	})

	return token.SignedString(secretKey)
}

// GetAdminIDFromToken validates an access token. An expired token yields
// common.ErrTokenExpired, any other failure common.ErrInvalidToken.
func GetAdminIDFromToken(tokenString string, secretKey []byte) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return secretKey, nil
	}, validMethods)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", common.ErrTokenExpired
		}
		return "", common.ErrInvalidToken
	}

	if !token.Valid || claims.AdminID == "" {
		return "", common.ErrInvalidToken
	}

	return claims.AdminID, nil
}
