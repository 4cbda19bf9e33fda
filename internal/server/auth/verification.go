package auth

import (
	"time"

	"github.com/dmitrijs2005/giveaway/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// VerificationClaims is the payload of the entry verification cookie:
// {code, eventId, timestamp}. Timestamp is the issue time in epoch
// milliseconds. There is no exp claim; freshness is checked by the caller
// against its own clock.
type VerificationClaims struct {
	jwt.RegisteredClaims
	Code      string `json:"code"`
	EventID   string `json:"eventId"`
	Timestamp int64  `json:"timestamp"`
}

// IssuedAt converts Timestamp back to a time.
func (c *VerificationClaims) IssuedAt() time.Time {
	return time.UnixMilli(c.Timestamp)
}

func IssueVerificationToken(code, eventID string, issuedAt time.Time, secretKey []byte) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, VerificationClaims{
		Code:      code,
		EventID:   eventID,
		Timestamp: issuedAt.UnixMilli(),
	})
	return token.SignedString(secretKey)
}

// ParseVerificationToken checks the signature and shape of a verification
// token. Any failure is reported as common.ErrInvalidToken.
func ParseVerificationToken(tokenString string, secretKey []byte) (*VerificationClaims, error) {
	claims := &VerificationClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return secretKey, nil
	}, validMethods)
	if err != nil || !token.Valid {
		return nil, common.ErrInvalidToken
	}
	if claims.Code == "" || claims.EventID == "" || claims.Timestamp <= 0 {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}
