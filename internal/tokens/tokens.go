package tokens

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// MintGateToken returns a signed token recording that the holder passed the
// PIN gate. The UI stores it so the operator is not re-prompted on every
// page. This is a convenience marker, not an authentication credential.
func MintGateToken(secret string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("gate token secret not configured")
	}
	now := time.Now()
	claims := jwt.MapClaims{
		"scope": "gate",
		"iat":   now.Unix(),
		"exp":   now.Add(ttl).Unix(),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString([]byte(secret))
}

// VerifyGateToken reports whether the token was minted by us and is unexpired.
func VerifyGateToken(secret, token string) bool {
	if secret == "" || token == "" {
		return false
	}
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	return err == nil && parsed.Valid
}
