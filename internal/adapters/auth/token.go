package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"calltimes/internal/domain"
)

type jwtClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

type jwtCodec struct {
	secret []byte
}

// NewJWTCodec returns a token codec that signs and verifies HS256 JWTs with
// the given secret. It implements both domain.TokenIssuer and
// domain.TokenVerifier.
func NewJWTCodec(secret string) *jwtCodec {
	return &jwtCodec{secret: []byte(secret)}
}

var (
	_ domain.TokenIssuer   = (*jwtCodec)(nil)
	_ domain.TokenVerifier = (*jwtCodec)(nil)
)

func (c *jwtCodec) Issue(identityID, email string, expiry time.Duration) (string, error) {
	now := time.Now()
	claims := jwtClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identityID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		},
		Email: email,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// Verify parses and validates the token and returns the identity id it was
// issued for.
func (c *jwtCodec) Verify(tokenString string) (string, error) {
	var claims jwtClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return c.secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid || claims.Subject == "" {
		return "", fmt.Errorf("invalid token")
	}
	return claims.Subject, nil
}
