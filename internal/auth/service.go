// Package auth issues and validates the operator tokens that guard the
// /api routes.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const issuer = "lbry-tech"

var ErrNoSecret = errors.New("ops jwt secret is not configured")

type Service struct {
	jwtSecret string
	now       func() time.Time
}

type OpsClaims struct {
	Scope string `json:"scope"`
	jwt.RegisteredClaims
}

// ScopeOps is the only scope the server grants.
const ScopeOps = "ops"

func NewService(secret string) *Service {
	return &Service{
		jwtSecret: secret,
		now:       time.Now,
	}
}

// Issue signs an HS256 token for subject that expires after ttl.
func (s *Service) Issue(subject string, ttl time.Duration) (string, error) {
	if s.jwtSecret == "" {
		return "", ErrNoSecret
	}

	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, OpsClaims{
		Scope: ScopeOps,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})

	return token.SignedString([]byte(s.jwtSecret))
}

// ValidateToken returns the subject of a valid ops token.
func (s *Service) ValidateToken(tokenString string) (string, error) {
	if s.jwtSecret == "" {
		return "", ErrNoSecret
	}

	claims := &OpsClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.jwtSecret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return "", err
	}
	if !token.Valid {
		return "", errors.New("invalid token")
	}
	if claims.Scope != ScopeOps {
		return "", fmt.Errorf("unexpected scope %q", claims.Scope)
	}

	return claims.Subject, nil
}
