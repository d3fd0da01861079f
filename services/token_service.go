package services

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/hartwell-auto/hartwell-auto-api/config"
)

// Token lifetime for locally issued credentials
const tokenTTL = time.Hour

// Local token verification errors, mapped to HTTP statuses by the auth middleware
var (
	ErrTokenMalformed        = errors.New("token is malformed")
	ErrTokenExpired          = errors.New("token has expired")
	ErrTokenInvalidSignature = errors.New("token signature is invalid")
)

// TokenClaims is the claim set carried by a locally signed token
type TokenClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies locally signed HS256 bearer tokens
type TokenService struct {
	secret []byte
}

// NewTokenService creates a token service signing with the configured secret
func NewTokenService(cfg *config.Config) *TokenService {
	return &TokenService{secret: []byte(cfg.JWTSecret)}
}

// Issue produces a credential for the given subject, valid for exactly one hour
func (s *TokenService) Issue(subjectID uint, role string) (string, error) {
	if len(s.secret) == 0 {
		return "", fmt.Errorf("jwt secret is empty")
	}
	if role != "customer" && role != "mechanic" {
		return "", fmt.Errorf("unknown role %q", role)
	}

	now := time.Now()
	claims := TokenClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(subjectID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify validates a locally signed token and returns the subject id and role
func (s *TokenService) Verify(tokenString string) (uint, string, error) {
	claims := &TokenClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return 0, "", ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return 0, "", ErrTokenInvalidSignature
		default:
			return 0, "", ErrTokenMalformed
		}
	}

	subjectID, err := strconv.ParseUint(claims.Subject, 10, 32)
	if err != nil {
		return 0, "", ErrTokenMalformed
	}
	return uint(subjectID), claims.Role, nil
}
