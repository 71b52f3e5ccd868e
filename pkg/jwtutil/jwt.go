package jwtutil

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// ErrInvalidToken is returned for every verification failure. Expired,
// tampered and malformed tokens are deliberately indistinguishable to the
// caller; the middleware logs the underlying cause separately.
var ErrInvalidToken = errors.New("invalid token")

// JWTConfig holds JWT configuration
type JWTConfig struct {
	SigningKey      string
	ExpirationHours int
}

// SessionClaims represents the JWT claims carried by a session token
type SessionClaims struct {
	Username   string `json:"username"`
	UserID     uint   `json:"user_id"`
	Role       string `json:"role"`
	BusinessID *uint  `json:"business_id,omitempty"`
	jwt.RegisteredClaims
}

// JWTUtil signs and verifies session tokens
type JWTUtil struct {
	config *JWTConfig
}

// NewJWTUtil creates a new JWT utility with the given configuration
func NewJWTUtil(config *JWTConfig) *JWTUtil {
	return &JWTUtil{
		config: config,
	}
}

// TTL returns the configured token lifetime
func (j *JWTUtil) TTL() time.Duration {
	return time.Duration(j.config.ExpirationHours) * time.Hour
}

// Issue creates a signed session token for the given identity. There is one
// canonical TTL for every token regardless of how it is carried.
func (j *JWTUtil) Issue(username string, userID uint, role string, businessID *uint) (string, error) {
	if j.config == nil {
		return "", errors.New("JWT configuration not provided")
	}

	now := time.Now()
	claims := SessionClaims{
		Username:   username,
		UserID:     userID,
		Role:       role,
		BusinessID: businessID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			ExpiresAt: jwt.NewNumericDate(now.Add(j.TTL())),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(j.config.SigningKey))
}

// Verify validates a session token and returns its claims. The verification
// logic is carrier-independent; callers extract the raw string from the
// Authorization header or the session cookie before calling this.
func (j *JWTUtil) Verify(tokenString string) (*SessionClaims, error) {
	if j.config == nil {
		return nil, errors.New("JWT configuration not provided")
	}

	token, err := jwt.ParseWithClaims(
		tokenString,
		&SessionClaims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(j.config.SigningKey), nil
		},
	)
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Username == "" || claims.Role == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
