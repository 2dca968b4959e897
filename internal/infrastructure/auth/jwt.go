// Package auth signs and verifies the bearer token carried on the relay
// hop between intake and materialization.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// RelayIssuer identifies tokens minted by the intake side.
	RelayIssuer = "cipherledger-intake"
	// RelayAudience identifies the materialization endpoint.
	RelayAudience = "cipherledger-materializer"

	// DefaultTokenDuration bounds how long a relay token is accepted.
	DefaultTokenDuration = time.Minute
)

var (
	ErrInvalidToken = errors.New("invalid relay token")
	ErrExpiredToken = errors.New("relay token expired")
)

// RelayClaims are the claims of a relay hop token.
type RelayClaims struct {
	// Legs is the number of records in the relayed batch.
	Legs int `json:"legs"`
	jwt.RegisteredClaims
}

// JWTManager manages relay token creation and validation.
type JWTManager struct {
	secretKey     []byte
	tokenDuration time.Duration
	now           func() time.Time
}

// NewJWTManager creates a new JWT manager. A non-positive duration uses
// DefaultTokenDuration.
func NewJWTManager(secretKey string, tokenDuration time.Duration) *JWTManager {
	if tokenDuration <= 0 {
		tokenDuration = DefaultTokenDuration
	}
	return &JWTManager{
		secretKey:     []byte(secretKey),
		tokenDuration: tokenDuration,
		now:           time.Now,
	}
}

// Generate signs an HS256 token for one relay call.
func (m *JWTManager) Generate(legs int) (string, error) {
	now := m.now()
	claims := RelayClaims{
		Legs: legs,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    RelayIssuer,
			Audience:  jwt.ClaimStrings{RelayAudience},
			ExpiresAt: jwt.NewNumericDate(now.Add(m.tokenDuration)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secretKey)
}

// Verify checks signature, issuer, audience and expiry of tokenString.
func (m *JWTManager) Verify(tokenString string) (*RelayClaims, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&RelayClaims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return m.secretKey, nil
		},
		jwt.WithIssuer(RelayIssuer),
		jwt.WithAudience(RelayAudience),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*RelayClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
