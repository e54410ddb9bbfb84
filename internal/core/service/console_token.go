package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/vaultline/authd/internal/core/domain"
)

const consoleTokenIssuer = "authd-console"

// ConsoleClaims identify a platform account on the owner console.
type ConsoleClaims struct {
	AccountID string `json:"account_id"`
	Role      string `json:"role"`
	jwt.RegisteredClaims
}

// IssueConsoleToken signs an HS256 console token for account.
func IssueConsoleToken(secret string, account *domain.Account, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", errors.New("console token: empty secret")
	}
	now := time.Now()
	claims := ConsoleClaims{
		AccountID: account.ID,
		Role:      account.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    consoleTokenIssuer,
			Subject:   account.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign console token: %w", err)
	}
	return signed, nil
}

// ParseConsoleToken validates signature, issuer and expiry.
func ParseConsoleToken(secret, raw string) (*ConsoleClaims, error) {
	claims := &ConsoleClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(consoleTokenIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}
	if claims.AccountID == "" {
		return nil, errors.New("console token: missing account_id")
	}
	return claims, nil
}
