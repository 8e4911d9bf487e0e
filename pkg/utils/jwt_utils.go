package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// DeskTokenTTL is the default lifetime of a front-desk staff token.
	DeskTokenTTL = 12 * time.Hour

	tokenIssuer = "gym-checkin-backend"
)

// Staff roles carried in tokens.
const (
	RoleAdmin = "admin"
	RoleDesk  = "desk"
)

// Gin context keys set by the auth middleware.
const (
	ContextStaffName = "staffName"
	ContextStaffRole = "staffRole"
)

// ErrMissingSecret is returned when token operations run without a secret.
var ErrMissingSecret = errors.New("jwt secret is not configured")

// Claims defines the JWT claims structure for staff tokens. Staff accounts
// live outside this service; the token only names who is at the desk.
type Claims struct {
	StaffName string `json:"staff_name"`
	Role      string `json:"role"`
	jwt.RegisteredClaims
}

// GenerateAccessToken creates a signed HS256 token for a staff member.
func GenerateAccessToken(secret []byte, staffName, role string, ttl time.Duration) (string, error) {
	if len(secret) == 0 {
		return "", ErrMissingSecret
	}
	if ttl <= 0 {
		ttl = DeskTokenTTL
	}
	now := time.Now()
	claims := &Claims{
		StaffName: staffName,
		Role:      role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   staffName,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return tokenString, nil
}

// ValidateToken parses and validates a JWT token string.
// It returns the claims if the token is valid, otherwise an error.
func ValidateToken(secret []byte, tokenString string) (*Claims, error) {
	if len(secret) == 0 {
		return nil, ErrMissingSecret
	}
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	}, jwt.WithIssuer(tokenIssuer))

	if err != nil {
		return nil, fmt.Errorf("token validation failed: %w", err)
	}

	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	return claims, nil
}
