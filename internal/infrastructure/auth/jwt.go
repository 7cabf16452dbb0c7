package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/orris-inc/licensegate/internal/shared/biztime"
)

// AdminClaims identify a caller of the admin and notification routes,
// normally the subscription system.
type AdminClaims struct {
	Scope string `json:"scope"`
	jwt.RegisteredClaims
}

// Admin token scopes
const (
	// ScopeNotifications allows pushing licensing notifications.
	ScopeNotifications = "notifications"
	// ScopeStoresRead allows reading store details and usage.
	ScopeStoresRead = "stores.read"
	// ScopeAll grants every scope.
	ScopeAll = "*"
)

// ValidScope reports whether scope is one admin tokens may carry.
func ValidScope(scope string) bool {
	switch scope {
	case ScopeNotifications, ScopeStoresRead, ScopeAll:
		return true
	default:
		return false
	}
}

// AdminTokenService issues and verifies HS256 admin tokens.
type AdminTokenService struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

func NewAdminTokenService(secret, issuer string, ttl time.Duration) *AdminTokenService {
	return &AdminTokenService{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
	}
}

// Generate signs a token for subject. A zero ttl issues a non-expiring token.
func (s *AdminTokenService) Generate(subject, scope string) (string, error) {
	now := biztime.NowUTC()
	claims := &AdminClaims{
		Scope: scope,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	if s.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(s.ttl))
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign admin token: %w", err)
	}
	return signed, nil
}

// Verify parses tokenString and checks signature, expiry and issuer.
func (s *AdminTokenService) Verify(tokenString string) (*AdminClaims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &AdminClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	if claims, ok := token.Claims.(*AdminClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, fmt.Errorf("invalid token")
}
