// Package auth issues and verifies the HS256 session tokens accepted next to
// guest identities.
package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims represents the identity contained in a session token.
type Claims struct {
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

var (
	ErrNoSecret     = errors.New("jwt secret not configured")
	ErrInvalidToken = errors.New("invalid token")
)

const (
	issuer     = "resume-builder"
	defaultTTL = 24 * time.Hour
	leeway     = 30 * time.Second
)

// Verifier signs and checks session tokens with a shared secret.
type Verifier struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewVerifier returns a Verifier for secret. ttl <= 0 means 24h.
func NewVerifier(secret string, ttl time.Duration) (*Verifier, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, ErrNoSecret
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Verifier{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// Sign issues a token for claims. Subject is required; issuer, issue time and
// expiry are filled in when absent.
func (v *Verifier) Sign(claims Claims) (string, error) {
	if strings.TrimSpace(claims.Subject) == "" {
		return "", errors.New("sub is required")
	}
	now := v.now().UTC()
	if claims.Issuer == "" {
		claims.Issuer = issuer
	}
	if claims.IssuedAt == nil {
		claims.IssuedAt = jwt.NewNumericDate(now)
	}
	if claims.ExpiresAt == nil {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(v.ttl))
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}

// Verify checks signature, algorithm, issuer and expiry. Every failure is
// reported as ErrInvalidToken.
func (v *Verifier) Verify(raw string) (Claims, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithLeeway(leeway),
		jwt.WithTimeFunc(v.now),
	)
	if err != nil || !token.Valid || claims.Subject == "" || claims.ExpiresAt == nil {
		return Claims{}, ErrInvalidToken
	}
	return claims, nil
}
