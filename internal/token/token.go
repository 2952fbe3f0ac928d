// Package token issues and verifies the signed bearer tokens that back admin
// authentication. Tokens are stateless: validity is a function of the signature
// and the expiry alone, there is no server-side record and no revocation list.
package token

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/folio-api/folio/internal/shared"
)

// ErrInvalidToken covers malformed tokens, signature mismatches and expiry.
var ErrInvalidToken = errors.New("invalid or expired token")

// Config carries the process-wide signing state, constructed once at startup.
type Config struct {
	Secret []byte
	TTL    time.Duration
	Issuer string
}

// Claims is the JWT payload minted at login.
type Claims struct {
	jwt.RegisteredClaims
	Username string `json:"username,omitempty"`
	Role     string `json:"role,omitempty"`
}

// Manager signs and verifies tokens with a single HMAC key.
type Manager struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

// NewManager constructs a Manager from immutable configuration.
func NewManager(cfg Config) *Manager {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	issuer := cfg.Issuer
	if issuer == "" {
		issuer = "folio"
	}
	return &Manager{secret: cfg.Secret, ttl: ttl, issuer: issuer, now: time.Now}
}

// Issue mints a signed token asserting the principal's identity and role.
func (m *Manager) Issue(p shared.Principal) (string, error) {
	now := m.now().UTC()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(p.ID, 10),
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
		Username: p.Username,
		Role:     p.Role,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("token: sign: %w", err)
	}
	return signed, nil
}

// Verify checks signature integrity and expiry and decodes the principal.
// It never consults persistent state.
func (m *Manager) Verify(raw string) (shared.Principal, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(m.issuer))
	if err != nil || !parsed.Valid {
		return shared.Principal{}, ErrInvalidToken
	}

	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return shared.Principal{}, ErrInvalidToken
	}
	return shared.Principal{ID: id, Username: claims.Username, Role: claims.Role}, nil
}

// TTL exposes the configured validity window.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}
