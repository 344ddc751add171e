// Package auth issues and validates the bearer tokens that identify a
// shopper: customers get JWTs after login, guests get JWTs wrapping a
// generated anonymous id.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"storefront/internal/domain"
)

var (
	// ErrInvalidToken covers any token that fails parsing or validation.
	ErrInvalidToken = errors.New("invalid token")
)

// Claims are the custom JWT claims. Kind tells guest tokens apart from
// customer tokens; Subject carries the owner id.
type Claims struct {
	jwt.RegisteredClaims
	Kind domain.OwnerKind `json:"kind"`
}

// Manager signs and parses session tokens.
type Manager struct {
	secret    []byte
	issuer    string
	accessTTL time.Duration
}

func NewManager(secret, issuer string, accessTTL time.Duration) *Manager {
	return &Manager{
		secret:    []byte(secret),
		issuer:    issuer,
		accessTTL: accessTTL,
	}
}

// IssueCustomer returns an access token for a logged-in customer.
func (m *Manager) IssueCustomer(customerID string) (string, error) {
	return m.issue(customerID, domain.OwnerCustomer)
}

// IssueAnonymous generates a fresh anonymous owner id and wraps it in a
// guest token.
func (m *Manager) IssueAnonymous() (string, string, error) {
	anonymousID := uuid.NewString()
	tok, err := m.issue(anonymousID, domain.OwnerGuest)
	if err != nil {
		return "", "", err
	}
	return tok, anonymousID, nil
}

func (m *Manager) issue(subject string, kind domain.OwnerKind) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.accessTTL)),
		},
		Kind: kind,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Parse validates the token and returns the owner it identifies.
func (m *Manager) Parse(token string) (domain.Owner, error) {
	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithIssuer(m.issuer))
	if err != nil || !parsed.Valid {
		return domain.Owner{}, ErrInvalidToken
	}
	if claims.Subject == "" {
		return domain.Owner{}, ErrInvalidToken
	}
	switch claims.Kind {
	case domain.OwnerGuest, domain.OwnerCustomer:
	default:
		return domain.Owner{}, ErrInvalidToken
	}
	return domain.Owner{ID: claims.Subject, Kind: claims.Kind}, nil
}

// AccessTTL exposes the configured token lifetime.
func (m *Manager) AccessTTL() time.Duration {
	return m.accessTTL
}
