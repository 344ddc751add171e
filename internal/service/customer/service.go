// Package customer handles signup, login and session refresh.
package customer

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"storefront/internal/auth"
	"storefront/internal/domain"
	custrepo "storefront/internal/repository/customer"
	tokenrepo "storefront/internal/repository/token"
)

var (
	// ErrInvalidCredentials is returned when email/password do not match.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidRefreshToken indicates an unknown or expired refresh token.
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
)

const passwordMin = 8

// Service issues JWT access tokens and DB-persisted refresh tokens.
type Service struct {
	repo       custrepo.Repository
	tokens     tokenrepo.Repository
	jwt        *auth.Manager
	refreshTTL time.Duration
}

func New(repo custrepo.Repository, tokens tokenrepo.Repository, jwt *auth.Manager, refreshTTL time.Duration) *Service {
	return &Service{
		repo:       repo,
		tokens:     tokens,
		jwt:        jwt,
		refreshTTL: refreshTTL,
	}
}

// SignupInput captures fields expected by the signup endpoint.
type SignupInput struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// Session is the result of a successful signup, login or refresh.
type Session struct {
	Customer     *domain.Customer `json:"customer"`
	AccessToken  string           `json:"accessToken"`
	RefreshToken string           `json:"refreshToken"`
	ExpiresIn    int              `json:"expiresIn"`
}

// Signup registers a new customer and opens a session.
func (s *Service) Signup(ctx context.Context, in SignupInput) (*Session, error) {
	email := strings.TrimSpace(strings.ToLower(in.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, domain.Validation("email", "a valid email is required")
	}
	password := strings.TrimSpace(in.Password)
	if len(password) < passwordMin {
		return nil, domain.Validation("password", fmt.Sprintf("must be at least %d characters", passwordMin))
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, domain.Customer{
		Email:        email,
		PasswordHash: string(hashed),
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
	})
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			return nil, domain.Validation("email", "already registered")
		}
		return nil, err
	}
	return s.openSession(ctx, created)
}

// Login authenticates by email and password.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	c, err := s.repo.GetByEmail(ctx, strings.TrimSpace(strings.ToLower(email)))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(c.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return s.openSession(ctx, c)
}

// Refresh trades a valid refresh token for a new session. The old refresh
// token is revoked (single use).
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	stored, err := s.tokens.Get(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, err
	}
	if time.Now().After(stored.ExpiresAt) {
		_ = s.tokens.Delete(ctx, refreshToken)
		return nil, ErrInvalidRefreshToken
	}

	c, err := s.repo.GetByID(ctx, stored.CustomerID)
	if err != nil {
		return nil, err
	}
	if err := s.tokens.Delete(ctx, refreshToken); err != nil {
		return nil, err
	}
	return s.openSession(ctx, c)
}

// GetByID fetches a customer profile.
func (s *Service) GetByID(ctx context.Context, id string) (*domain.Customer, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) openSession(ctx context.Context, c *domain.Customer) (*Session, error) {
	access, err := s.jwt.IssueCustomer(c.ID)
	if err != nil {
		return nil, err
	}

	// Retry on the off chance of a token collision.
	var refresh string
	for i := 0; i < 5; i++ {
		refresh, err = randomToken()
		if err != nil {
			return nil, err
		}
		err = s.tokens.Create(ctx, tokenrepo.RefreshToken{
			Token:      refresh,
			CustomerID: c.ID,
			ExpiresAt:  time.Now().Add(s.refreshTTL),
		})
		if err == nil {
			break
		}
		if !errors.Is(err, domain.ErrAlreadyExists) {
			return nil, err
		}
	}
	if err != nil {
		return nil, errors.New("refresh token collision")
	}

	return &Session{
		Customer:     c,
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int(s.jwt.AccessTTL().Seconds()),
	}, nil
}

func randomToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
