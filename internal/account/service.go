// Package account implements sign-up, sign-in, sign-out and token
// authentication on top of the account directory and session registry.
package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"drivenpass/internal/apperr"
	"drivenpass/internal/auth"
	"drivenpass/internal/model"
	"drivenpass/internal/store"
)

// SessionRegistry remembers which issued tokens are still signed in.
type SessionRegistry interface {
	Create(ctx context.Context, s model.Session) error
	Lookup(ctx context.Context, tokenID string) (model.Session, error)
	Delete(ctx context.Context, tokenID string) error
}

type Identity struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
}

type SignInResult struct {
	Token string   `json:"token"`
	User  Identity `json:"user"`
}

// Principal is the authenticated caller of a protected operation.
type Principal struct {
	Account model.Account
	TokenID string
}

type Service struct {
	directory *Directory
	sessions  SessionRegistry
	hasher    auth.Hasher
	tokens    auth.TokenConfig
	log       *slog.Logger
	now       func() time.Time
}

func NewService(directory *Directory, sessions SessionRegistry, hasher auth.Hasher, tokens auth.TokenConfig, log *slog.Logger) *Service {
	return &Service{
		directory: directory,
		sessions:  sessions,
		hasher:    hasher,
		tokens:    tokens,
		log:       log,
		now:       time.Now,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *Service) SignUp(ctx context.Context, email, password string) (Identity, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return Identity{}, apperr.Validation("email and password are required")
	}

	_, exists, err := s.directory.FindByEmail(ctx, email)
	if err != nil {
		return Identity{}, err
	}
	if exists {
		return Identity{}, apperr.DuplicateEmail()
	}

	hash, err := s.hasher.Hash(password)
	if errors.Is(err, auth.ErrPasswordTooLong) {
		return Identity{}, apperr.Validation("password is too long")
	}
	if err != nil {
		return Identity{}, fmt.Errorf("hash password: %w", err)
	}
	// CreateAccount still reports a concurrent sign-up that wins the email.
	a, err := s.directory.CreateAccount(ctx, email, hash)
	if err != nil {
		return Identity{}, err
	}
	s.log.Info("account created", "owner_id", a.ID)
	return Identity{ID: a.ID, Email: a.Email}, nil
}

// SignIn fails with the same error for an unknown email and a wrong password.
func (s *Service) SignIn(ctx context.Context, email, password string) (SignInResult, error) {
	email = normalizeEmail(email)
	a, ok, err := s.directory.FindByEmail(ctx, email)
	if err != nil {
		return SignInResult{}, err
	}
	if !ok {
		return SignInResult{}, apperr.Unauthorized("invalid email or password")
	}
	if err := s.hasher.Compare(a.PasswordHash, password); err != nil {
		if !errors.Is(err, auth.ErrPasswordMismatch) {
			s.log.Warn("password compare failed", "owner_id", a.ID, "error", err)
		}
		return SignInResult{}, apperr.Unauthorized("invalid email or password")
	}

	token, claims, err := auth.CreateToken(a.ID, s.tokens)
	if err != nil {
		return SignInResult{}, fmt.Errorf("issue token: %w", err)
	}
	session := model.Session{TokenID: claims.ID, OwnerID: a.ID, CreatedAt: s.now().UTC()}
	if claims.ExpiresAt != nil {
		exp := claims.ExpiresAt.Time.UTC()
		session.ExpiresAt = &exp
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return SignInResult{}, fmt.Errorf("register session: %w", err)
	}

	s.log.Info("signed in", "owner_id", a.ID)
	return SignInResult{Token: token, User: Identity{ID: a.ID, Email: a.Email}}, nil
}

// SignOut ends the session for tokenID. Unknown ids are ignored.
func (s *Service) SignOut(ctx context.Context, tokenID string) error {
	if err := s.sessions.Delete(ctx, tokenID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// Authenticate resolves a bearer token to its principal. Every rejection is
// an UnauthorizedError.
func (s *Service) Authenticate(ctx context.Context, token string) (Principal, error) {
	if token == "" {
		return Principal{}, apperr.Unauthorized("missing token")
	}
	claims, err := auth.VerifyToken(token, s.tokens)
	if err != nil {
		return Principal{}, apperr.Unauthorized("invalid token")
	}

	session, err := s.sessions.Lookup(ctx, claims.ID)
	if errors.Is(err, store.ErrNotFound) {
		return Principal{}, apperr.Unauthorized("no session for given token")
	}
	if err != nil {
		return Principal{}, fmt.Errorf("lookup session: %w", err)
	}
	if session.OwnerID != claims.OwnerID {
		return Principal{}, apperr.Unauthorized("no session for given token")
	}

	a, err := s.directory.FindByID(ctx, claims.OwnerID)
	if errors.Is(err, apperr.ErrNotFound) {
		return Principal{}, apperr.Unauthorized("account no longer exists")
	}
	if err != nil {
		return Principal{}, err
	}
	return Principal{Account: a, TokenID: claims.ID}, nil
}
