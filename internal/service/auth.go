package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Skotchmaster/receipts/internal/models"
	"github.com/Skotchmaster/receipts/internal/repo"
	"github.com/Skotchmaster/receipts/pkg/hash"
	"github.com/Skotchmaster/receipts/pkg/logging"
	"github.com/Skotchmaster/receipts/pkg/tokens"
)

type AuthService struct {
	Repo   *repo.GormRepo
	Tokens *tokens.Issuer
	Events EventPublisher
}

type SignInResult struct {
	AccessToken string
	ExpiresAt   time.Time
}

func (s *AuthService) SignUp(ctx context.Context, in SignUpInput) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.signup")

	if err := in.validate(); err != nil {
		return nil, err
	}
	username := strings.TrimSpace(in.Username)

	if _, err := s.Repo.FindUserByUsername(ctx, username); err == nil {
		return nil, fmt.Errorf("%w: username already registered", ErrConflict)
	} else if !errors.Is(err, repo.ErrNotFound) {
		return nil, err
	}

	pwHash, err := hash.HashPassword(in.Password)
	if err != nil {
		l.Error("signup_error", "status", 500, "reason", "cannot hash the password", "error", err)
		return nil, err
	}

	u, err := s.Repo.CreateUser(ctx, &models.User{
		Username:     username,
		FullName:     in.FullName,
		PasswordHash: pwHash,
	})
	if err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, fmt.Errorf("%w: username already registered", ErrConflict)
		}
		return nil, err
	}

	if s.Events != nil {
		pctx, cancel := context.WithTimeout(ctx, sideEffectTimeout)
		defer cancel()
		event := map[string]any{
			"type":     "user_registered",
			"user_id":  u.ID.String(),
			"username": u.Username,
		}
		if err := s.Events.PublishEvent(pctx, TopicUserEvents, u.ID.String(), event); err != nil {
			l.Warn("publish_error", "topic", TopicUserEvents, "error", err)
		}
	}
	return u, nil
}

func (s *AuthService) SignIn(ctx context.Context, username, password string) (*SignInResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.signin", "username", username)

	u, err := s.Repo.FindUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, fmt.Errorf("%w: incorrect username or password", ErrUnauthorized)
		}
		return nil, err
	}
	if !hash.CheckPassword(u.PasswordHash, password) {
		return nil, fmt.Errorf("%w: incorrect username or password", ErrUnauthorized)
	}

	tok, exp, err := s.Tokens.Issue(u.Username)
	if err != nil {
		l.Error("signin_error", "status", 500, "reason", "cannot sign token", "error", err)
		return nil, err
	}
	return &SignInResult{AccessToken: tok, ExpiresAt: exp}, nil
}

// Authenticate resolves a bearer token to its user.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	claims, err := tokens.AccessClaimsFromToken(token, s.Tokens.Secret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	u, err := s.Repo.FindUserByUsername(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, fmt.Errorf("%w: unknown subject", ErrUnauthorized)
		}
		return nil, err
	}
	return u, nil
}
