// Package auth implements the passwordless email-link sign-in flow:
// a single-use login token is mailed to the user, exchanged for a bearer
// session token, and the session resolves to a user on every request.
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/hyperengineering/liftlog/internal/mail"
	"github.com/hyperengineering/liftlog/internal/store"
	"github.com/hyperengineering/liftlog/internal/types"
)

// Service coordinates login tokens, sessions and link delivery.
type Service struct {
	store      store.Store
	mailer     mail.Mailer
	baseURL    string
	linkTTL    time.Duration
	sessionTTL time.Duration
}

// NewService creates an auth service.
func NewService(s store.Store, m mail.Mailer, baseURL string, linkTTL, sessionTTL time.Duration) *Service {
	return &Service{
		store:      s,
		mailer:     m,
		baseURL:    baseURL,
		linkTTL:    linkTTL,
		sessionTTL: sessionTTL,
	}
}

// RequestLink issues a single-use login token and mails the sign-in link.
func (s *Service) RequestLink(ctx context.Context, email, redirectTo string) error {
	token := uuid.NewString()
	expiresAt := time.Now().UTC().Add(s.linkTTL)

	if err := s.store.CreateLoginToken(ctx, token, email, redirectTo, expiresAt); err != nil {
		return fmt.Errorf("create login token: %w", err)
	}

	link := s.buildLink(token, redirectTo)
	if err := s.mailer.SendLoginLink(ctx, email, link); err != nil {
		return fmt.Errorf("send login link: %w", err)
	}

	slog.Info("login link requested", "component", "auth", "mailer", s.mailer.Name())
	return nil
}

// Verify exchanges a login token for a session. The user account is created
// on first sign-in.
func (s *Service) Verify(ctx context.Context, token string) (*types.User, string, error) {
	now := time.Now().UTC()

	email, err := s.store.ConsumeLoginToken(ctx, token, now)
	if err != nil {
		return nil, "", fmt.Errorf("consume login token: %w", err)
	}

	user, err := s.store.UpsertUser(ctx, email)
	if err != nil {
		return nil, "", fmt.Errorf("upsert user: %w", err)
	}

	sessionToken := uuid.NewString()
	if err := s.store.CreateSession(ctx, sessionToken, user.ID, now.Add(s.sessionTTL)); err != nil {
		return nil, "", fmt.Errorf("create session: %w", err)
	}

	return user, sessionToken, nil
}

// Authenticate resolves a bearer session token to its user.
func (s *Service) Authenticate(ctx context.Context, token string) (*types.User, error) {
	if token == "" {
		return nil, store.ErrNotFound
	}
	return s.store.GetSessionUser(ctx, token, time.Now().UTC())
}

// SignOut removes the session. Signing out twice is not an error.
func (s *Service) SignOut(ctx context.Context, token string) error {
	return s.store.DeleteSession(ctx, token)
}

// buildLink composes the externally reachable verification URL.
func (s *Service) buildLink(token, redirectTo string) string {
	v := url.Values{}
	v.Set("token", token)
	if redirectTo != "" {
		v.Set("redirect_to", redirectTo)
	}
	return s.baseURL + "/auth/verify?" + v.Encode()
}
