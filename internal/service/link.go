package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	bototel "github.com/benjaminclark40063-sketch/botbot4xin/internal/adapter/otel"
	"github.com/benjaminclark40063-sketch/botbot4xin/internal/domain/account"
	"github.com/benjaminclark40063-sketch/botbot4xin/internal/port/accountservice"
)

// LinkService obtains a user's external key from the account service.
type LinkService struct {
	accounts accountservice.Service
	secret   string
	metrics  *bototel.Metrics
}

// NewLinkService creates a LinkService. secret seeds credential derivation.
func NewLinkService(accounts accountservice.Service, secret string, m *bototel.Metrics) *LinkService {
	return &LinkService{accounts: accounts, secret: secret, metrics: m}
}

// Link registers the user's derived account, or logs into it when it already
// exists, and returns the external key. Every other outcome wraps
// account.ErrLinkFailed. The call blocks on network I/O; callers run it on
// the goroutine handling the update.
func (s *LinkService) Link(ctx context.Context, user account.User) (string, error) {
	start := time.Now()
	key, err := s.link(ctx, user)
	s.metrics.RecordLink(ctx, err == nil, time.Since(start).Seconds())
	if err != nil {
		slog.WarnContext(ctx, "account link failed", "user_id", user.ID, "error", err)
		return "", err
	}
	slog.InfoContext(ctx, "account linked", "user_id", user.ID)
	return key, nil
}

func (s *LinkService) link(ctx context.Context, user account.User) (string, error) {
	creds := account.DeriveCredentials(user.ID, s.secret)

	r, err := s.accounts.Register(ctx, creds)
	if err != nil {
		return "", fmt.Errorf("%w: %w", account.ErrLinkFailed, err)
	}
	if r.Success() {
		return r.Key, nil
	}
	if r.Code != account.CodeAlreadyRegistered {
		return "", fmt.Errorf("%w: register code %d: %s", account.ErrLinkFailed, r.Code, r.Message)
	}

	r, err = s.accounts.Login(ctx, creds)
	if err != nil {
		return "", fmt.Errorf("%w: %w", account.ErrLinkFailed, err)
	}
	if !r.Success() {
		return "", fmt.Errorf("%w: login code %d: %s", account.ErrLinkFailed, r.Code, r.Message)
	}
	return r.Key, nil
}
