package service

import (
	"context"
	"errors"
	"testing"

	"github.com/benjaminclark40063-sketch/botbot4xin/internal/domain/account"
)

func TestLinkService_Register(t *testing.T) {
	accts := &mockAccounts{register: account.Reply{Code: account.CodeOK, Key: "K1"}}
	svc := NewLinkService(accts, "s3cret", nil)

	key, err := svc.Link(context.Background(), account.User{ID: 42})
	if err != nil {
		t.Fatalf("link: %v", err)
	}
	if key != "K1" {
		t.Fatalf("expected K1, got %q", key)
	}
	if len(accts.calls) != 1 {
		t.Fatalf("expected register only, got %v", accts.calls)
	}
	if accts.creds[0] != account.DeriveCredentials(42, "s3cret") {
		t.Fatalf("unexpected credentials %+v", accts.creds[0])
	}
}

func TestLinkService_AlreadyRegisteredLogsIn(t *testing.T) {
	accts := &mockAccounts{
		register: account.Reply{Code: account.CodeAlreadyRegistered},
		login:    account.Reply{Code: account.CodeOK, Key: "K2"},
	}
	svc := NewLinkService(accts, "s3cret", nil)

	key, err := svc.Link(context.Background(), account.User{ID: 42})
	if err != nil {
		t.Fatalf("link: %v", err)
	}
	if key != "K2" {
		t.Fatalf("expected K2, got %q", key)
	}
	if len(accts.calls) != 2 || accts.calls[1] != "login" {
		t.Fatalf("expected register then login, got %v", accts.calls)
	}
	if accts.creds[0] != accts.creds[1] {
		t.Fatal("expected login with the same credentials")
	}
}

func TestLinkService_Failures(t *testing.T) {
	tests := []struct {
		name  string
		accts *mockAccounts
	}{
		{"transport error", &mockAccounts{registerErr: errors.New("dial tcp: timeout")}},
		{"other code", &mockAccounts{register: account.Reply{Code: 500, Message: "busy"}}},
		{"success without key", &mockAccounts{register: account.Reply{Code: account.CodeOK}}},
		{"login rejected", &mockAccounts{
			register: account.Reply{Code: account.CodeAlreadyRegistered},
			login:    account.Reply{Code: 1001},
		}},
		{"login error", &mockAccounts{
			register: account.Reply{Code: account.CodeAlreadyRegistered},
			loginErr: errors.New("connection reset"),
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, err := NewLinkService(tt.accts, "s", nil).Link(context.Background(), account.User{ID: 1})
			if !errors.Is(err, account.ErrLinkFailed) {
				t.Fatalf("expected ErrLinkFailed, got %v", err)
			}
			if key != "" {
				t.Fatalf("expected no key, got %q", key)
			}
		})
	}
}
