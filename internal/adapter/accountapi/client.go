// Package accountapi implements the account service port over the
// provider's signed HTTP/JSON open API.
package accountapi

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-resty/resty/v2"

	"github.com/benjaminclark40063-sketch/botbot4xin/internal/config"
	"github.com/benjaminclark40063-sketch/botbot4xin/internal/domain/account"
	"github.com/benjaminclark40063-sketch/botbot4xin/internal/resilience"
)

// Client talks to the register and login endpoints.
type Client struct {
	http    *resty.Client
	cfg     config.Account
	breaker *resilience.Breaker
}

// reply mirrors the provider's response envelope.
type reply struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Data struct {
		UserKey string `json:"userkey"`
	} `json:"data"`
}

// New builds a client with the configured timeout and, when set, proxy.
// breaker may be nil.
func New(cfg config.Account, breaker *resilience.Breaker) *Client {
	c := resty.New().
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json")
	if cfg.ProxyURL != "" {
		c.SetProxy(cfg.ProxyURL)
	}
	return &Client{http: c, cfg: cfg, breaker: breaker}
}

// Register creates the account for creds.
func (c *Client) Register(ctx context.Context, creds account.Credentials) (account.Reply, error) {
	return c.call(ctx, "register", c.cfg.RegisterURL, creds)
}

// Login fetches the key of an existing account.
func (c *Client) Login(ctx context.Context, creds account.Credentials) (account.Reply, error) {
	return c.call(ctx, "login", c.cfg.LoginURL, creds)
}

func (c *Client) call(ctx context.Context, op, url string, creds account.Credentials) (account.Reply, error) {
	var out account.Reply
	fn := func(ctx context.Context) error {
		r, err := c.post(ctx, url, creds)
		if err != nil {
			return err
		}
		out = r
		return nil
	}

	var err error
	if c.breaker != nil {
		err = c.breaker.Execute(ctx, fn)
	} else {
		err = fn(ctx)
	}
	if err != nil {
		return account.Reply{}, fmt.Errorf("account %s: %w", op, err)
	}

	slog.Debug("account service reply", "op", op, "username", creds.Username, "code", out.Code)
	return out, nil
}

func (c *Client) post(ctx context.Context, url string, creds account.Credentials) (account.Reply, error) {
	body := map[string]string{
		"username": creds.Username,
		"passwd":   creds.Password,
		"currency": c.cfg.Currency,
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeaderVerbatim("siteCode", c.cfg.SiteCode).
		SetHeaderVerbatim("apiKey", c.cfg.APIKey).
		SetHeaderVerbatim("apiSign", account.Sign(body, c.cfg.Secret)).
		SetBody(body).
		Post(url)
	if err != nil {
		return account.Reply{}, fmt.Errorf("post: %w", err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		err := fmt.Errorf("unexpected status %d", resp.StatusCode())
		if resp.StatusCode() < http.StatusInternalServerError {
			return account.Reply{}, resilience.Permanent(err)
		}
		return account.Reply{}, err
	}

	var r reply
	if err := json.Unmarshal(resp.Body(), &r); err != nil {
		return account.Reply{}, resilience.Permanent(fmt.Errorf("decode reply: %w", err))
	}
	return account.Reply{Code: r.Code, Message: r.Msg, Key: r.Data.UserKey}, nil
}
