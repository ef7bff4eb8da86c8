// Package tenant defines the tenant context that scopes every isolated
// read and write.
package tenant

import (
	"errors"
	"strings"
)

// ErrInvalidToken is returned when a bot token carries no usable tenant id.
var ErrInvalidToken = errors.New("tenant: bot token has no id part")

// Context identifies the deployment this process serves. It is built once at
// startup and passed explicitly to every scoped operation.
type Context struct {
	ID string
}

// FromBotToken derives the tenant from a chat bot token of the form
// "<id>:<secret>". The secret part is never retained.
func FromBotToken(token string) (Context, error) {
	id, _, _ := strings.Cut(strings.TrimSpace(token), ":")
	if id == "" {
		return Context{}, ErrInvalidToken
	}
	return Context{ID: id}, nil
}

// String returns the tenant id.
func (c Context) String() string { return c.ID }
