// Package accountservice defines the port to the external account service.
package accountservice

import (
	"context"

	"github.com/benjaminclark40063-sketch/botbot4xin/internal/domain/account"
)

// Service registers and logs in derived accounts. A non-nil error means no
// reply was obtained (transport failure, HTTP error status, open breaker or
// an undecodable body); business outcomes are carried in the Reply.
type Service interface {
	Register(ctx context.Context, creds account.Credentials) (account.Reply, error)
	Login(ctx context.Context, creds account.Credentials) (account.Reply, error)
}
