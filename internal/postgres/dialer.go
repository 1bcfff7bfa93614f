package postgres

import (
	"context"

	"github.com/go-logr/logr"
	"github.com/pkg/errors"

	"github.com/imamik/tcstack/internal/util/retry"
)

// Dialer opens administrative connections, retrying until the server
// accepts them. Rejected credentials are not retried.
type Dialer struct {
	// Connect opens one connection. Defaults to Connect with a pgx logger.
	Connect func(ctx context.Context, cfg ConnConfig) (Conn, error)
	// SCRAM makes the returned Admin send SCRAM-SHA-256 verifiers.
	SCRAM bool

	RetryOptions []retry.Option
}

// NewDialer returns a Dialer backed by pgx.
func NewDialer(log logr.Logger, scram bool, opts ...retry.Option) *Dialer {
	return &Dialer{
		Connect: func(ctx context.Context, cfg ConnConfig) (Conn, error) {
			return Connect(ctx, cfg, log)
		},
		SCRAM:        scram,
		RetryOptions: opts,
	}
}

// Dial connects and pings, returning an Admin over a live connection.
// The caller must Close it.
func (d *Dialer) Dial(ctx context.Context, cfg ConnConfig) (*Admin, error) {
	var admin *Admin
	err := retry.WithExponentialBackoff(ctx, func(ctx context.Context) error {
		c, err := d.Connect(ctx, cfg)
		if err != nil {
			if IsAuthError(err) {
				return retry.Fatal(err)
			}
			return err
		}
		a := NewAdmin(c, d.SCRAM)
		if err := a.Ping(ctx); err != nil {
			_ = a.Close(ctx)
			return err
		}
		admin = a
		return nil
	}, d.RetryOptions...)
	if err != nil {
		return nil, errors.Wrapf(err, "postgres at %s is not reachable", cfg.URL().Host)
	}

	return admin, nil
}
