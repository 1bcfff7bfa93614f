package postgres

import (
	"context"
	"net"
	"net/url"
	"strconv"

	"github.com/go-logr/logr"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/pkg/errors"
)

// Conn is the subset of *pgx.Conn the admin uses.
type Conn interface {
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// ConnConfig describes an administrative connection. It is configuration
// only; nothing is dialed until Connect.
type ConnConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// URL renders the config as a postgres:// URL.
func (c ConnConfig) URL() *url.URL {
	database := c.Database
	if database == "" {
		database = "postgres"
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.User, c.Password),
		Host:   net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		Path:   database,
	}
	if c.SSLMode != "" {
		u.RawQuery = url.Values{"sslmode": {c.SSLMode}}.Encode()
	}
	return u
}

// Connect opens a single connection. pgx log output is routed to log.
func Connect(ctx context.Context, cfg ConnConfig, log logr.Logger) (*pgx.Conn, error) {
	pgCfg, err := pgx.ParseConfig(cfg.URL().String())
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse connection config")
	}

	pgCfg.Logger = newPgxLogr(log)
	// Statement arguments carry passwords, and pgx logs them from Info up.
	pgCfg.LogLevel = pgx.LogLevelWarn

	conn, err := pgx.ConnectConfig(ctx, pgCfg)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to connect to %s", net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)))
	}
	return conn, nil
}

// IsAuthError reports whether the server rejected the credentials.
func IsAuthError(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	switch pgErr.Code {
	case "28P01", "28000":
		return true
	}
	return false
}
