// Package postgres provisions roles, databases and grants on a PostgreSQL
// server through an administrative pgx connection.
//
// Every operation is idempotent. EnsureGrant only grants when the role holds
// no privilege on the database yet, so privileges changed by hand after the
// first run are left alone.
package postgres
