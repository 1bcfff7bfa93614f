package postgres

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v4"
	"github.com/pkg/errors"
	logf "sigs.k8s.io/controller-runtime/pkg/log"
)

const (
	queryRoleOID     = `SELECT oid FROM pg_roles WHERE rolname = $1`
	queryDatabaseOID = `SELECT oid FROM pg_database WHERE datname = $1`
	queryGrantExists = `SELECT EXISTS (
	SELECT 1 FROM pg_database d, aclexplode(d.datacl) a
	WHERE d.datname = $1 AND a.grantee = (SELECT oid FROM pg_roles WHERE rolname = $2)
)`
)

// AllPrivileges is the privilege set EnsureGrant grants.
var AllPrivileges = []string{"ALL"}

// Role is a provisioned login role.
type Role struct {
	Name    string
	OID     uint32
	Created bool
}

// Database is a provisioned database.
type Database struct {
	Name    string
	OID     uint32
	Created bool
}

// Grant binds privileges on a database to a role. Created is false when
// the role already held privileges and nothing was changed.
type Grant struct {
	Role       string
	Database   string
	Privileges []string
	Created    bool
}

// Admin runs provisioning statements over one administrative connection.
// It is not safe for concurrent use.
type Admin struct {
	conn  Conn
	scram bool
}

// NewAdmin wraps conn. With scram set, role passwords are sent as
// SCRAM-SHA-256 verifiers instead of plain text.
func NewAdmin(conn Conn, scram bool) *Admin {
	return &Admin{conn: conn, scram: scram}
}

// Close closes the underlying connection.
func (a *Admin) Close(ctx context.Context) error {
	return a.conn.Close(ctx)
}

// Ping checks the connection.
func (a *Admin) Ping(ctx context.Context) error {
	return a.conn.Ping(ctx)
}

// EnsureRole creates the role with LOGIN and CREATEDB, or resets those
// attributes and the password if it already exists.
func (a *Admin) EnsureRole(ctx context.Context, name, password string) (Role, error) {
	if err := ValidateIdentifier(name); err != nil {
		return Role{}, err
	}

	oid, exists, err := a.lookupOID(ctx, queryRoleOID, name)
	if err != nil {
		return Role{}, errors.Wrapf(err, "failed to look up role %q", name)
	}

	secret := password
	if a.scram {
		secret, err = scramVerifier(password, randReader)
		if err != nil {
			return Role{}, err
		}
	}

	verb := "CREATE"
	if exists {
		verb = "ALTER"
	}
	if err := a.exec(ctx, verb+" ROLE "+quote(name)+" WITH LOGIN CREATEDB PASSWORD $1", secret); err != nil {
		return Role{}, errors.Wrapf(err, "failed to %s role %q", strings.ToLower(verb), name)
	}

	if !exists {
		oid, _, err = a.lookupOID(ctx, queryRoleOID, name)
		if err != nil {
			return Role{}, errors.Wrapf(err, "failed to look up role %q", name)
		}
		logf.FromContext(ctx).Info("created role", "role", name)
	}

	return Role{Name: name, OID: oid, Created: !exists}, nil
}

// EnsureDatabase creates the database if it does not exist.
func (a *Admin) EnsureDatabase(ctx context.Context, name string) (Database, error) {
	if err := ValidateIdentifier(name); err != nil {
		return Database{}, err
	}

	oid, exists, err := a.lookupOID(ctx, queryDatabaseOID, name)
	if err != nil {
		return Database{}, errors.Wrapf(err, "failed to look up database %q", name)
	}
	if exists {
		return Database{Name: name, OID: oid}, nil
	}

	if err := a.exec(ctx, "CREATE DATABASE "+quote(name)); err != nil {
		return Database{}, errors.Wrapf(err, "failed to create database %q", name)
	}

	oid, _, err = a.lookupOID(ctx, queryDatabaseOID, name)
	if err != nil {
		return Database{}, errors.Wrapf(err, "failed to look up database %q", name)
	}
	logf.FromContext(ctx).Info("created database", "database", name)
	return Database{Name: name, OID: oid, Created: true}, nil
}

// EnsureGrant grants all privileges on database to role unless the role
// already holds any privilege there.
func (a *Admin) EnsureGrant(ctx context.Context, role, database string) (Grant, error) {
	for _, name := range []string{role, database} {
		if err := ValidateIdentifier(name); err != nil {
			return Grant{}, err
		}
	}

	grant := Grant{Role: role, Database: database, Privileges: AllPrivileges}

	var present bool
	if err := a.conn.QueryRow(ctx, queryGrantExists, database, role).Scan(&present); err != nil {
		return Grant{}, errors.Wrapf(err, "failed to inspect privileges of %q on %q", role, database)
	}
	if present {
		logf.FromContext(ctx).V(1).Info("role already holds privileges, leaving them as they are",
			"role", role, "database", database)
		return grant, nil
	}

	if err := a.exec(ctx, "GRANT ALL PRIVILEGES ON DATABASE "+quote(database)+" TO "+quote(role)); err != nil {
		return Grant{}, errors.Wrapf(err, "failed to grant privileges on %q to %q", database, role)
	}

	logf.FromContext(ctx).Info("granted privileges", "role", role, "database", database)
	grant.Created = true
	return grant, nil
}

// DropDatabase drops the database if it exists.
func (a *Admin) DropDatabase(ctx context.Context, name string) error {
	if err := ValidateIdentifier(name); err != nil {
		return err
	}
	if err := a.exec(ctx, "DROP DATABASE IF EXISTS "+quote(name)); err != nil {
		return errors.Wrapf(err, "failed to drop database %q", name)
	}
	return nil
}

// DropRole drops the role if it exists.
func (a *Admin) DropRole(ctx context.Context, name string) error {
	if err := ValidateIdentifier(name); err != nil {
		return err
	}
	if err := a.exec(ctx, "DROP ROLE IF EXISTS "+quote(name)); err != nil {
		return errors.Wrapf(err, "failed to drop role %q", name)
	}
	return nil
}

// exec uses the simple protocol so that $1 placeholders also work in
// utility statements such as CREATE ROLE, which cannot be prepared.
func (a *Admin) exec(ctx context.Context, sql string, arguments ...interface{}) error {
	arguments = append([]interface{}{pgx.QuerySimpleProtocol(true)}, arguments...)
	_, err := a.conn.Exec(ctx, sql, arguments...)
	return err
}

func (a *Admin) lookupOID(ctx context.Context, query, name string) (uint32, bool, error) {
	var oid uint32
	err := a.conn.QueryRow(ctx, query, name).Scan(&oid)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return oid, true, nil
}
