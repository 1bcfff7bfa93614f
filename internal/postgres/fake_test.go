package postgres

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
)

// fakeConn keeps a tiny catalog of roles, databases and ACL entries and
// records every statement it executes.
type fakeConn struct {
	mu sync.Mutex

	roles     map[string]uint32
	databases map[string]uint32
	acl       map[string]bool // "database/role"
	nextOID   uint32

	statements []string
	args       [][]interface{}

	execErr  map[string]error // statement prefix -> error
	queryErr error
	pingErr  error
	closed   bool
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		roles:     map[string]uint32{"postgres": 10},
		databases: map[string]uint32{"postgres": 5},
		acl:       map[string]bool{},
		nextOID:   16384,
		execErr:   map[string]error{},
	}
}

var quotedName = regexp.MustCompile(`"([^"]+)"`)

func (f *fakeConn) Exec(_ context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.statements = append(f.statements, sql)
	f.args = append(f.args, arguments)

	for prefix, err := range f.execErr {
		if strings.HasPrefix(sql, prefix) {
			return nil, err
		}
	}

	names := quotedName.FindAllStringSubmatch(sql, -1)
	switch {
	case strings.HasPrefix(sql, "CREATE ROLE"):
		f.roles[names[0][1]] = f.allocOID()
	case strings.HasPrefix(sql, "CREATE DATABASE"):
		f.databases[names[0][1]] = f.allocOID()
	case strings.HasPrefix(sql, "GRANT"):
		f.acl[names[0][1]+"/"+names[1][1]] = true
	case strings.HasPrefix(sql, "DROP DATABASE"):
		delete(f.databases, names[0][1])
	case strings.HasPrefix(sql, "DROP ROLE"):
		delete(f.roles, names[0][1])
	}
	return pgconn.CommandTag(strings.Fields(sql)[0]), nil
}

func (f *fakeConn) allocOID() uint32 {
	f.nextOID++
	return f.nextOID
}

func (f *fakeConn) QueryRow(_ context.Context, sql string, args ...interface{}) pgx.Row {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.queryErr != nil {
		return &fakeRow{err: f.queryErr}
	}

	switch sql {
	case queryRoleOID:
		oid, ok := f.roles[args[0].(string)]
		if !ok {
			return &fakeRow{err: pgx.ErrNoRows}
		}
		return &fakeRow{value: oid}
	case queryDatabaseOID:
		oid, ok := f.databases[args[0].(string)]
		if !ok {
			return &fakeRow{err: pgx.ErrNoRows}
		}
		return &fakeRow{value: oid}
	case queryGrantExists:
		return &fakeRow{value: f.acl[args[0].(string)+"/"+args[1].(string)]}
	}
	return &fakeRow{err: fmt.Errorf("unexpected query %q", sql)}
}

func (f *fakeConn) Ping(context.Context) error { return f.pingErr }

func (f *fakeConn) Close(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeConn) executed() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.statements...)
}

type fakeRow struct {
	value interface{}
	err   error
}

func (r *fakeRow) Scan(dest ...interface{}) error {
	if r.err != nil {
		return r.err
	}
	switch d := dest[0].(type) {
	case *uint32:
		*d = r.value.(uint32)
	case *bool:
		*d = r.value.(bool)
	default:
		return fmt.Errorf("unsupported scan target %T", dest[0])
	}
	return nil
}
