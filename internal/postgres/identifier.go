package postgres

import (
	"strings"

	"github.com/jackc/pgx/v4"
	"github.com/pkg/errors"
	postgresqlreservedwords "github.com/rstudio/postgresql-reserved-words"
)

// maxIdentifierLength is NAMEDATALEN-1 on a stock server.
const maxIdentifierLength = 63

// ErrInvalidIdentifier is returned for role or database names the server
// would truncate or reject.
var ErrInvalidIdentifier = errors.New("invalid postgres identifier")

// ValidateIdentifier checks a role or database name. Names are always
// quoted, so characters such as '-' are allowed.
func ValidateIdentifier(name string) error {
	if name == "" {
		return errors.Wrap(ErrInvalidIdentifier, "name is empty")
	}
	if len(name) > maxIdentifierLength {
		return errors.Wrapf(ErrInvalidIdentifier, "%q is longer than %d bytes", name, maxIdentifierLength)
	}
	if strings.ContainsRune(name, 0) {
		return errors.Wrapf(ErrInvalidIdentifier, "%q contains a NUL byte", name)
	}
	if postgresqlreservedwords.IsReserved(strings.ToLower(name)) {
		return errors.Wrapf(ErrInvalidIdentifier, "%q is a reserved word", name)
	}
	return nil
}

func quote(name string) string {
	return pgx.Identifier{name}.Sanitize()
}
