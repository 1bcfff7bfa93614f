package postgres

import (
	"context"

	"github.com/go-logr/logr"
	"github.com/jackc/pgx/v4"
)

func newPgxLogr(l logr.Logger) *pgxLogr {
	return &pgxLogr{l: l}
}

// pgxLogr adapts pgx's logger interface onto logr.
type pgxLogr struct {
	l logr.Logger
}

func (pl *pgxLogr) Log(_ context.Context, level pgx.LogLevel, msg string, data map[string]interface{}) {
	values := make([]interface{}, 0, len(data)*2)
	for k, v := range data {
		if k == "args" {
			continue
		}
		values = append(values, k, v)
	}

	log := pl.l.WithValues(values...)

	switch level {
	case pgx.LogLevelError:
		var err error
		if dataErr, ok := data["err"].(error); ok {
			err = dataErr
		}
		log.Error(err, msg)
	case pgx.LogLevelWarn, pgx.LogLevelInfo:
		log.WithValues("pgx_level", level.String()).Info(msg)
	default:
		log.V(1).WithValues("pgx_level", level.String()).Info(msg)
	}
}
