// Package dbconn opens single-use database connections.
//
// Every call to Provisioner.Acquire dials a fresh connection. Nothing is
// pooled or shared between callers; the caller releases the connection with
// Conn.Close once its statement has run.
package dbconn

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shipq/catalogapi/dburl"
	"github.com/shipq/catalogapi/failure"
)

// Conn is a live connection that can run one parameterized statement at a time.
type Conn interface {
	// Query runs sql with @name placeholders bound from params.
	Query(ctx context.Context, sql string, params map[string]any) (Rows, error)
	Close(ctx context.Context) error
}

// Rows iterates over the result of Conn.Query.
type Rows interface {
	Columns() []string
	Next() bool
	// Values returns the current row with driver values normalized to
	// plain Go scalars.
	Values() ([]any, error)
	Err() error
	Close() error
}

// Acquirer hands out connections.
// *Provisioner implements this interface.
type Acquirer interface {
	Acquire(ctx context.Context) (Conn, error)
}

type connectFunc func(ctx context.Context, p dburl.Parts) (Conn, error)

// Provisioner dials connections using a fixed set of connection values.
type Provisioner struct {
	parts   dburl.Parts
	dialers map[string]connectFunc
}

// New returns a Provisioner for the given connection values.
func New(parts dburl.Parts) *Provisioner {
	return &Provisioner{
		parts: parts,
		dialers: map[string]connectFunc{
			dburl.DialectPostgres: connectPostgres,
			dburl.DialectMySQL:    connectMySQL,
			dburl.DialectSQLite:   connectSQLite,
		},
	}
}

// Acquire opens a new connection. Any failure, including missing connection
// values, is reported as a failure.ConnectionFailure carrying the cause.
func (p *Provisioner) Acquire(ctx context.Context) (Conn, error) {
	if missing := p.parts.Missing(); len(missing) > 0 {
		return nil, failure.Connection(fmt.Errorf("missing database configuration: %s", strings.Join(missing, ", ")))
	}

	dial, ok := p.dialers[p.parts.Dialect]
	if !ok {
		return nil, failure.Connection(fmt.Errorf("%w: %q", dburl.ErrUnknownDialect, p.parts.Dialect))
	}

	conn, err := dial(ctx, p.parts)
	if err != nil {
		return nil, failure.Connection(err)
	}
	return conn, nil
}

// ErrMissingParam is returned when a statement references a placeholder that
// has no value in the parameter set.
var ErrMissingParam = errors.New("missing query parameter")

// placeholders returns the @name placeholders of query in order of
// appearance. Text inside single-quoted literals is skipped.
func placeholders(query string) []string {
	var names []string
	inQuote := false
	for i := 0; i < len(query); i++ {
		c := query[i]
		switch {
		case c == '\'':
			inQuote = !inQuote
		case c == '@' && !inQuote:
			j := i + 1
			for j < len(query) && isIdentByte(query[j]) {
				j++
			}
			if j > i+1 {
				names = append(names, query[i+1:j])
				i = j - 1
			}
		}
	}
	return names
}

func isIdentByte(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// checkParams verifies every placeholder in query has a value.
func checkParams(query string, params map[string]any) error {
	for _, name := range placeholders(query) {
		if _, ok := params[name]; !ok {
			return fmt.Errorf("%w: @%s", ErrMissingParam, name)
		}
	}
	return nil
}

// rewritePositional replaces each @name placeholder with ? and returns the
// matching arguments in order, for drivers without named parameter support.
func rewritePositional(query string, params map[string]any) (string, []any, error) {
	var b strings.Builder
	var args []any
	inQuote := false
	for i := 0; i < len(query); i++ {
		c := query[i]
		if c == '\'' {
			inQuote = !inQuote
		}
		if c != '@' || inQuote {
			b.WriteByte(c)
			continue
		}
		j := i + 1
		for j < len(query) && isIdentByte(query[j]) {
			j++
		}
		if j == i+1 {
			b.WriteByte(c)
			continue
		}
		name := query[i+1 : j]
		v, ok := params[name]
		if !ok {
			return "", nil, fmt.Errorf("%w: @%s", ErrMissingParam, name)
		}
		b.WriteByte('?')
		args = append(args, v)
		i = j - 1
	}
	return b.String(), args, nil
}
