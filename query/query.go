// Package query runs catalog statements and turns their rows into records.
package query

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shipq/catalogapi/dbconn"
	"github.com/shipq/catalogapi/failure"
	"github.com/shipq/catalogapi/querycat"
)

// Params maps placeholder names to values (int, string or time.Time).
type Params map[string]any

// Record is one row keyed by column name. Columns is shared by every record
// of a ResultSet.
type Record struct {
	Columns []string
	Values  []any
}

// Map returns the record as a column name to value map.
func (r Record) Map() map[string]any {
	m := make(map[string]any, len(r.Columns))
	for i, c := range r.Columns {
		m[c] = r.Values[i]
	}
	return m
}

// ResultSet holds the records of one statement in the order the database
// returned them.
type ResultSet struct {
	Columns []string
	Records []Record
}

// Len returns the number of records.
func (rs *ResultSet) Len() int { return len(rs.Records) }

// Runner executes catalog statements.
// *Executor implements this interface.
type Runner interface {
	Run(ctx context.Context, name querycat.Name, params Params) (*ResultSet, error)
}

// Executor acquires a connection per statement and releases it afterwards.
type Executor struct {
	conns  dbconn.Acquirer
	logger *slog.Logger
}

// NewExecutor creates an Executor that draws connections from conns.
func NewExecutor(conns dbconn.Acquirer, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Executor{conns: conns, logger: logger}
}

// Run resolves name in the query catalog and executes it.
func (e *Executor) Run(ctx context.Context, name querycat.Name, params Params) (*ResultSet, error) {
	rs, err := e.Execute(ctx, querycat.MustResolve(name), params)
	if err != nil {
		e.logger.Debug("query failed", "query", string(name), "error", err)
		return nil, err
	}
	e.logger.Debug("query executed", "query", string(name), "rows", rs.Len())
	return rs, nil
}

// Execute runs sqlText with params on a freshly acquired connection.
//
// A failure to acquire is returned as is (a failure.ConnectionFailure) and no
// release is attempted. Once acquired, the connection is closed exactly once
// whatever happens during execution. Driver errors become
// failure.UnexpectedFailure carrying the driver code and message. An empty
// result set is not an error.
func (e *Executor) Execute(ctx context.Context, sqlText string, params Params) (*ResultSet, error) {
	conn, err := e.conns.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := conn.Close(ctx); cerr != nil {
			e.logger.Warn("failed to close database connection", "error", cerr)
		}
	}()

	rows, err := conn.Query(ctx, sqlText, params)
	if err != nil {
		return nil, driverFailure(err)
	}
	defer rows.Close()

	cols := rows.Columns()
	rs := &ResultSet{Columns: cols, Records: []Record{}}
	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return nil, driverFailure(err)
		}
		if len(vals) != len(cols) {
			return nil, failure.Unexpectedf("row has %d values for %d columns", len(vals), len(cols))
		}
		rs.Records = append(rs.Records, Record{Columns: cols, Values: vals})
	}
	if err := rows.Err(); err != nil {
		return nil, driverFailure(err)
	}
	return rs, nil
}

func driverFailure(err error) error {
	var fe *failure.Error
	if errors.As(err, &fe) {
		return err
	}
	if code, msg, ok := dbconn.DriverError(err); ok {
		return failure.Driver(err, code, msg)
	}
	return failure.Unexpected(err)
}
