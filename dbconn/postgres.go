package dbconn

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/shipq/catalogapi/dburl"
)

type pgConn struct {
	conn *pgx.Conn
}

func connectPostgres(ctx context.Context, p dburl.Parts) (Conn, error) {
	conn, err := pgx.Connect(ctx, dburl.BuildPostgresURL(p))
	if err != nil {
		return nil, err
	}
	return &pgConn{conn: conn}, nil
}

func (c *pgConn) Query(ctx context.Context, sql string, params map[string]any) (Rows, error) {
	if err := checkParams(sql, params); err != nil {
		return nil, err
	}

	var args []any
	if len(params) > 0 {
		args = append(args, pgx.NamedArgs(params))
	}
	rows, err := c.conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}

	fields := rows.FieldDescriptions()
	cols := make([]string, len(fields))
	for i, f := range fields {
		cols[i] = f.Name
	}
	return &pgRows{rows: rows, cols: cols}, nil
}

func (c *pgConn) Close(ctx context.Context) error {
	return c.conn.Close(ctx)
}

type pgRows struct {
	rows pgx.Rows
	cols []string
}

func (r *pgRows) Columns() []string { return r.cols }

func (r *pgRows) Next() bool { return r.rows.Next() }

func (r *pgRows) Values() ([]any, error) {
	vals, err := r.rows.Values()
	if err != nil {
		return nil, err
	}
	for i, v := range vals {
		vals[i] = normalizePg(v)
	}
	return vals, nil
}

func (r *pgRows) Err() error { return r.rows.Err() }

func (r *pgRows) Close() error {
	r.rows.Close()
	return r.rows.Err()
}

// normalizePg converts pgx-specific value types to plain Go scalars.
func normalizePg(v any) any {
	switch n := v.(type) {
	case pgtype.Numeric:
		if !n.Valid {
			return nil
		}
		f, err := n.Float64Value()
		if err != nil || !f.Valid {
			return nil
		}
		return f.Float64
	case []byte:
		return string(n)
	default:
		return v
	}
}
