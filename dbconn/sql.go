package dbconn

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"

	"github.com/shipq/catalogapi/dburl"
)

// binder turns a statement with @name placeholders into something the driver
// accepts.
type binder func(query string, params map[string]any) (string, []any, error)

// sqlConn is a single connection taken from a database/sql handle that is
// limited to one connection and closed together with it.
type sqlConn struct {
	db   *sql.DB
	conn *sql.Conn
	bind binder
}

func connectMySQL(ctx context.Context, p dburl.Parts) (Conn, error) {
	cfg := mysql.NewConfig()
	cfg.User = p.User
	cfg.Passwd = p.Password
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(p.Host, p.Port)
	cfg.DBName = p.Name
	cfg.ParseTime = true

	connector, err := mysql.NewConnector(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to configure MySQL connection: %w", err)
	}
	return openSQL(ctx, sql.OpenDB(connector), rewritePositional)
}

func connectSQLite(ctx context.Context, p dburl.Parts) (Conn, error) {
	// The driver creates missing files; a missing catalog is a connection error.
	if p.Name != ":memory:" {
		if _, err := os.Stat(p.Name); err != nil {
			return nil, fmt.Errorf("failed to open SQLite database: %w", err)
		}
	}
	db, err := sql.Open("sqlite", p.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}
	return openSQL(ctx, db, bindSQLite)
}

func openSQL(ctx context.Context, db *sql.DB, bind binder) (Conn, error) {
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	conn, err := db.Conn(ctx)
	if err != nil {
		db.Close()
		return nil, err
	}
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		db.Close()
		return nil, err
	}
	return &sqlConn{db: db, conn: conn, bind: bind}, nil
}

// sqliteTimeLayout is the text form SQLite's own datetime() produces.
// Stored timestamps are compared as text, so a bound time must use the same
// layout: no zone suffix, and no fractional part when it is zero.
const sqliteTimeLayout = "2006-01-02 15:04:05.999999999"

func bindSQLite(query string, params map[string]any) (string, []any, error) {
	if err := checkParams(query, params); err != nil {
		return "", nil, err
	}
	args := make([]any, 0, len(params))
	for name, v := range params {
		if t, ok := v.(time.Time); ok {
			v = t.UTC().Format(sqliteTimeLayout)
		}
		args = append(args, sql.Named(name, v))
	}
	return query, args, nil
}

func (c *sqlConn) Query(ctx context.Context, query string, params map[string]any) (Rows, error) {
	stmt, args, err := c.bind(query, params)
	if err != nil {
		return nil, err
	}
	rows, err := c.conn.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	cols, err := rows.Columns()
	if err != nil {
		rows.Close()
		return nil, err
	}
	return &sqlRows{rows: rows, cols: cols}, nil
}

func (c *sqlConn) Close(_ context.Context) error {
	err := c.conn.Close()
	if dbErr := c.db.Close(); err == nil {
		err = dbErr
	}
	return err
}

type sqlRows struct {
	rows *sql.Rows
	cols []string
}

func (r *sqlRows) Columns() []string { return r.cols }

func (r *sqlRows) Next() bool { return r.rows.Next() }

func (r *sqlRows) Values() ([]any, error) {
	vals := make([]any, len(r.cols))
	ptrs := make([]any, len(r.cols))
	for i := range ptrs {
		ptrs[i] = &vals[i]
	}
	if err := r.rows.Scan(ptrs...); err != nil {
		return nil, err
	}
	for i, v := range vals {
		if b, ok := v.([]byte); ok {
			vals[i] = string(b)
		}
	}
	return vals, nil
}

func (r *sqlRows) Err() error { return r.rows.Err() }

func (r *sqlRows) Close() error { return r.rows.Close() }
