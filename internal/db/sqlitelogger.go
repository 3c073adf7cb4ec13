package db

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"log/slog"
	"time"

	sqlite3 "github.com/mattn/go-sqlite3"
)

// ErrReadOnly is returned for any statement executed through Exec.
var ErrReadOnly = errors.New("sqlite: dataset is opened read-only")

// readOnlyConnector opens sqlite3 connections that log every query at debug
// level and refuse Exec.
type readOnlyConnector struct {
	dsn    string
	logger *slog.Logger
	driver *sqlite3.SQLiteDriver
}

type readOnlyConn struct {
	conn   driver.Conn
	logger *slog.Logger
}

type readOnlyStmt struct {
	stmt   driver.Stmt
	query  string
	logger *slog.Logger
}

// NewReadOnlyConnector returns a driver.Connector for sql.OpenDB.
// If logger is nil, slog.Default() is used.
func NewReadOnlyConnector(dsn string, logger *slog.Logger) (driver.Connector, error) {
	if dsn == "" {
		return nil, errors.New("empty dsn")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &readOnlyConnector{dsn: dsn, logger: logger, driver: &sqlite3.SQLiteDriver{}}, nil
}

func (c *readOnlyConnector) Driver() driver.Driver {
	return readOnlyDriver{}
}

func (c *readOnlyConnector) Connect(ctx context.Context) (driver.Conn, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	conn, err := c.driver.Open(c.dsn)
	if err != nil {
		return nil, err
	}
	return &readOnlyConn{conn: conn, logger: c.logger}, nil
}

type readOnlyDriver struct{}

func (readOnlyDriver) Open(name string) (driver.Conn, error) {
	return nil, fmt.Errorf("sqlite3-ro: use sql.OpenDB(NewReadOnlyConnector(...)) instead of sql.Open")
}

func (c *readOnlyConn) Prepare(query string) (driver.Stmt, error) {
	return c.PrepareContext(context.Background(), query)
}

func (c *readOnlyConn) PrepareContext(ctx context.Context, query string) (driver.Stmt, error) {
	var (
		stmt driver.Stmt
		err  error
	)
	if prep, ok := c.conn.(driver.ConnPrepareContext); ok {
		stmt, err = prep.PrepareContext(ctx, query)
	} else {
		stmt, err = c.conn.Prepare(query)
	}
	if err != nil {
		return nil, err
	}
	return &readOnlyStmt{stmt: stmt, query: query, logger: c.logger}, nil
}

func (c *readOnlyConn) Close() error {
	return c.conn.Close()
}

func (c *readOnlyConn) Begin() (driver.Tx, error) {
	return c.BeginTx(context.Background(), driver.TxOptions{ReadOnly: true})
}

// BeginTx only hands out read-only transactions.
func (c *readOnlyConn) BeginTx(ctx context.Context, opts driver.TxOptions) (driver.Tx, error) {
	opts.ReadOnly = true
	if beginTx, ok := c.conn.(driver.ConnBeginTx); ok {
		return beginTx.BeginTx(ctx, opts)
	}
	//nolint:staticcheck // SA1019 – fallback when underlying conn does not implement ConnBeginTx
	return c.conn.Begin()
}

func (s *readOnlyStmt) Exec(args []driver.Value) (driver.Result, error) {
	s.logger.Warn("sql exec rejected", "sql", s.query)
	return nil, ErrReadOnly
}

func (s *readOnlyStmt) ExecContext(ctx context.Context, args []driver.NamedValue) (driver.Result, error) {
	s.logger.Warn("sql exec rejected", "sql", s.query)
	return nil, ErrReadOnly
}

func (s *readOnlyStmt) Query(args []driver.Value) (driver.Rows, error) {
	named := make([]driver.NamedValue, len(args))
	for i, v := range args {
		named[i] = driver.NamedValue{Ordinal: i + 1, Value: v}
	}
	return s.QueryContext(context.Background(), named)
}

func (s *readOnlyStmt) QueryContext(ctx context.Context, args []driver.NamedValue) (driver.Rows, error) {
	start := time.Now()
	var (
		rows driver.Rows
		err  error
	)
	if queryCtx, ok := s.stmt.(driver.StmtQueryContext); ok {
		rows, err = queryCtx.QueryContext(ctx, args)
	} else {
		//nolint:staticcheck // SA1019 – fallback when underlying stmt does not implement StmtQueryContext
		rows, err = s.stmt.Query(namedValuesToValues(args))
	}
	s.logQuery(args, time.Since(start), err)
	return rows, err
}

func (s *readOnlyStmt) Close() error {
	return s.stmt.Close()
}

// NumInput reports -1 (unknown) when the wrapped stmt cannot say.
func (s *readOnlyStmt) NumInput() int {
	if n, ok := s.stmt.(interface{ NumInput() int }); ok {
		return n.NumInput()
	}
	return -1
}

func (s *readOnlyStmt) logQuery(args []driver.NamedValue, took time.Duration, err error) {
	attrs := []any{
		"sql", s.query,
		"args", formatArgs(args),
		"duration_ms", took.Milliseconds(),
	}
	if err != nil {
		s.logger.Debug("sql query failed", append(attrs, "error", err)...)
		return
	}
	s.logger.Debug("sql query", attrs...)
}

func formatArgs(args []driver.NamedValue) []string {
	out := make([]string, len(args))
	for i, a := range args {
		if a.Name != "" {
			out[i] = a.Name + "=" + formatArg(a.Value)
		} else {
			out[i] = formatArg(a.Value)
		}
	}
	return out
}

func namedValuesToValues(args []driver.NamedValue) []driver.Value {
	out := make([]driver.Value, len(args))
	for i := range args {
		out[i] = args[i].Value
	}
	return out
}

func formatArg(v any) string {
	if v == nil {
		return "NULL"
	}
	switch t := v.(type) {
	case []byte:
		return string(t)
	default:
		return fmt.Sprint(t)
	}
}
