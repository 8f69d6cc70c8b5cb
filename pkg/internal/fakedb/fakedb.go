// Package fakedb is an in-memory database/sql driver returning canned rows.
package fakedb

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"sync"
)

const DriverName = "fakedb"

type Rows struct {
	Names  []string
	Values [][]driver.Value
}

type store struct {
	mu      sync.Mutex
	rows    map[string]Rows
	queries map[string][]Query
}

// Query records a statement executed against a DSN.
type Query struct {
	SQL  string
	Args []driver.Value
}

var db = store{
	rows:    make(map[string]Rows),
	queries: make(map[string][]Query),
}

func init() {
	sql.Register(DriverName, &Driver{})
}

// Set installs the rows every query on dsn returns.
func Set(dsn string, rows Rows) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.rows[dsn] = rows
	delete(db.queries, dsn)
}

// Queries returns the statements run on dsn since the last Set.
func Queries(dsn string) []Query {
	db.mu.Lock()
	defer db.mu.Unlock()
	return append([]Query(nil), db.queries[dsn]...)
}

type Driver struct{}

func (drv *Driver) Open(dsn string) (driver.Conn, error) {
	return &conn{dsn: dsn}, nil
}

type conn struct {
	dsn string
}

func (c *conn) Prepare(query string) (driver.Stmt, error) {
	return &stmt{dsn: c.dsn, query: query}, nil
}

func (c *conn) Close() error { return nil }

func (c *conn) Begin() (driver.Tx, error) {
	return nil, errors.New("fakedb: transactions not supported")
}

type stmt struct {
	dsn   string
	query string
}

func (s *stmt) Close() error { return nil }

func (s *stmt) NumInput() int { return -1 }

func (s *stmt) Exec(args []driver.Value) (driver.Result, error) {
	return nil, errors.New("fakedb: exec not supported")
}

func (s *stmt) Query(args []driver.Value) (driver.Rows, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.queries[s.dsn] = append(db.queries[s.dsn], Query{SQL: s.query, Args: args})
	canned := db.rows[s.dsn]
	return &rows{
		names:  canned.Names,
		values: append([][]driver.Value(nil), canned.Values...),
	}, nil
}

type rows struct {
	names  []string
	values [][]driver.Value
}

func (r *rows) Columns() []string { return r.names }

func (r *rows) Close() error { return nil }

func (r *rows) Next(dest []driver.Value) error {
	if len(r.values) == 0 {
		return io.EOF
	}
	copy(dest, r.values[0])
	r.values = r.values[1:]
	return nil
}

var (
	_ driver.Driver = (*Driver)(nil)
	_ driver.Conn   = (*conn)(nil)
	_ driver.Stmt   = (*stmt)(nil)
	_ driver.Rows   = (*rows)(nil)
)
