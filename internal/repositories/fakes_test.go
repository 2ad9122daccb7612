package repositories

import (
	"context"
	"errors"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
)

type execCall struct {
	sql  string
	args []interface{}
}

// fakeDB answers Exec with a canned command tag and QueryRow with a canned row.
type fakeDB struct {
	execTag pgconn.CommandTag
	execErr error
	row     pgx.Row
	execs   []execCall
	queries []execCall
}

func (f *fakeDB) Exec(_ context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error) {
	f.execs = append(f.execs, execCall{sql: sql, args: args})
	return f.execTag, f.execErr
}

func (f *fakeDB) Query(context.Context, string, ...interface{}) (pgx.Rows, error) {
	return nil, errors.New("fakeDB: Query not supported")
}

func (f *fakeDB) QueryRow(_ context.Context, sql string, args ...interface{}) pgx.Row {
	f.queries = append(f.queries, execCall{sql: sql, args: args})
	return f.row
}

func (f *fakeDB) Begin(context.Context) (pgx.Tx, error) {
	return nil, errors.New("fakeDB: Begin not supported")
}

type rowFunc func(dest ...interface{}) error

func (fn rowFunc) Scan(dest ...interface{}) error { return fn(dest...) }
