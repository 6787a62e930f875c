// Package db is the typed query layer over the sqlite store. It follows the
// sqlc layout (DBTX, Queries, WithTx) so repositories can run any query
// inside a transaction.
package db

import (
	"context"
	"database/sql"
	"strings"
)

type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	PrepareContext(context.Context, string) (*sql.Stmt, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{
		db: tx,
	}
}

// expandSlice replaces the /*SLICE:name*/? marker in query with one
// placeholder per value.
func expandSlice(query, name string, values []string) (string, []interface{}) {
	marker := "/*SLICE:" + name + "*/?"
	if len(values) == 0 {
		return strings.Replace(query, marker, "NULL", 1), nil
	}
	args := make([]interface{}, len(values))
	for i, v := range values {
		args[i] = v
	}
	placeholders := strings.Repeat(",?", len(values))[1:]
	return strings.Replace(query, marker, placeholders, 1), args
}
