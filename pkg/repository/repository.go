// Package repository provides generic database access helpers built on
// database/sql with error mapping.
package repository

import (
	"context"
	"database/sql"
)

// Scanner abstracts row scanning for single-row queries.
type Scanner interface {
	Scan(dest ...any) error
}

// RowMapper converts a scanned row into a value of type T.
type RowMapper[T any] func(Scanner) (T, error)

// QueryOne executes a query expected to return a single row and maps it
// to T. Missing rows surface as ErrNotFound.
func QueryOne[T any](ctx context.Context, db *sql.DB, mapper RowMapper[T], query string, args ...any) (T, error) {
	var zero T

	row := db.QueryRowContext(ctx, query, args...)
	result, err := mapper(row)
	if err != nil {
		return zero, MapError(err)
	}

	return result, nil
}

// QueryMany executes a query and maps every returned row to T.
func QueryMany[T any](ctx context.Context, db *sql.DB, mapper RowMapper[T], query string, args ...any) ([]T, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, MapError(err)
	}
	defer rows.Close()

	results := make([]T, 0)
	for rows.Next() {
		result, err := mapper(rows)
		if err != nil {
			return nil, MapError(err)
		}
		results = append(results, result)
	}

	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return results, nil
}

// QueryCount executes a COUNT query returning a single integer.
func QueryCount(ctx context.Context, db *sql.DB, query string, args ...any) (int, error) {
	var count int
	if err := db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, MapError(err)
	}
	return count, nil
}

// Exec executes a statement and returns the number of affected rows.
func Exec(ctx context.Context, db *sql.DB, query string, args ...any) (int64, error) {
	result, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, MapError(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, MapError(err)
	}

	return affected, nil
}

// ExecExpectOne executes a statement that must affect exactly one row.
// Zero affected rows surface as ErrNoRowsChanged.
func ExecExpectOne(ctx context.Context, db *sql.DB, query string, args ...any) error {
	affected, err := Exec(ctx, db, query, args...)
	if err != nil {
		return err
	}

	if affected == 0 {
		return ErrNoRowsChanged
	}

	return nil
}
