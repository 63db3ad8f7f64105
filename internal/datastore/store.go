// Package datastore is the row-level gateway to the hosted data store.
// Rows travel as JSON objects keyed by column name, so the same repository
// code runs against Postgres, a PostgREST endpoint, or the in-memory store.
package datastore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
)

// Row is a column -> value map written to the store.
type Row map[string]any

// Store is the minimal surface repositories need.
type Store interface {
	// Select decodes matching rows into dst, a pointer to a slice or to a
	// single struct (first row, ErrNoRows when nothing matched).
	Select(ctx context.Context, table string, q Query, dst any) error

	// Insert writes row and decodes the stored representation into dst (may be nil).
	Insert(ctx context.Context, table string, row Row, dst any) error

	// Update applies patch to every row matching where as a single conditional
	// statement and returns the number of rows touched.
	Update(ctx context.Context, table string, where []Predicate, patch Row, dst any) (int, error)

	// Delete removes every row matching where and returns how many were removed.
	Delete(ctx context.Context, table string, where []Predicate) (int, error)

	// Call invokes a stored function and decodes its result rows into dst.
	Call(ctx context.Context, fn string, args Row, dst any) error

	Ping(ctx context.Context) error
	Close()
}

// ErrNoRows is returned when a single-row destination matched nothing.
var ErrNoRows = errors.New("datastore: no rows")

// Error describes a failed store operation.
type Error struct {
	Op     string
	Table  string
	Status int
	Err    error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("datastore %s %s (status %d): %v", e.Op, e.Table, e.Status, e.Err)
	}
	return fmt.Sprintf("datastore %s %s: %v", e.Op, e.Table, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// IsConflict reports whether err is a unique-constraint violation.
func IsConflict(err error) bool {
	var se *Error
	return errors.As(err, &se) && se.Status == http.StatusConflict
}

// IsInvalidInput reports whether the store rejected a value, such as a
// malformed UUID or a dangling foreign key.
func IsInvalidInput(err error) bool {
	var se *Error
	return errors.As(err, &se) && se.Status == http.StatusBadRequest
}

func wrap(op, table string, status int, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNoRows) {
		return err
	}
	var se *Error
	if errors.As(err, &se) {
		return err
	}
	return &Error{Op: op, Table: table, Status: status, Err: err}
}

// decodeRows decodes a JSON array of rows into dst.
func decodeRows(data []byte, dst any) error {
	if dst == nil {
		return nil
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		data = []byte("[]")
	}
	if data[0] == '{' {
		data = append(append([]byte{'['}, data...), ']')
	}

	v := reflect.ValueOf(dst)
	if v.Kind() != reflect.Pointer || v.IsNil() {
		return fmt.Errorf("datastore: destination must be a non-nil pointer, got %T", dst)
	}
	if v.Elem().Kind() == reflect.Slice {
		return json.Unmarshal(data, dst)
	}

	var rows []json.RawMessage
	if err := json.Unmarshal(data, &rows); err != nil {
		return err
	}
	if len(rows) == 0 {
		return ErrNoRows
	}
	return json.Unmarshal(rows[0], dst)
}

// encodeRows joins single-row JSON documents into one array.
func encodeRows(rows [][]byte) []byte {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, r := range rows {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.Write(r)
	}
	buf.WriteByte(']')
	return buf.Bytes()
}
