package datastore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres is a Store over a pgx pool. Rows are produced with row_to_json and
// written through jsonb_populate_record, so column types are resolved by the
// database rather than by Go.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres wraps an open pool.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (p *Postgres) Select(ctx context.Context, table string, q Query, dst any) error {
	sql, args := buildSelect(table, q)
	data, err := p.collect(ctx, sql, args...)
	if err != nil {
		return wrap("select", table, pgStatus(err), err)
	}
	return decodeRows(data, dst)
}

func (p *Postgres) Insert(ctx context.Context, table string, row Row, dst any) error {
	sql, args, err := buildInsert(table, row)
	if err != nil {
		return wrap("insert", table, 0, err)
	}
	data, err := p.collect(ctx, sql, args...)
	if err != nil {
		return wrap("insert", table, pgStatus(err), err)
	}
	return decodeRows(data, dst)
}

func (p *Postgres) Update(ctx context.Context, table string, where []Predicate, patch Row, dst any) (int, error) {
	sql, args, err := buildUpdate(table, where, patch)
	if err != nil {
		return 0, wrap("update", table, 0, err)
	}
	rows, err := p.rows(ctx, sql, args...)
	if err != nil {
		return 0, wrap("update", table, pgStatus(err), err)
	}
	if len(rows) > 0 {
		if err := decodeRows(encodeRows(rows), dst); err != nil {
			return len(rows), err
		}
	}
	return len(rows), nil
}

func (p *Postgres) Delete(ctx context.Context, table string, where []Predicate) (int, error) {
	clause, args := whereClause(where, 1)
	tag, err := p.pool.Exec(ctx, "DELETE FROM "+ident(table)+" AS t"+clause, args...)
	if err != nil {
		return 0, wrap("delete", table, pgStatus(err), err)
	}
	return int(tag.RowsAffected()), nil
}

func (p *Postgres) Call(ctx context.Context, fn string, args Row, dst any) error {
	keys := sortedKeys(args)
	params := make([]string, len(keys))
	vals := make([]any, len(keys))
	for i, k := range keys {
		params[i] = fmt.Sprintf("%s => $%d", ident(k), i+1)
		vals[i] = args[k]
	}
	sql := fmt.Sprintf("SELECT row_to_json(r) FROM %s(%s) AS r", ident(fn), strings.Join(params, ", "))
	data, err := p.collect(ctx, sql, vals...)
	if err != nil {
		return wrap("call", fn, 0, err)
	}
	return decodeRows(data, dst)
}

func (p *Postgres) Ping(ctx context.Context) error { return p.pool.Ping(ctx) }

func (p *Postgres) Close() { p.pool.Close() }

func (p *Postgres) rows(ctx context.Context, sql string, args ...any) ([][]byte, error) {
	rows, err := p.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[[]byte])
}

func (p *Postgres) collect(ctx context.Context, sql string, args ...any) ([]byte, error) {
	rows, err := p.rows(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return encodeRows(rows), nil
}

func buildSelect(table string, q Query) (string, []any) {
	clause, args := whereClause(q.Where, 1)
	var b strings.Builder
	b.WriteString("SELECT row_to_json(t) FROM ")
	b.WriteString(ident(table))
	b.WriteString(" AS t")
	b.WriteString(clause)
	if len(q.Order) > 0 {
		parts := make([]string, len(q.Order))
		for i, o := range q.Order {
			dir := " ASC NULLS LAST"
			if o.Desc {
				dir = " DESC NULLS FIRST"
			}
			parts[i] = "t." + ident(o.Column) + dir
		}
		b.WriteString(" ORDER BY ")
		b.WriteString(strings.Join(parts, ", "))
	}
	if q.Limit > 0 {
		fmt.Fprintf(&b, " LIMIT %d", q.Limit)
	}
	return b.String(), args
}

func buildInsert(table string, row Row) (string, []any, error) {
	if len(row) == 0 {
		return "", nil, fmt.Errorf("empty row")
	}
	doc, err := json.Marshal(row)
	if err != nil {
		return "", nil, fmt.Errorf("encode row: %w", err)
	}
	cols := make([]string, 0, len(row))
	for _, k := range sortedKeys(row) {
		cols = append(cols, ident(k))
	}
	list := strings.Join(cols, ", ")
	sql := fmt.Sprintf(
		"INSERT INTO %[1]s AS t (%[2]s) SELECT %[2]s FROM jsonb_populate_record(NULL::%[1]s, $1::jsonb) RETURNING row_to_json(t)",
		ident(table), list)
	return sql, []any{doc}, nil
}

func buildUpdate(table string, where []Predicate, patch Row) (string, []any, error) {
	if len(patch) == 0 {
		return "", nil, fmt.Errorf("empty patch")
	}
	doc, err := json.Marshal(patch)
	if err != nil {
		return "", nil, fmt.Errorf("encode patch: %w", err)
	}
	sets := make([]string, 0, len(patch))
	for _, k := range sortedKeys(patch) {
		sets = append(sets, fmt.Sprintf("%[1]s = r.%[1]s", ident(k)))
	}
	clause, args := whereClause(where, 2)
	sql := fmt.Sprintf(
		"UPDATE %[1]s AS t SET %[2]s FROM jsonb_populate_record(NULL::%[1]s, $1::jsonb) AS r%[3]s RETURNING row_to_json(t)",
		ident(table), strings.Join(sets, ", "), clause)
	return sql, append([]any{doc}, args...), nil
}

var sqlOps = map[Op]string{
	OpEq:  "=",
	OpNeq: "<>",
	OpGt:  ">",
	OpGte: ">=",
	OpLt:  "<",
	OpLte: "<=",
}

// whereClause renders predicates against alias t, numbering params from start.
func whereClause(preds []Predicate, start int) (string, []any) {
	if len(preds) == 0 {
		return "", nil
	}
	parts := make([]string, 0, len(preds))
	args := make([]any, 0, len(preds))
	n := start
	for _, pr := range preds {
		col := "t." + ident(pr.Column)
		if pr.Op == OpIs {
			parts = append(parts, col+" IS NULL")
			continue
		}
		op, ok := sqlOps[pr.Op]
		if !ok {
			op = "="
		}
		parts = append(parts, fmt.Sprintf("%s %s $%d", col, op, n))
		args = append(args, pr.Value)
		n++
	}
	return " WHERE " + strings.Join(parts, " AND "), args
}

func ident(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// pgStatus maps Postgres error classes onto HTTP-style statuses.
func pgStatus(err error) int {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return 0
	}
	switch pgErr.Code {
	case "23505":
		return http.StatusConflict
	case "23503", "23502", "23514", "22P02":
		return http.StatusBadRequest
	}
	return 0
}
