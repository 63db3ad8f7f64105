package datastore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Func is a stored function served by Memory.Call.
type Func func(ctx context.Context, s Store, args Row) (any, error)

// Memory is an in-process Store. Rows are kept as normalized JSON values,
// a missing column reads as null, and id/created_at/updated_at are filled
// on insert when absent.
type Memory struct {
	mu      sync.Mutex
	tables  map[string][]map[string]any
	uniques map[string][][]string
	funcs   map[string]Func
	now     func() time.Time
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		tables:  make(map[string][]map[string]any),
		uniques: make(map[string][][]string),
		funcs:   make(map[string]Func),
		now:     time.Now,
	}
}

// SetClock overrides the clock used for generated timestamps.
func (m *Memory) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

// Unique declares a unique constraint over cols on table.
func (m *Memory) Unique(table string, cols ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.uniques[table] = append(m.uniques[table], cols)
}

// RegisterFunc makes fn callable through Call.
func (m *Memory) RegisterFunc(name string, fn Func) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.funcs[name] = fn
}

func (m *Memory) Select(_ context.Context, table string, q Query, dst any) error {
	where, err := normalizePredicates(q.Where)
	if err != nil {
		return wrap("select", table, http.StatusBadRequest, err)
	}

	m.mu.Lock()
	var out []map[string]any
	for _, r := range m.tables[table] {
		if matchAll(r, where) {
			out = append(out, r)
		}
	}
	m.mu.Unlock()

	if len(q.Order) > 0 {
		sort.SliceStable(out, func(i, j int) bool {
			for _, o := range q.Order {
				c := compareNullsLast(out[i][o.Column], out[j][o.Column])
				if c == 0 {
					continue
				}
				if o.Desc {
					return c > 0
				}
				return c < 0
			}
			return false
		})
	}
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return m.emit(out, dst)
}

func (m *Memory) Insert(_ context.Context, table string, row Row, dst any) error {
	r, err := normalize(row)
	if err != nil {
		return wrap("insert", table, http.StatusBadRequest, err)
	}

	m.mu.Lock()
	now := m.now().UTC().Format(time.RFC3339Nano)
	if s, _ := r["id"].(string); s == "" {
		r["id"] = uuid.NewString()
	}
	for _, col := range []string{"created_at", "updated_at"} {
		if r[col] == nil {
			r[col] = now
		}
	}
	if err := m.checkUnique(table, r, nil); err != nil {
		m.mu.Unlock()
		return wrap("insert", table, http.StatusConflict, err)
	}
	m.tables[table] = append(m.tables[table], r)
	m.mu.Unlock()

	return m.emit([]map[string]any{r}, dst)
}

func (m *Memory) Update(_ context.Context, table string, where []Predicate, patch Row, dst any) (int, error) {
	p, err := normalize(patch)
	if err != nil {
		return 0, wrap("update", table, http.StatusBadRequest, err)
	}
	preds, err := normalizePredicates(where)
	if err != nil {
		return 0, wrap("update", table, http.StatusBadRequest, err)
	}

	m.mu.Lock()
	var touched []map[string]any
	rows := m.tables[table]
	for i, r := range rows {
		if !matchAll(r, preds) {
			continue
		}
		next := make(map[string]any, len(r)+len(p))
		for k, v := range r {
			next[k] = v
		}
		for k, v := range p {
			next[k] = v
		}
		if err := m.checkUnique(table, next, r); err != nil {
			m.mu.Unlock()
			return 0, wrap("update", table, http.StatusConflict, err)
		}
		rows[i] = next
		touched = append(touched, next)
	}
	m.mu.Unlock()

	if len(touched) == 0 {
		return 0, nil
	}
	return len(touched), m.emit(touched, dst)
}

func (m *Memory) Delete(_ context.Context, table string, where []Predicate) (int, error) {
	preds, err := normalizePredicates(where)
	if err != nil {
		return 0, wrap("delete", table, http.StatusBadRequest, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	rows := m.tables[table]
	kept := rows[:0:0]
	removed := 0
	for _, r := range rows {
		if matchAll(r, preds) {
			removed++
			continue
		}
		kept = append(kept, r)
	}
	m.tables[table] = kept
	return removed, nil
}

// Call runs a registered function. The store lock is not held while it runs,
// so the function may use s freely.
func (m *Memory) Call(ctx context.Context, fn string, args Row, dst any) error {
	m.mu.Lock()
	f, ok := m.funcs[fn]
	m.mu.Unlock()
	if !ok {
		return &Error{Op: "call", Table: fn, Status: http.StatusNotFound, Err: fmt.Errorf("function %s not registered", fn)}
	}
	res, err := f(ctx, m, args)
	if err != nil {
		return wrap("call", fn, 0, err)
	}
	data, err := json.Marshal(res)
	if err != nil {
		return wrap("call", fn, 0, err)
	}
	return decodeRows(data, dst)
}

func (m *Memory) Ping(context.Context) error { return nil }

func (m *Memory) Close() {}

// Len returns the number of rows in table.
func (m *Memory) Len(table string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tables[table])
}

func (m *Memory) emit(rows []map[string]any, dst any) error {
	if dst == nil {
		return nil
	}
	if rows == nil {
		rows = []map[string]any{}
	}
	data, err := json.Marshal(rows)
	if err != nil {
		return err
	}
	return decodeRows(data, dst)
}

// checkUnique must be called with m.mu held. prev is the row being replaced, if any.
func (m *Memory) checkUnique(table string, r, prev map[string]any) error {
	for _, cols := range m.uniques[table] {
		for _, other := range m.tables[table] {
			if prev != nil && sameRow(other, prev) {
				continue
			}
			if sameOn(r, other, cols) {
				return fmt.Errorf("duplicate key violates unique constraint on (%s)", strings.Join(cols, ", "))
			}
		}
	}
	return nil
}

func sameRow(a, b map[string]any) bool {
	return a["id"] != nil && a["id"] == b["id"]
}

func sameOn(a, b map[string]any, cols []string) bool {
	for _, c := range cols {
		if a[c] == nil || b[c] == nil {
			return false
		}
		if compare(a[c], b[c]) != 0 {
			return false
		}
	}
	return true
}

// normalize round-trips v through JSON so stored values are strings,
// json.Number, bool, nil, []any or map[string]any.
func normalize(row Row) (map[string]any, error) {
	data, err := json.Marshal(row)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	out := map[string]any{}
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

func normalizePredicates(preds []Predicate) ([]Predicate, error) {
	out := make([]Predicate, len(preds))
	for i, p := range preds {
		out[i] = p
		if p.Op == OpIs {
			continue
		}
		data, err := json.Marshal(p.Value)
		if err != nil {
			return nil, err
		}
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		var v any
		if err := dec.Decode(&v); err != nil {
			return nil, err
		}
		out[i].Value = v
	}
	return out, nil
}

func matchAll(r map[string]any, preds []Predicate) bool {
	for _, p := range preds {
		if !match(r[p.Column], p) {
			return false
		}
	}
	return true
}

// match follows SQL semantics: a null column satisfies only IS NULL.
func match(v any, p Predicate) bool {
	if p.Op == OpIs {
		return v == nil
	}
	if v == nil || p.Value == nil {
		return false
	}
	c := compare(v, p.Value)
	switch p.Op {
	case OpEq:
		return c == 0
	case OpNeq:
		return c != 0
	case OpGt:
		return c > 0
	case OpGte:
		return c >= 0
	case OpLt:
		return c < 0
	case OpLte:
		return c <= 0
	}
	return false
}

func compareNullsLast(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}
	return compare(a, b)
}

// compare orders two normalized values. Numbers compare numerically and
// strings that both parse as RFC 3339 timestamps compare chronologically.
func compare(a, b any) int {
	switch x := a.(type) {
	case json.Number:
		if y, ok := b.(json.Number); ok {
			fx, _ := x.Float64()
			fy, _ := y.Float64()
			switch {
			case fx < fy:
				return -1
			case fx > fy:
				return 1
			}
			return 0
		}
	case string:
		if y, ok := b.(string); ok {
			tx, errX := time.Parse(time.RFC3339Nano, x)
			ty, errY := time.Parse(time.RFC3339Nano, y)
			if errX == nil && errY == nil {
				return tx.Compare(ty)
			}
			return strings.Compare(x, y)
		}
	case bool:
		if y, ok := b.(bool); ok {
			switch {
			case x == y:
				return 0
			case !x:
				return -1
			}
			return 1
		}
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}
