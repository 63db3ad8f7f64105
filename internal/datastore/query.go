package datastore

// Op is a comparison operator. Values match PostgREST's operator names.
type Op string

const (
	OpEq  Op = "eq"
	OpNeq Op = "neq"
	OpGt  Op = "gt"
	OpGte Op = "gte"
	OpLt  Op = "lt"
	OpLte Op = "lte"
	OpIs  Op = "is"
)

// Predicate filters rows on one column. An OpIs predicate only tests for null.
type Predicate struct {
	Column string
	Op     Op
	Value  any
}

func Eq(col string, v any) Predicate  { return Predicate{Column: col, Op: OpEq, Value: v} }
func Neq(col string, v any) Predicate { return Predicate{Column: col, Op: OpNeq, Value: v} }
func Gt(col string, v any) Predicate  { return Predicate{Column: col, Op: OpGt, Value: v} }
func Gte(col string, v any) Predicate { return Predicate{Column: col, Op: OpGte, Value: v} }
func Lt(col string, v any) Predicate  { return Predicate{Column: col, Op: OpLt, Value: v} }
func Lte(col string, v any) Predicate { return Predicate{Column: col, Op: OpLte, Value: v} }
func IsNull(col string) Predicate     { return Predicate{Column: col, Op: OpIs} }

// Order sorts on one column. Nulls sort after values ascending and before them descending.
type Order struct {
	Column string
	Desc   bool
}

// Asc and Desc build an Order.
func Asc(col string) Order  { return Order{Column: col} }
func Desc(col string) Order { return Order{Column: col, Desc: true} }

// Query is a filtered, ordered, optionally limited select.
type Query struct {
	Where []Predicate
	Order []Order
	Limit int
}

// Where starts a Query from predicates.
func Where(preds ...Predicate) Query { return Query{Where: preds} }

// OrderBy returns a copy of q with the given ordering appended.
func (q Query) OrderBy(o ...Order) Query {
	q.Order = append(append([]Order(nil), q.Order...), o...)
	return q
}

// First returns a copy of q limited to one row.
func (q Query) First() Query {
	q.Limit = 1
	return q
}
