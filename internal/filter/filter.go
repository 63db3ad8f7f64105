// Package filter narrows and orders already-fetched entity collections.
// Every function returns a new slice and leaves its input untouched.
package filter

import (
	"sort"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// All is the categorical sentinel meaning "no filter".
const All = "all"

// Direction is a sort direction.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Sort names the field to order by. An unknown By leaves the input order as is.
type Sort struct {
	By        string    `json:"sort_by,omitempty"`
	Direction Direction `json:"sort_direction,omitempty"`
}

func (s Sort) desc() bool { return s.Direction == Desc }

// Range is an inclusive bound pair. A nil side is unbounded.
type Range[N int64 | float64] struct {
	Min *N
	Max *N
}

// Contains reports whether v lies within r.
func (r Range[N]) Contains(v N) bool {
	if r.Min != nil && v < *r.Min {
		return false
	}
	if r.Max != nil && v > *r.Max {
		return false
	}
	return true
}

// Set reports whether either side is bounded.
func (r Range[N]) Set() bool { return r.Min != nil || r.Max != nil }

// DateRange is an inclusive timestamp window. A nil side is unbounded.
type DateRange struct {
	From *time.Time
	To   *time.Time
}

// Contains reports whether t lies within r. A missing timestamp only
// satisfies an unbounded range.
func (r DateRange) Contains(t *time.Time) bool {
	if !r.Set() {
		return true
	}
	if t == nil {
		return false
	}
	if r.From != nil && t.Before(*r.From) {
		return false
	}
	if r.To != nil && t.After(*r.To) {
		return false
	}
	return true
}

// Set reports whether either side is bounded.
func (r DateRange) Set() bool { return r.From != nil || r.To != nil }

// category reports whether got passes a categorical filter on want.
// Empty and All disable the filter; they never mean "match empty".
func category(want, got string) bool {
	return want == "" || strings.EqualFold(want, All) || want == got
}

// search reports whether needle appears case-insensitively in any field.
func search(needle string, fields ...string) bool {
	needle = strings.TrimSpace(needle)
	if needle == "" {
		return true
	}
	return strings.Contains(strings.ToLower(strings.Join(fields, " ")), strings.ToLower(needle))
}

// cmpFunc orders two items. desc is passed through so keys can keep
// direction-invariant placement for missing values.
type cmpFunc[T any] func(a, b T, desc bool) int

func byString[T any](col *collate.Collator, key func(T) string) cmpFunc[T] {
	return func(a, b T, desc bool) int {
		return flip(col.CompareString(key(a), key(b)), desc)
	}
}

func byNumber[T any](key func(T) int64) cmpFunc[T] {
	return func(a, b T, desc bool) int {
		x, y := key(a), key(b)
		switch {
		case x < y:
			return flip(-1, desc)
		case x > y:
			return flip(1, desc)
		}
		return 0
	}
}

// byDate sorts missing timestamps last in both directions.
func byDate[T any](key func(T) *time.Time) cmpFunc[T] {
	return func(a, b T, desc bool) int {
		x, y := key(a), key(b)
		switch {
		case x == nil && y == nil:
			return 0
		case x == nil:
			return 1
		case y == nil:
			return -1
		}
		return flip(x.Compare(*y), desc)
	}
}

func flip(c int, desc bool) int {
	if desc {
		return -c
	}
	return c
}

// orZero reads an optional amount, treating missing as 0.
func orZero(v *int64) int64 {
	if v == nil {
		return 0
	}
	return *v
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

// run copies the kept items and stable-sorts them with cmp when non-nil.
func run[T any](in []T, keep func(*T) bool, cmp cmpFunc[T], desc bool) []T {
	out := make([]T, 0, len(in))
	for i := range in {
		if keep(&in[i]) {
			out = append(out, in[i])
		}
	}
	if cmp != nil {
		sort.SliceStable(out, func(i, j int) bool {
			return cmp(out[i], out[j], desc) < 0
		})
	}
	return out
}

func newCollator() *collate.Collator {
	return collate.New(language.English)
}
