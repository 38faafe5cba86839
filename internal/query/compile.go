package query

import (
	"fmt"
	"strings"
)

// Predicate reports whether decoded document data matches a filter.
type Predicate func(data any) bool

// Comparator orders two decoded documents. It returns a negative number
// when a sorts before b, a positive number when after, and zero on a tie.
type Comparator func(a, b any) int

// Window is the pagination applied after filtering and sorting.
// A zero Limit is unbounded.
type Window struct {
	Offset int
	Limit  int
}

// Bounds returns the half-open range of a result of length n that falls
// inside the window.
func (w Window) Bounds(n int) (int, int) {
	lo := min(w.Offset, n)
	hi := n
	if w.Limit > 0 && w.Limit < hi-lo {
		hi = lo + w.Limit
	}
	return lo, hi
}

// Plan is a compiled query.
type Plan struct {
	Predicate  Predicate
	Comparator Comparator
	Window     Window
}

// Compile validates q and builds its Plan. It has no side effects.
func Compile(q Query) (*Plan, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	predicate, err := compileFilter(q.Filter)
	if err != nil {
		return nil, err
	}
	window := Window{Offset: q.Offset}
	if q.Limit != nil {
		window.Limit = *q.Limit
	}
	return &Plan{
		Predicate:  predicate,
		Comparator: compileSort(q.Sort),
		Window:     window,
	}, nil
}

func matchAll(any) bool  { return true }
func matchNone(any) bool { return false }

func compileFilter(f Filter) (Predicate, error) {
	switch node := f.(type) {
	case nil, True:
		return matchAll, nil
	case Comparison:
		return compileComparison(node), nil
	case And:
		if len(node.Filters) == 0 {
			return matchAll, nil
		}
		children, err := compileChildren(node.Filters)
		if err != nil {
			return nil, err
		}
		return func(data any) bool {
			for _, child := range children {
				if !child(data) {
					return false
				}
			}
			return true
		}, nil
	case Or:
		if len(node.Filters) == 0 {
			return matchNone, nil
		}
		children, err := compileChildren(node.Filters)
		if err != nil {
			return nil, err
		}
		return func(data any) bool {
			for _, child := range children {
				if child(data) {
					return true
				}
			}
			return false
		}, nil
	case Not:
		child, err := compileFilter(node.Filter)
		if err != nil {
			return nil, err
		}
		return func(data any) bool {
			return !child(data)
		}, nil
	default:
		return nil, fmt.Errorf("%w: unsupported filter node %T", ErrInvalidQuery, f)
	}
}

func compileChildren(filters []Filter) ([]Predicate, error) {
	out := make([]Predicate, len(filters))
	for i, f := range filters {
		p, err := compileFilter(f)
		if err != nil {
			return nil, err
		}
		out[i] = p
	}
	return out, nil
}

// compileComparison builds the test for a single field. An absent field
// only satisfies ne; mismatched types never satisfy an ordering operator.
func compileComparison(c Comparison) Predicate {
	field := c.Field
	target := normalize(c.Value)

	var test func(v any) bool
	switch c.Op {
	case OpEq:
		test = func(v any) bool { return Equal(v, target) }
	case OpNe:
		return func(data any) bool {
			v, ok := Lookup(data, field)
			return !ok || !Equal(v, target)
		}
	case OpGt:
		test = func(v any) bool { r, ok := order(v, target); return ok && r > 0 }
	case OpGte:
		test = func(v any) bool { r, ok := order(v, target); return ok && r >= 0 }
	case OpLt:
		test = func(v any) bool { r, ok := order(v, target); return ok && r < 0 }
	case OpLte:
		test = func(v any) bool { r, ok := order(v, target); return ok && r <= 0 }
	case OpIn:
		candidates, _ := target.([]any)
		test = func(v any) bool {
			for _, candidate := range candidates {
				if Equal(v, candidate) {
					return true
				}
			}
			return false
		}
	case OpContains:
		test = func(v any) bool { return contains(v, target) }
	default:
		return matchNone
	}

	return func(data any) bool {
		v, ok := Lookup(data, field)
		return ok && test(v)
	}
}

// order compares two numbers or two strings. Any other pairing is not
// ordered.
func order(v, target any) (int, bool) {
	kv, kt := KindOf(v), KindOf(target)
	if kv != kt || (kv != KindNumber && kv != KindString) {
		return 0, false
	}
	return Compare(v, target), true
}

func contains(v, target any) bool {
	switch x := v.(type) {
	case []any:
		for _, e := range x {
			if Equal(e, target) {
				return true
			}
		}
		return false
	case string:
		s, ok := target.(string)
		return ok && strings.Contains(x, s)
	default:
		return false
	}
}

func compileSort(keys []SortKey) Comparator {
	if len(keys) == 0 {
		return func(any, any) int { return 0 }
	}
	keys = append([]SortKey(nil), keys...)
	return func(a, b any) int {
		for _, key := range keys {
			va, okA := Lookup(a, key.Field)
			vb, okB := Lookup(b, key.Field)
			switch {
			case !okA && !okB:
				continue
			case !okA:
				return 1
			case !okB:
				return -1
			}
			c := Compare(va, vb)
			if key.Direction == Desc {
				c = -c
			}
			if c != 0 {
				return c
			}
		}
		return 0
	}
}
