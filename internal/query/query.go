// Package query holds the query language of the document store: the filter
// tree, sort keys and pagination of a Query, its JSON wire format, and the
// compiler that turns a Query into a Plan runnable against decoded documents.
package query

import (
	"errors"
	"fmt"
	"slices"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// ErrInvalidQuery is returned for any structurally malformed query.
var ErrInvalidQuery = errors.New("invalid query")

// MaxFieldPathLength bounds the length of a dot separated field path.
const MaxFieldPathLength = 1024

// Direction is the order of a sort key.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// SortKey orders documents by the value found at Field.
type SortKey struct {
	Field     string    `json:"field"`
	Direction Direction `json:"direction,omitempty"`
}

// Validate implements validation.Validatable.
func (k SortKey) Validate() error {
	return validation.ValidateStruct(&k,
		validation.Field(&k.Field, validation.Required, validation.Length(1, MaxFieldPathLength)),
		validation.Field(&k.Direction, validation.In(Asc, Desc)),
	)
}

// Query is a filter, a sort specification and a pagination window.
// A nil Filter matches every document and a nil Limit is unbounded.
type Query struct {
	Filter Filter
	Sort   []SortKey
	Offset int
	Limit  *int
}

// Validate checks the structure of q. Every error it returns wraps
// ErrInvalidQuery.
func (q Query) Validate() error {
	err := validation.ValidateStruct(&q,
		validation.Field(&q.Sort),
		validation.Field(&q.Offset, validation.Min(0)),
		validation.Field(&q.Limit, validation.NilOrNotEmpty, validation.Min(1)),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidQuery, err)
	}
	if err := validateFilter(q.Filter, "filter"); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidQuery, err)
	}
	return nil
}

// Clone returns a copy of q that shares no slices, maps or pointers with it.
// Comparison values other than decoded arrays and objects are copied by value.
func (q Query) Clone() Query {
	out := Query{
		Filter: cloneFilter(q.Filter),
		Sort:   slices.Clone(q.Sort),
		Offset: q.Offset,
	}
	if q.Limit != nil {
		out.Limit = WithLimit(*q.Limit)
	}
	return out
}

func cloneFilter(f Filter) Filter {
	switch node := f.(type) {
	case Comparison:
		node.Value = cloneValue(node.Value)
		return node
	case And:
		return And{Filters: cloneFilters(node.Filters)}
	case Or:
		return Or{Filters: cloneFilters(node.Filters)}
	case Not:
		return Not{Filter: cloneFilter(node.Filter)}
	default:
		return f
	}
}

func cloneFilters(filters []Filter) []Filter {
	if filters == nil {
		return nil
	}
	out := make([]Filter, len(filters))
	for i, f := range filters {
		out[i] = cloneFilter(f)
	}
	return out
}

func cloneValue(v any) any {
	switch x := v.(type) {
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = cloneValue(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}

// WithLimit returns a pointer to n, for building queries in code.
func WithLimit(n int) *int {
	return &n
}

func validateFilter(f Filter, path string) error {
	switch node := f.(type) {
	case nil, True:
		return nil
	case Comparison:
		err := validation.ValidateStruct(&node,
			validation.Field(&node.Field, validation.Required, validation.Length(1, MaxFieldPathLength)),
			validation.Field(&node.Op, validation.Required, validation.By(validOperator)),
		)
		if err != nil {
			return fmt.Errorf("%s: %v", path, err)
		}
		if node.Op == OpIn {
			if _, ok := normalize(node.Value).([]any); !ok {
				return fmt.Errorf("%s: value of in must be an array", path)
			}
		}
		return nil
	case And:
		for i, child := range node.Filters {
			if err := validateFilter(child, fmt.Sprintf("%s.and[%d]", path, i)); err != nil {
				return err
			}
		}
		return nil
	case Or:
		for i, child := range node.Filters {
			if err := validateFilter(child, fmt.Sprintf("%s.or[%d]", path, i)); err != nil {
				return err
			}
		}
		return nil
	case Not:
		return validateFilter(node.Filter, path+".not")
	default:
		return fmt.Errorf("%s: unsupported filter node %T", path, f)
	}
}

func validOperator(value interface{}) error {
	op, _ := value.(Operator)
	if !op.IsValid() {
		return fmt.Errorf("unknown operator %q", op)
	}
	return nil
}
