package query

import "encoding/json"

// Operator is a comparison operator of a Comparison filter.
type Operator string

const (
	OpEq       Operator = "eq"
	OpNe       Operator = "ne"
	OpGt       Operator = "gt"
	OpGte      Operator = "gte"
	OpLt       Operator = "lt"
	OpLte      Operator = "lte"
	OpIn       Operator = "in"
	OpContains Operator = "contains"
)

// Operators returns all supported comparison operators.
func Operators() []Operator {
	return []Operator{OpEq, OpNe, OpGt, OpGte, OpLt, OpLte, OpIn, OpContains}
}

// IsValid reports whether op is a supported operator.
func (op Operator) IsValid() bool {
	switch op {
	case OpEq, OpNe, OpGt, OpGte, OpLt, OpLte, OpIn, OpContains:
		return true
	}
	return false
}

// Filter is a node of a filter tree. Only the types in this package
// implement it: Comparison, And, Or, Not and True.
type Filter interface {
	isFilter()
}

// Comparison tests the value found at Field against Value.
type Comparison struct {
	Field string
	Op    Operator
	Value any
}

// And matches when every child matches. An empty And matches everything.
type And struct {
	Filters []Filter
}

// Or matches when any child matches. An empty Or matches nothing.
type Or struct {
	Filters []Filter
}

// Not inverts its child.
type Not struct {
	Filter Filter
}

// True matches every document.
type True struct{}

func (Comparison) isFilter() {}
func (And) isFilter()        {}
func (Or) isFilter()         {}
func (Not) isFilter()        {}
func (True) isFilter()       {}

func (c Comparison) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Field string   `json:"field"`
		Op    Operator `json:"op"`
		Value any      `json:"value"`
	}{c.Field, c.Op, c.Value})
}

func (a And) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		And []Filter `json:"and"`
	}{children(a.Filters)})
}

func (o Or) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Or []Filter `json:"or"`
	}{children(o.Filters)})
}

func (n Not) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Not Filter `json:"not"`
	}{orTrue(n.Filter)})
}

func (True) MarshalJSON() ([]byte, error) {
	return []byte("{}"), nil
}

// children keeps empty child lists as [] on the wire, so Or{} does not
// collapse into True when encoded.
func children(filters []Filter) []Filter {
	out := make([]Filter, len(filters))
	for i, f := range filters {
		out[i] = orTrue(f)
	}
	return out
}

func orTrue(f Filter) Filter {
	if f == nil {
		return True{}
	}
	return f
}
