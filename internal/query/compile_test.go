package query

import (
	"encoding/json"
	"math"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDecode(t *testing.T, s string) any {
	t.Helper()
	v, err := Decode([]byte(s))
	require.NoError(t, err)
	return v
}

func mustCompile(t *testing.T, q Query) *Plan {
	t.Helper()
	plan, err := Compile(q)
	require.NoError(t, err)
	return plan
}

func TestCompile_AbsentField(t *testing.T) {
	doc := mustDecode(t, `{"name": "x"}`)

	for _, op := range Operators() {
		value := any(28)
		if op == OpIn {
			value = []any{28}
		}
		plan := mustCompile(t, Query{Filter: Comparison{Field: "age", Op: op, Value: value}})

		if op == OpNe {
			assert.True(t, plan.Predicate(doc), "ne should match an absent field")
		} else {
			assert.False(t, plan.Predicate(doc), "%s should not match an absent field", op)
		}
	}
}

func TestCompile_Comparisons(t *testing.T) {
	doc := mustDecode(t, `{
		"age": 30,
		"name": "alice",
		"active": true,
		"tags": ["a", "b"],
		"address": {"city": "Oslo"},
		"nothing": null,
		"scores": [1, 2, 3]
	}`)

	tests := []struct {
		name   string
		filter Comparison
		want   bool
	}{
		{"eq number", Comparison{"age", OpEq, 30}, true},
		{"eq number float", Comparison{"age", OpEq, 30.0}, true},
		{"eq wrong type", Comparison{"age", OpEq, "30"}, false},
		{"ne same", Comparison{"age", OpNe, 30}, false},
		{"ne other", Comparison{"age", OpNe, 28}, true},
		{"ne other type", Comparison{"age", OpNe, "30"}, true},
		{"gt", Comparison{"age", OpGt, 28}, true},
		{"gt equal", Comparison{"age", OpGt, 30}, false},
		{"gte equal", Comparison{"age", OpGte, 30}, true},
		{"lt", Comparison{"age", OpLt, 31}, true},
		{"lte", Comparison{"age", OpLte, 29}, false},
		{"gt string vs number", Comparison{"name", OpGt, 5}, false},
		{"lt number vs string", Comparison{"age", OpLt, "z"}, false},
		{"gt string", Comparison{"name", OpGt, "aaron"}, true},
		{"gt bool", Comparison{"active", OpGt, false}, false},
		{"eq bool", Comparison{"active", OpEq, true}, true},
		{"eq null", Comparison{"nothing", OpEq, nil}, true},
		{"nested path", Comparison{"address.city", OpEq, "Oslo"}, true},
		{"array index path", Comparison{"tags.1", OpEq, "b"}, true},
		{"array index out of range", Comparison{"tags.5", OpEq, "b"}, false},
		{"eq array", Comparison{"tags", OpEq, []string{"a", "b"}}, true},
		{"eq object", Comparison{"address", OpEq, map[string]any{"city": "Oslo"}}, true},
		{"in", Comparison{"name", OpIn, []any{"bob", "alice"}}, true},
		{"in miss", Comparison{"name", OpIn, []string{"bob"}}, false},
		{"in number", Comparison{"age", OpIn, []int{10, 30}}, true},
		{"contains array", Comparison{"tags", OpContains, "a"}, true},
		{"contains array number", Comparison{"scores", OpContains, 2}, true},
		{"contains array miss", Comparison{"tags", OpContains, "z"}, false},
		{"contains substring", Comparison{"name", OpContains, "lic"}, true},
		{"contains substring miss", Comparison{"name", OpContains, "bob"}, false},
		{"contains number field", Comparison{"age", OpContains, 3}, false},
		{"contains string vs number", Comparison{"name", OpContains, 1}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := mustCompile(t, Query{Filter: tt.filter})
			assert.Equal(t, tt.want, plan.Predicate(doc))
		})
	}
}

func TestCompile_Logical(t *testing.T) {
	doc := mustDecode(t, `{"age": 30, "name": "alice"}`)
	older := Comparison{Field: "age", Op: OpGt, Value: 18}
	bob := Comparison{Field: "name", Op: OpEq, Value: "bob"}

	tests := []struct {
		name   string
		filter Filter
		want   bool
	}{
		{"nil", nil, true},
		{"true", True{}, true},
		{"empty and", And{}, true},
		{"empty or", Or{}, false},
		{"and", And{Filters: []Filter{older, bob}}, false},
		{"or", Or{Filters: []Filter{older, bob}}, true},
		{"not", Not{Filter: bob}, true},
		{"not empty or", Not{Filter: Or{}}, true},
		{"nested", And{Filters: []Filter{older, Not{Filter: bob}, Or{Filters: []Filter{bob, older}}}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := mustCompile(t, Query{Filter: tt.filter})
			assert.Equal(t, tt.want, plan.Predicate(doc))
		})
	}
}

func TestCompile_PredicateIsTotal(t *testing.T) {
	docs := []string{`{}`, `{"a": null}`, `{"a": [1, "x", {"b": 2}]}`, `{"a": {"b": [true]}}`, `{"a": "str"}`, `{"a": 1.5}`}
	values := []any{nil, true, 1, "x", []any{1}, map[string]any{"b": 2}}

	for _, raw := range docs {
		doc := mustDecode(t, raw)
		for _, op := range Operators() {
			for _, value := range values {
				if op == OpIn {
					value = []any{value}
				}
				plan := mustCompile(t, Query{Filter: Comparison{Field: "a.b", Op: op, Value: value}})
				assert.NotPanics(t, func() {
					first := plan.Predicate(doc)
					assert.Equal(t, first, plan.Predicate(doc))
				})
			}
		}
	}
}

func TestCompile_Comparator(t *testing.T) {
	docs := []any{
		mustDecode(t, `{"id": 1, "v": "b"}`),
		mustDecode(t, `{"id": 2}`),
		mustDecode(t, `{"id": 3, "v": 2}`),
		mustDecode(t, `{"id": 4, "v": null}`),
		mustDecode(t, `{"id": 5, "v": {"k": 1}}`),
		mustDecode(t, `{"id": 6, "v": true}`),
		mustDecode(t, `{"id": 7, "v": [1]}`),
		mustDecode(t, `{"id": 8, "v": 1}`),
	}

	ids := func(plan *Plan) []string {
		sorted := slices.Clone(docs)
		slices.SortStableFunc(sorted, plan.Comparator)
		out := make([]string, len(sorted))
		for i, d := range sorted {
			out[i] = d.(map[string]any)["id"].(json.Number).String()
		}
		return out
	}

	asc := mustCompile(t, Query{Sort: []SortKey{{Field: "v"}}})
	assert.Equal(t, []string{"4", "6", "8", "3", "1", "7", "5", "2"}, ids(asc))

	desc := mustCompile(t, Query{Sort: []SortKey{{Field: "v", Direction: Desc}}})
	assert.Equal(t, []string{"5", "7", "1", "3", "8", "6", "4", "2"}, ids(desc))
}

func TestCompile_LargeIntegers(t *testing.T) {
	doc := mustDecode(t, `{"n": 12345678901234567890, "m": 9007199254740993, "f": 100}`)

	tests := []struct {
		name   string
		filter Comparison
		want   bool
	}{
		{"eq neighbour above 2^64", Comparison{"n", OpEq, json.Number("12345678901234567891")}, false},
		{"eq exact above 2^64", Comparison{"n", OpEq, json.Number("12345678901234567890")}, true},
		{"ne neighbour above 2^64", Comparison{"n", OpNe, json.Number("12345678901234567891")}, true},
		{"gt neighbour above 2^64", Comparison{"n", OpGt, json.Number("12345678901234567889")}, true},
		{"eq neighbour above 2^53", Comparison{"m", OpEq, int64(9007199254740992)}, false},
		{"eq exact above 2^53", Comparison{"m", OpEq, int64(9007199254740993)}, true},
		{"lt neighbour above 2^53", Comparison{"m", OpLt, uint64(9007199254740994)}, true},
		{"in neighbours above 2^53", Comparison{"m", OpIn, []int64{9007199254740992, 9007199254740994}}, false},
		{"eq exponent form", Comparison{"f", OpEq, json.Number("1e2")}, true},
		{"eq decimal form", Comparison{"f", OpEq, json.Number("100.0")}, true},
		{"gt fraction", Comparison{"f", OpGt, json.Number("99.999999999999999999")}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := mustCompile(t, Query{Filter: tt.filter})
			assert.Equal(t, tt.want, plan.Predicate(doc))
		})
	}
}

func TestCompare_Numbers(t *testing.T) {
	assert.Equal(t, 0, Compare(json.Number("30"), 30.0))
	assert.Equal(t, 0, Compare(json.Number("-0"), json.Number("0")))
	assert.Equal(t, -1, Compare(json.Number("9223372036854775807"), json.Number("9223372036854775808")))
	assert.Equal(t, 1, Compare(json.Number("1e400"), json.Number("9223372036854775807")))
	assert.Equal(t, -1, Compare(json.Number("-1e400"), json.Number("-1")))
	assert.Equal(t, -1, Compare(json.Number("0.1"), json.Number("0.10000000000000001")))
	assert.True(t, Equal(normalize(uint8(7)), json.Number("7.0")))
	assert.Nil(t, normalize(math.NaN()))
}

func TestCompile_LargeIntegerSort(t *testing.T) {
	a := mustDecode(t, `{"n": 9007199254740993}`)
	b := mustDecode(t, `{"n": 9007199254740992}`)
	c := mustDecode(t, `{"n": 18446744073709551617}`)

	plan := mustCompile(t, Query{Sort: []SortKey{{Field: "n"}}})

	sorted := []any{c, a, b}
	slices.SortStableFunc(sorted, plan.Comparator)
	assert.Equal(t, []any{b, a, c}, sorted)
}

func TestCompile_ComparatorMultiKey(t *testing.T) {
	a := mustDecode(t, `{"group": "x", "rank": 2}`)
	b := mustDecode(t, `{"group": "x", "rank": 1}`)
	c := mustDecode(t, `{"group": "y", "rank": 3}`)

	plan := mustCompile(t, Query{Sort: []SortKey{{Field: "group", Direction: Desc}, {Field: "rank", Direction: Asc}}})

	sorted := []any{a, b, c}
	slices.SortStableFunc(sorted, plan.Comparator)
	assert.Equal(t, []any{c, b, a}, sorted)

	none := mustCompile(t, Query{})
	assert.Equal(t, 0, none.Comparator(a, c))
}

func TestCompile_Window(t *testing.T) {
	plan := mustCompile(t, Query{Offset: 1, Limit: WithLimit(1)})
	lo, hi := plan.Window.Bounds(3)
	assert.Equal(t, 1, lo)
	assert.Equal(t, 2, hi)

	unbounded := mustCompile(t, Query{Offset: 2})
	lo, hi = unbounded.Window.Bounds(5)
	assert.Equal(t, 2, lo)
	assert.Equal(t, 5, hi)

	lo, hi = Window{Offset: 10, Limit: 3}.Bounds(4)
	assert.Equal(t, 4, lo)
	assert.Equal(t, 4, hi)
}

func TestWindow_BoundsLargeValues(t *testing.T) {
	tests := []struct {
		name   string
		window Window
		lo, hi int
	}{
		{"max limit after offset", Window{Offset: 1, Limit: math.MaxInt}, 1, 3},
		{"max limit", Window{Limit: math.MaxInt}, 0, 3},
		{"max offset", Window{Offset: math.MaxInt, Limit: math.MaxInt}, 3, 3},
		{"max offset unbounded", Window{Offset: math.MaxInt}, 3, 3},
		{"limit one below overflow", Window{Offset: 2, Limit: math.MaxInt - 1}, 2, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lo, hi := tt.window.Bounds(3)
			assert.Equal(t, tt.lo, lo)
			assert.Equal(t, tt.hi, hi)
		})
	}
}

func TestCompile_Invalid(t *testing.T) {
	_, err := Compile(Query{Offset: -1})
	assert.ErrorIs(t, err, ErrInvalidQuery)

	_, err = Compile(Query{Filter: Comparison{Field: "a", Op: "like", Value: "x"}})
	assert.ErrorIs(t, err, ErrInvalidQuery)
}
