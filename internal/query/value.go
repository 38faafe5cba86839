package query

import (
	"bytes"
	"cmp"
	"encoding/json"
	"errors"
	"io"
	"math"
	"math/big"
	"reflect"
	"slices"
	"strconv"
	"strings"
)

// Kind is the JSON type of a decoded value. Kinds are declared in their
// cross-type sort order.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "boolean"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	default:
		return "object"
	}
}

// KindOf classifies a value produced by Decode or normalize.
func KindOf(v any) Kind {
	switch v.(type) {
	case nil:
		return KindNull
	case bool:
		return KindBool
	case json.Number, float64:
		return KindNumber
	case string:
		return KindString
	case []any:
		return KindArray
	default:
		return KindObject
	}
}

// Decode parses document data into the dynamic representation the
// compiled predicate and comparator work on. Numbers are kept as
// json.Number so no digits are lost.
func Decode(data []byte) (any, error) {
	if len(data) == 0 {
		return map[string]any{}, nil
	}
	var v any
	if err := decodeJSON(data, &v); err != nil {
		return nil, err
	}
	return v, nil
}

var errTrailingData = errors.New("invalid character after top-level value")

func decodeJSON(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if _, err := dec.Token(); err != io.EOF {
		return errTrailingData
	}
	return nil
}

// Lookup resolves a dot separated path inside decoded data. Segments index
// objects by key and arrays by decimal position.
func Lookup(data any, path string) (any, bool) {
	current := data
	for _, segment := range strings.Split(path, ".") {
		switch node := current.(type) {
		case map[string]any:
			v, ok := node[segment]
			if !ok {
				return nil, false
			}
			current = v
		case []any:
			i, err := strconv.Atoi(segment)
			if err != nil || i < 0 || i >= len(node) {
				return nil, false
			}
			current = node[i]
		default:
			return nil, false
		}
	}
	return current, true
}

// normalize converts Go values built in code into the shapes Decode
// produces, so filters written by hand and filters read from JSON compare
// alike. Numbers become json.Number, slices []any, maps map[string]any.
func normalize(v any) any {
	switch x := v.(type) {
	case nil, bool, json.Number, string:
		return v
	case float64:
		return floatNumber(x)
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = normalize(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = normalize(e)
		}
		return out
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return json.Number(strconv.FormatInt(rv.Int(), 10))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return json.Number(strconv.FormatUint(rv.Uint(), 10))
	case reflect.Float32, reflect.Float64:
		return floatNumber(rv.Float())
	case reflect.String:
		return rv.String()
	case reflect.Bool:
		return rv.Bool()
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = normalize(rv.Index(i).Interface())
		}
		return out
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil
		}
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[iter.Key().String()] = normalize(iter.Value().Interface())
		}
		return out
	case reflect.Pointer:
		if rv.IsNil() {
			return nil
		}
		return normalize(rv.Elem().Interface())
	}

	// Anything else goes through its JSON encoding.
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	decoded, err := Decode(data)
	if err != nil {
		return nil
	}
	return decoded
}

// Equal reports whether two decoded values are the same JSON value.
// Values of different kinds are never equal.
func Equal(a, b any) bool {
	if KindOf(a) != KindOf(b) {
		return false
	}
	return Compare(a, b) == 0
}

// Compare is a total order over decoded values. Values of different kinds
// order by kind; arrays compare element-wise, objects by their sorted keys
// and then by the values under those keys.
func Compare(a, b any) int {
	ka, kb := KindOf(a), KindOf(b)
	if ka != kb {
		return cmp.Compare(ka, kb)
	}
	switch ka {
	case KindNull:
		return 0
	case KindBool:
		return compareBool(a.(bool), b.(bool))
	case KindNumber:
		return compareNumbers(numberText(a), numberText(b))
	case KindString:
		return strings.Compare(a.(string), b.(string))
	case KindArray:
		return slices.CompareFunc(a.([]any), b.([]any), Compare)
	default:
		return compareObject(asObject(a), asObject(b))
	}
}

// floatNumber renders f in its shortest exact form. NaN and the infinities
// have no JSON form and become null.
func floatNumber(f float64) any {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return json.Number(strconv.FormatFloat(f, 'g', -1, 64))
}

func numberText(v any) string {
	switch x := v.(type) {
	case json.Number:
		return x.String()
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	}
	return "0"
}

// numberPrecision is wide enough to hold any int64 or float64 exactly.
const numberPrecision = 512

// compareNumbers orders two JSON number literals by value. Integers that fit
// in int64 compare directly; everything else goes through big.Float.
func compareNumbers(a, b string) int {
	if x, err := strconv.ParseInt(a, 10, 64); err == nil {
		if y, err := strconv.ParseInt(b, 10, 64); err == nil {
			return cmp.Compare(x, y)
		}
	}
	return bigNumber(a).Cmp(bigNumber(b))
}

func bigNumber(s string) *big.Float {
	if f, _, err := big.ParseFloat(s, 10, numberPrecision, big.ToNearestEven); err == nil {
		return f
	}
	// Exponents beyond big.Float's range saturate to an infinity or zero.
	f, _ := strconv.ParseFloat(s, 64)
	if math.IsNaN(f) {
		f = 0
	}
	return big.NewFloat(f)
}

func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	default:
		return 1
	}
}

func compareObject(a, b map[string]any) int {
	ka := sortedKeys(a)
	kb := sortedKeys(b)
	if c := slices.Compare(ka, kb); c != 0 {
		return c
	}
	for _, k := range ka {
		if c := Compare(a[k], b[k]); c != 0 {
			return c
		}
	}
	return 0
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func asObject(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}
