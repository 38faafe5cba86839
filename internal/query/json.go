package query

import (
	"bytes"
	"encoding/json"
	"fmt"
)

type queryJSON struct {
	Filter json.RawMessage `json:"filter,omitempty"`
	Sort   []SortKey       `json:"sort,omitempty"`
	Offset int             `json:"offset"`
	Limit  *int            `json:"limit"`
}

// Parse decodes a query from its JSON wire format and validates it.
func Parse(data []byte) (Query, error) {
	var q Query
	if err := json.Unmarshal(data, &q); err != nil {
		return Query{}, err
	}
	if err := q.Validate(); err != nil {
		return Query{}, err
	}
	return q, nil
}

func (q Query) MarshalJSON() ([]byte, error) {
	filter, err := json.Marshal(orTrue(q.Filter))
	if err != nil {
		return nil, err
	}
	return json.Marshal(queryJSON{
		Filter: filter,
		Sort:   q.Sort,
		Offset: q.Offset,
		Limit:  q.Limit,
	})
}

func (q *Query) UnmarshalJSON(data []byte) error {
	var raw queryJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidQuery, err)
	}
	filter, err := ParseFilter(raw.Filter)
	if err != nil {
		return err
	}
	sort := raw.Sort
	if len(sort) == 0 {
		sort = nil
	}
	*q = Query{
		Filter: filter,
		Sort:   sort,
		Offset: raw.Offset,
		Limit:  raw.Limit,
	}
	return nil
}

// ParseFilter decodes a single filter node. Empty input, null and {}
// decode to True.
func ParseFilter(data []byte) (Filter, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return True{}, nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("%w: filter must be an object: %v", ErrInvalidQuery, err)
	}
	if len(fields) == 0 {
		return True{}, nil
	}

	if _, ok := fields["field"]; ok {
		return parseComparison(fields)
	}
	if len(fields) != 1 {
		return nil, fmt.Errorf("%w: filter must have exactly one of and, or, not, field", ErrInvalidQuery)
	}

	for key, value := range fields {
		switch key {
		case "and":
			children, err := parseChildren(key, value)
			if err != nil {
				return nil, err
			}
			return And{Filters: children}, nil
		case "or":
			children, err := parseChildren(key, value)
			if err != nil {
				return nil, err
			}
			return Or{Filters: children}, nil
		case "not":
			child, err := ParseFilter(value)
			if err != nil {
				return nil, err
			}
			return Not{Filter: child}, nil
		default:
			return nil, fmt.Errorf("%w: unknown filter key %q", ErrInvalidQuery, key)
		}
	}
	return True{}, nil
}

func parseChildren(key string, data json.RawMessage) ([]Filter, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("%w: %s must be an array: %v", ErrInvalidQuery, key, err)
	}
	children := make([]Filter, 0, len(items))
	for _, item := range items {
		child, err := ParseFilter(item)
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}
	return children, nil
}

func parseComparison(fields map[string]json.RawMessage) (Filter, error) {
	for key := range fields {
		switch key {
		case "field", "op", "value":
		default:
			return nil, fmt.Errorf("%w: unknown comparison key %q", ErrInvalidQuery, key)
		}
	}

	var c Comparison
	if err := json.Unmarshal(fields["field"], &c.Field); err != nil {
		return nil, fmt.Errorf("%w: field must be a string", ErrInvalidQuery)
	}
	op, ok := fields["op"]
	if !ok {
		return nil, fmt.Errorf("%w: comparison on %q has no op", ErrInvalidQuery, c.Field)
	}
	if err := json.Unmarshal(op, &c.Op); err != nil {
		return nil, fmt.Errorf("%w: op must be a string", ErrInvalidQuery)
	}
	if !c.Op.IsValid() {
		return nil, fmt.Errorf("%w: unknown operator %q", ErrInvalidQuery, c.Op)
	}
	if value, ok := fields["value"]; ok {
		if err := decodeJSON(value, &c.Value); err != nil {
			return nil, fmt.Errorf("%w: value: %v", ErrInvalidQuery, err)
		}
	}
	return c, nil
}
