package jsonvalue

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"

	gojson "github.com/goccy/go-json"
)

// ErrTrailingData is returned when a document holds more than one JSON value.
var ErrTrailingData = errors.New("unexpected data after top-level JSON value")

// Parse decodes exactly one JSON document.
func Parse(data []byte) (Value, error) {
	dec := gojson.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode JSON: %w", err)
	}

	var extra any
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return nil, ErrTrailingData
	}

	return FromAny(raw)
}

// ParseString is Parse for string input.
func ParseString(s string) (Value, error) {
	return Parse([]byte(s))
}

// FromAny converts the output of a generic JSON decoder into a Value.
func FromAny(v any) (Value, error) {
	switch t := v.(type) {
	case nil:
		return Null{}, nil
	case bool:
		return Bool(t), nil
	case gojson.Number:
		return Number(t), nil
	case float64:
		return NumberFromFloat(t), nil
	case float32:
		return NumberFromFloat(float64(t)), nil
	case int:
		return Number(strconv.Itoa(t)), nil
	case int64:
		return Number(strconv.FormatInt(t, 10)), nil
	case string:
		return String(t), nil
	case []any:
		arr := make(Array, len(t))
		for i, item := range t {
			converted, err := FromAny(item)
			if err != nil {
				return nil, fmt.Errorf("index %d: %w", i, err)
			}
			arr[i] = converted
		}
		return arr, nil
	case map[string]any:
		obj := make(Object, len(t))
		for key, item := range t {
			converted, err := FromAny(item)
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", key, err)
			}
			obj[key] = converted
		}
		return obj, nil
	case []string:
		arr := make(Array, len(t))
		for i, item := range t {
			arr[i] = String(item)
		}
		return arr, nil
	case map[string]string:
		obj := make(Object, len(t))
		for key, item := range t {
			obj[key] = String(item)
		}
		return obj, nil
	case Value:
		return t, nil
	default:
		return nil, fmt.Errorf("unsupported JSON type %T", v)
	}
}

// ToAny converts a Value into plain Go values for libraries that expect
// map[string]any / []any trees. Numbers become float64 when they parse.
func ToAny(v Value) any {
	switch t := v.(type) {
	case nil, Null:
		return nil
	case Bool:
		return bool(t)
	case Number:
		if f, err := t.Float64(); err == nil {
			return f
		}
		return gojson.Number(t)
	case String:
		return string(t)
	case Array:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = ToAny(item)
		}
		return out
	case Object:
		out := make(map[string]any, len(t))
		for key, item := range t {
			out[key] = ToAny(item)
		}
		return out
	default:
		return nil
	}
}

// Marshal encodes v as compact JSON.
func Marshal(v Value) ([]byte, error) {
	if v == nil {
		return []byte("null"), nil
	}
	return gojson.Marshal(v)
}
