package crown

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
	"unicode/utf8"
)

// ErrMalformedState reports a decoded value that does not have the shape of
// the crown tuple.
var ErrMalformedState = errors.New("malformed crown state")

const (
	fieldHolder  = "king"
	fieldPrice   = "price"
	fieldMessage = "message"

	maxUnwrap = 4
)

// DecodeState converts a loosely typed tree (clarity.Native output or a
// JSON-decoded object) into a State.
//
// Each field may be given directly or as {"value": x}; the nested form is
// tried first. An (ok tuple) response wrapper is removed, an (err ...)
// response is rejected. Missing fields and wrong kinds are errors, never
// zero values.
func DecodeState(raw any) (State, error) {
	obj, err := tupleObject(raw)
	if err != nil {
		return State{}, err
	}
	holder, err := decodeHolder(obj)
	if err != nil {
		return State{}, err
	}
	price, err := decodePrice(obj)
	if err != nil {
		return State{}, err
	}
	message, err := decodeMessage(obj)
	if err != nil {
		return State{}, err
	}
	return State{Holder: holder, Price: price, Message: message}, nil
}

func tupleObject(raw any) (map[string]any, error) {
	current := raw
	for i := 0; i < maxUnwrap; i++ {
		obj, ok := current.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: want object, got %T", ErrMalformedState, current)
		}
		if _, ok := obj[fieldHolder]; ok {
			return obj, nil
		}
		if kind, _ := obj["type"].(string); kind == "err" || kind == "response-err" {
			return nil, fmt.Errorf("%w: contract returned an error response", ErrMalformedState)
		}
		inner, ok := obj["value"]
		if !ok {
			return nil, fmt.Errorf("%w: missing field %q", ErrMalformedState, fieldHolder)
		}
		current = inner
	}
	return nil, fmt.Errorf("%w: wrapped more than %d levels deep", ErrMalformedState, maxUnwrap)
}

// field returns obj[name], preferring the nested {"value": x} form.
func field(obj map[string]any, name string) (any, error) {
	raw, ok := obj[name]
	if !ok {
		return nil, fmt.Errorf("%w: missing field %q", ErrMalformedState, name)
	}
	if nested, ok := raw.(map[string]any); ok {
		inner, ok := nested["value"]
		if !ok {
			return nil, fmt.Errorf("%w: field %q is an object without value", ErrMalformedState, name)
		}
		return inner, nil
	}
	return raw, nil
}

func decodeHolder(obj map[string]any) (string, error) {
	raw, err := field(obj, fieldHolder)
	if err != nil {
		return "", err
	}
	holder, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("%w: field %q is %T, want string", ErrMalformedState, fieldHolder, raw)
	}
	holder = strings.TrimSpace(holder)
	if holder == "" {
		return "", fmt.Errorf("%w: field %q is empty", ErrMalformedState, fieldHolder)
	}
	return holder, nil
}

func decodeMessage(obj map[string]any) (string, error) {
	raw, err := field(obj, fieldMessage)
	if err != nil {
		return "", err
	}
	message, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("%w: field %q is %T, want string", ErrMalformedState, fieldMessage, raw)
	}
	if !utf8.ValidString(message) {
		return "", fmt.Errorf("%w: field %q is not valid UTF-8", ErrMalformedState, fieldMessage)
	}
	return message, nil
}

func decodePrice(obj map[string]any) (uint64, error) {
	raw, err := field(obj, fieldPrice)
	if err != nil {
		return 0, err
	}
	price, err := toUint64(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: field %q: %v", ErrMalformedState, fieldPrice, err)
	}
	return price, nil
}

func toUint64(raw any) (uint64, error) {
	switch v := raw.(type) {
	case *big.Int:
		if v == nil || v.Sign() < 0 || !v.IsUint64() {
			return 0, fmt.Errorf("%v out of range", v)
		}
		return v.Uint64(), nil
	case uint64:
		return v, nil
	case uint:
		return uint64(v), nil
	case uint32:
		return uint64(v), nil
	case int:
		return nonNegative(int64(v))
	case int64:
		return nonNegative(v)
	case int32:
		return nonNegative(int64(v))
	case float64:
		if v < 0 || v != math.Trunc(v) || v >= math.Exp2(64) {
			return 0, fmt.Errorf("%v is not a non-negative integer", v)
		}
		return uint64(v), nil
	case json.Number:
		return parseDecimal(v.String())
	case string:
		return parseDecimal(v)
	default:
		return 0, fmt.Errorf("got %T, want integer", raw)
	}
}

func nonNegative(n int64) (uint64, error) {
	if n < 0 {
		return 0, fmt.Errorf("%d is negative", n)
	}
	return uint64(n), nil
}

// parseDecimal accepts plain digits and the Clarity literal form "u123".
func parseDecimal(s string) (uint64, error) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(s), "u")
	n, err := strconv.ParseUint(trimmed, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %q: %w", s, err)
	}
	return n, nil
}
