package clientsession

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
)

// Attributes is the session attribute bag. Values are JSON-like: nil, bool,
// numbers, string, map[string]any and []any. A key mapped to nil is an
// explicit null and is distinct from a missing key.
type Attributes map[string]any

// Get returns the raw value stored under name. An explicit null yields
// (nil, true); a missing key yields (nil, false).
func (a Attributes) Get(name string) (any, bool) {
	v, ok := a[name]
	return v, ok
}

// Has reports whether name is present, including explicit nulls.
func (a Attributes) Has(name string) bool {
	_, ok := a[name]
	return ok
}

// Set stores value under name. A nil value is stored as an explicit null.
// value must be JSON-encodable: channels, functions and NaN or infinite
// floats make the next Save fail with ErrEncodeFailed.
func (a Attributes) Set(name string, value any) {
	a[name] = value
}

// Remove deletes name. Reading it afterwards reports it as missing.
func (a Attributes) Remove(name string) {
	delete(a, name)
}

// Len returns the number of keys, explicit nulls included.
func (a Attributes) Len() int {
	return len(a)
}

// Keys returns the attribute names in sorted order.
func (a Attributes) Keys() []string {
	keys := make([]string, 0, len(a))
	for k := range a {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// String returns the string stored under name. Booleans and numbers are
// returned in their JSON text form; objects and arrays are a type error.
// ok is false when the key is missing or null.
func (a Attributes) String(name string) (string, bool, error) {
	v, ok := a[name]
	if !ok || v == nil {
		return "", false, nil
	}
	switch x := v.(type) {
	case string:
		return x, true, nil
	case bool:
		return strconv.FormatBool(x), true, nil
	}
	n, err := toNumber(v)
	if err != nil {
		return "", false, typeError(name, "string", v)
	}
	return n.String(), true, nil
}

// Bool returns the boolean stored under name.
// ok is false when the key is missing or null.
func (a Attributes) Bool(name string) (bool, bool, error) {
	v, ok := a[name]
	if !ok || v == nil {
		return false, false, nil
	}
	b, isBool := v.(bool)
	if !isBool {
		return false, false, typeError(name, "bool", v)
	}
	return b, true, nil
}

// Number returns the number stored under name in its JSON text form.
// Strings holding a valid JSON number are accepted.
// ok is false when the key is missing or null.
func (a Attributes) Number(name string) (json.Number, bool, error) {
	v, ok := a[name]
	if !ok || v == nil {
		return "", false, nil
	}
	n, err := toNumber(v)
	if err != nil {
		return "", false, typeError(name, "number", v)
	}
	return n, true, nil
}

// Int64 returns the integer stored under name.
func (a Attributes) Int64(name string) (int64, bool, error) {
	n, ok, err := a.Number(name)
	if !ok || err != nil {
		return 0, false, err
	}
	i, err := n.Int64()
	if err != nil {
		f, ferr := n.Float64()
		if ferr != nil || f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
			return 0, false, typeError(name, "int64", a[name])
		}
		i = int64(f)
	}
	return i, true, nil
}

// Float64 returns the number stored under name as a float64.
func (a Attributes) Float64(name string) (float64, bool, error) {
	n, ok, err := a.Number(name)
	if !ok || err != nil {
		return 0, false, err
	}
	f, err := n.Float64()
	if err != nil {
		return 0, false, typeError(name, "float64", a[name])
	}
	return f, true, nil
}

func toNumber(v any) (json.Number, error) {
	switch n := v.(type) {
	case json.Number:
		return n, nil
	case int:
		return json.Number(strconv.FormatInt(int64(n), 10)), nil
	case int8:
		return json.Number(strconv.FormatInt(int64(n), 10)), nil
	case int16:
		return json.Number(strconv.FormatInt(int64(n), 10)), nil
	case int32:
		return json.Number(strconv.FormatInt(int64(n), 10)), nil
	case int64:
		return json.Number(strconv.FormatInt(n, 10)), nil
	case uint:
		return json.Number(strconv.FormatUint(uint64(n), 10)), nil
	case uint8:
		return json.Number(strconv.FormatUint(uint64(n), 10)), nil
	case uint16:
		return json.Number(strconv.FormatUint(uint64(n), 10)), nil
	case uint32:
		return json.Number(strconv.FormatUint(uint64(n), 10)), nil
	case uint64:
		return json.Number(strconv.FormatUint(n, 10)), nil
	case float32:
		return json.Number(strconv.FormatFloat(float64(n), 'g', -1, 32)), nil
	case float64:
		return json.Number(strconv.FormatFloat(n, 'g', -1, 64)), nil
	case string:
		if !isJSONNumber(n) {
			return "", fmt.Errorf("not a number: %q", n)
		}
		return json.Number(n), nil
	default:
		return "", fmt.Errorf("unsupported type %T", v)
	}
}

// isJSONNumber reports whether s is exactly one JSON number literal.
func isJSONNumber(s string) bool {
	if s == "" || strings.TrimSpace(s) != s {
		return false
	}
	if c := s[0]; c != '-' && (c < '0' || c > '9') {
		return false
	}
	return json.Valid([]byte(s))
}

func typeError(name, want string, got any) error {
	return fmt.Errorf("%w: attribute %q is %T, want %s", ErrAttributeType, name, got, want)
}
