package schema

import (
	"fmt"
	"math"
	"strconv"
)

// Value is a typed, possibly absent column value. Only the field matching
// Kind is meaningful.
type Value struct {
	Kind  Kind    `msgpack:"k"`
	Valid bool    `msgpack:"v"`
	Bool  bool    `msgpack:"b,omitempty"`
	Int   int64   `msgpack:"i,omitempty"`
	Uint  uint64  `msgpack:"u,omitempty"`
	Float float64 `msgpack:"f,omitempty"`
	Str   string  `msgpack:"s,omitempty"`
}

// Null returns an absent value of kind k.
func Null(k Kind) Value { return Value{Kind: k} }

// String returns a present string value.
func String(s string) Value { return Value{Kind: KindString, Valid: true, Str: s} }

// Bool returns a present bool value.
func Bool(b bool) Value { return Value{Kind: KindBool, Valid: true, Bool: b} }

// Int returns a present signed integer value of kind k.
func Int(k Kind, n int64) Value { return Value{Kind: k, Valid: true, Int: n} }

// Uint returns a present unsigned integer value of kind k.
func Uint(k Kind, n uint64) Value { return Value{Kind: k, Valid: true, Uint: n} }

// Float returns a present float value of kind k.
func Float(k Kind, f float64) Value { return Value{Kind: k, Valid: true, Float: f} }

// Interface returns the value as the Go type named by its kind, or nil when
// the value is absent or unsupported.
func (v Value) Interface() any {
	if !v.Valid {
		return nil
	}
	switch v.Kind {
	case KindBool:
		return v.Bool
	case KindInt8:
		return int8(v.Int)
	case KindInt16:
		return int16(v.Int)
	case KindInt32:
		return int32(v.Int)
	case KindInt64:
		return v.Int
	case KindUint8:
		return uint8(v.Uint)
	case KindUint16:
		return uint16(v.Uint)
	case KindUint32:
		return uint32(v.Uint)
	case KindUint64:
		return v.Uint
	case KindFloat32:
		return float32(v.Float)
	case KindFloat64:
		return v.Float
	case KindString:
		return v.Str
	default:
		return nil
	}
}

// ValueOf converts a raw driver value into a Value of kind k. Text protocol
// drivers hand back []byte for every column, so textual input is parsed.
func ValueOf(k Kind, raw any) (Value, error) {
	if raw == nil {
		return Null(k), nil
	}
	switch {
	case k == KindUnsupported:
		return Value{Kind: k, Valid: true}, nil
	case k == KindString:
		switch s := raw.(type) {
		case string:
			return String(s), nil
		case []byte:
			return String(string(s)), nil
		}
	case k == KindBool:
		switch b := raw.(type) {
		case bool:
			return Bool(b), nil
		case string, []byte:
			parsed, err := strconv.ParseBool(text(b))
			if err != nil {
				return Value{}, fmt.Errorf("parse %s: %w", k, err)
			}
			return Bool(parsed), nil
		default:
			if n, ok := asInt64(raw); ok {
				return Bool(n != 0), nil
			}
		}
	case k.IsSigned():
		n, err := signed(raw, k.Bits())
		if err != nil {
			return Value{}, fmt.Errorf("parse %s: %w", k, err)
		}
		return Int(k, n), nil
	case k.IsUnsigned():
		n, err := unsigned(raw, k.Bits())
		if err != nil {
			return Value{}, fmt.Errorf("parse %s: %w", k, err)
		}
		return Uint(k, n), nil
	case k.IsFloat():
		switch f := raw.(type) {
		case float64:
			return Float(k, f), nil
		case float32:
			return Float(k, float64(f)), nil
		case string, []byte:
			parsed, err := strconv.ParseFloat(text(f), k.Bits())
			if err != nil {
				return Value{}, fmt.Errorf("parse %s: %w", k, err)
			}
			return Float(k, parsed), nil
		default:
			if n, ok := asInt64(raw); ok {
				return Float(k, float64(n)), nil
			}
		}
	}
	return Value{}, fmt.Errorf("cannot convert %T to %s", raw, k)
}

func text(raw any) string {
	if b, ok := raw.([]byte); ok {
		return string(b)
	}
	s, _ := raw.(string)
	return s
}

func signed(raw any, bits int) (int64, error) {
	switch v := raw.(type) {
	case string, []byte:
		return strconv.ParseInt(text(v), 10, bits)
	case uint64:
		if v > math.MaxInt64 {
			return 0, fmt.Errorf("value %d out of range", v)
		}
		return checkSigned(int64(v), bits)
	}
	n, ok := asInt64(raw)
	if !ok {
		return 0, fmt.Errorf("unexpected type %T", raw)
	}
	return checkSigned(n, bits)
}

func checkSigned(n int64, bits int) (int64, error) {
	lo, hi := int64(-1)<<(bits-1), int64(1)<<(bits-1)-1
	if bits == 64 {
		lo, hi = math.MinInt64, math.MaxInt64
	}
	if n < lo || n > hi {
		return 0, fmt.Errorf("value %d out of range", n)
	}
	return n, nil
}

func unsigned(raw any, bits int) (uint64, error) {
	switch v := raw.(type) {
	case string, []byte:
		return strconv.ParseUint(text(v), 10, bits)
	case uint64:
		return checkUnsigned(v, bits)
	}
	n, ok := asInt64(raw)
	if !ok {
		return 0, fmt.Errorf("unexpected type %T", raw)
	}
	if n < 0 {
		return 0, fmt.Errorf("value %d out of range", n)
	}
	return checkUnsigned(uint64(n), bits)
}

func checkUnsigned(n uint64, bits int) (uint64, error) {
	if bits < 64 && n > uint64(1)<<bits-1 {
		return 0, fmt.Errorf("value %d out of range", n)
	}
	return n, nil
}

// asInt64 widens every integer type except uint64.
func asInt64(raw any) (int64, bool) {
	switch v := raw.(type) {
	case int:
		return int64(v), true
	case int8:
		return int64(v), true
	case int16:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case uint:
		return int64(v), true
	case uint8:
		return int64(v), true
	case uint16:
		return int64(v), true
	case uint32:
		return int64(v), true
	}
	return 0, false
}
