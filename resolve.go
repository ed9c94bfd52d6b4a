package unb

import (
	"fmt"
	"reflect"
	"strconv"
)

// ResolveID normalizes a guild, user, or item reference to its numeric ID.
//
// Accepted shapes:
//   - any Go integer type, passed through
//   - a base-10 numeric string
//   - any struct (or pointer to struct) with an ID field, or any value with
//     an ID() method; the field or method value is normalized one level
//     deep, which covers discordgo-style types whose IDs are strings
//
// Anything else fails with ErrBadID. Every exported method that takes a
// reference argument goes through this function, so all call sites accept
// the same shapes.
func ResolveID(ref any) (int64, error) {
	return resolveID(ref, true)
}

func resolveID(ref any, probe bool) (int64, error) {
	switch v := ref.(type) {
	case nil:
		return 0, fmt.Errorf("%w: id is nil", ErrBadID)
	case int:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case int64:
		return v, nil
	case uint:
		return int64(v), nil
	case uint32:
		return int64(v), nil
	case uint64:
		return int64(v), nil
	case string:
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q is not a numeric id", ErrBadID, v)
		}
		return id, nil
	}

	if !probe {
		return 0, fmt.Errorf("%w: unsupported id type %T", ErrBadID, ref)
	}

	inner, ok := probeID(ref)
	if !ok {
		return 0, fmt.Errorf("%w: %T object doesn't have an id attribute", ErrBadID, ref)
	}

	// One level only: the probed value must itself be an integer or string.
	return resolveID(inner, false)
}

// probeID looks for an ID field or ID() method on ref. A nil pointer is
// rejected up front: calling an ID() method on one would panic if the
// method dereferences its receiver.
func probeID(ref any) (any, bool) {
	rv := reflect.ValueOf(ref)

	if rv.Kind() == reflect.Pointer && rv.IsNil() {
		return nil, false
	}

	if m := rv.MethodByName("ID"); m.IsValid() && m.Type().NumIn() == 0 && m.Type().NumOut() == 1 {
		return m.Call(nil)[0].Interface(), true
	}

	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}

	if rv.Kind() != reflect.Struct {
		return nil, false
	}

	f := rv.FieldByName("ID")
	if !f.IsValid() || !f.CanInterface() {
		return nil, false
	}

	return f.Interface(), true
}
