// FILE: lixenwraith/nvconfig/decode.go
package nvconfig

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
)

var (
	flagType   = reflect.TypeOf(Flag(0))
	millisType = reflect.TypeOf(Millis(0))
)

// decodeRecord is the single authoritative function for decoding a parsed profile
// onto a record. Keys absent from data leave the target's fields untouched.
func decodeRecord(data map[string]any, target *Record) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		TagName:          "toml",
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook:       getDecodeHook(),
	})
	if err != nil {
		return fmt.Errorf("decoder creation failed: %w", err)
	}

	if err := decoder.Decode(data); err != nil {
		return fmt.Errorf("profile decode failed: %w", err)
	}

	return nil
}

// getDecodeHook returns the composite decode hook for record field types
func getDecodeHook() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		toFlagHookFunc(),
		toMillisHookFunc(),
		toVersionHookFunc(),
	)
}

// toFlagHookFunc accepts booleans, boolean strings and small integers for Flag fields
func toFlagHookFunc() mapstructure.DecodeHookFunc {
	return func(f reflect.Type, t reflect.Type, data any) (any, error) {
		if t != flagType {
			return data, nil
		}

		switch f.Kind() {
		case reflect.Bool:
			return FlagOf(reflect.ValueOf(data).Bool()), nil
		case reflect.String:
			s := strings.TrimSpace(reflect.ValueOf(data).String())
			if b, err := strconv.ParseBool(s); err == nil {
				return FlagOf(b), nil
			}
		}

		n, ok, err := toUint(data, math.MaxUint8)
		if !ok {
			return data, nil
		}
		if err != nil {
			return nil, fmt.Errorf("invalid flag: %w", err)
		}
		return Flag(n), nil
	}
}

// toMillisHookFunc accepts millisecond counts and Go duration strings ("2m", "1h30m")
func toMillisHookFunc() mapstructure.DecodeHookFunc {
	return func(f reflect.Type, t reflect.Type, data any) (any, error) {
		if t != millisType {
			return data, nil
		}

		if f.Kind() == reflect.String {
			s := strings.TrimSpace(reflect.ValueOf(data).String())
			if _, err := strconv.ParseUint(s, 10, 64); err != nil {
				d, perr := time.ParseDuration(s)
				if perr != nil {
					return nil, fmt.Errorf("invalid period %q: %w", s, perr)
				}
				if d < 0 || d%time.Millisecond != 0 || d.Milliseconds() > math.MaxUint32 {
					return nil, fmt.Errorf("period %q is not a whole number of milliseconds in uint32 range", s)
				}
				return Millis(d.Milliseconds()), nil
			}
		}

		n, ok, err := toUint(data, math.MaxUint32)
		if !ok {
			return data, nil
		}
		if err != nil {
			return nil, fmt.Errorf("invalid period: %w", err)
		}
		return Millis(n), nil
	}
}

// toVersionHookFunc range-checks the plain uint8 version field
func toVersionHookFunc() mapstructure.DecodeHookFunc {
	return func(f reflect.Type, t reflect.Type, data any) (any, error) {
		if t.Kind() != reflect.Uint8 || t == flagType {
			return data, nil
		}
		n, ok, err := toUint(data, math.MaxUint8)
		if !ok {
			return data, nil
		}
		if err != nil {
			return nil, fmt.Errorf("invalid version: %w", err)
		}
		return uint8(n), nil
	}
}

// toUint extracts a non-negative integer no larger than max from a decoded value.
// ok is false when data is not numeric at all.
func toUint(data any, max uint64) (n uint64, ok bool, err error) {
	v := reflect.ValueOf(data)
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i := v.Int()
		if i < 0 {
			return 0, true, fmt.Errorf("negative value %d", i)
		}
		n = uint64(i)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n = v.Uint()
	case reflect.Float32, reflect.Float64:
		fl := v.Float()
		if fl < 0 || fl != math.Trunc(fl) || fl > float64(max) {
			return 0, true, fmt.Errorf("value %v is not an integer in [0, %d]", fl, max)
		}
		n = uint64(fl)
	case reflect.String:
		// json.Number and numeric strings
		u, perr := strconv.ParseUint(strings.TrimSpace(v.String()), 10, 64)
		if perr != nil {
			return 0, true, fmt.Errorf("not an unsigned integer: %q", v.String())
		}
		n = u
	default:
		return 0, false, nil
	}

	if n > max {
		return 0, true, fmt.Errorf("value %d exceeds %d", n, max)
	}
	return n, true, nil
}
