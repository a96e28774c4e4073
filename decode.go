// FILE: lixenwraith/fragment/decode.go
package fragment

import (
	"fmt"
	"net"
	"net/url"
	"reflect"
	"time"

	"github.com/mitchellh/mapstructure"
)

// textParser turns string input into a value of a type that mapstructure
// cannot reach by kind alone. parse returns a pointer to the parsed value.
type textParser struct {
	maxLen int
	parse  func(string) (any, error)
}

var textParsers = map[reflect.Type]textParser{
	reflect.TypeOf(net.IP{}): {
		maxLen: 45, // IPv6 with zone
		parse: func(s string) (any, error) {
			ip := net.ParseIP(s)
			if ip == nil {
				return nil, fmt.Errorf("invalid IP address %q", s)
			}
			return &ip, nil
		},
	},
	reflect.TypeOf(net.IPNet{}): {
		maxLen: 49, // IPv6 with /128
		parse: func(s string) (any, error) {
			_, n, err := net.ParseCIDR(s)
			if err != nil {
				return nil, err
			}
			return n, nil
		},
	},
	reflect.TypeOf(url.URL{}): {
		maxLen: 2048,
		parse: func(s string) (any, error) {
			return url.Parse(s)
		},
	},
}

// assign stores value into the field at dst, converting through mapstructure
// when the value is not directly assignable. dst must be addressable.
func (f *Field) assign(dst reflect.Value, value any) error {
	if value == nil {
		dst.Set(reflect.Zero(dst.Type()))
		return nil
	}

	rv := reflect.ValueOf(value)
	if rv.Type().AssignableTo(dst.Type()) {
		dst.Set(rv)
		return nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           dst.Addr().Interface(),
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			parseTextHook,
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToTimeHookFunc(time.RFC3339),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return fmt.Errorf("field %q of %s: decoder creation failed: %w", f.Name, f.Origin, err)
	}

	if err := decoder.Decode(value); err != nil {
		return fmt.Errorf("field %q of %s: cannot convert %T to %s: %w", f.Name, f.Origin, value, dst.Type(), err)
	}
	return nil
}

// parseTextHook applies textParsers to string input, for value and pointer targets
func parseTextHook(from, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String {
		return data, nil
	}

	target := to
	if to.Kind() == reflect.Ptr {
		target = to.Elem()
	}
	p, ok := textParsers[target]
	if !ok {
		return data, nil
	}

	s := reflect.ValueOf(data).String()
	if len(s) > p.maxLen {
		return nil, fmt.Errorf("%s input of %d bytes exceeds %d", target, len(s), p.maxLen)
	}

	parsed, err := p.parse(s)
	if err != nil {
		return nil, err
	}
	if to.Kind() == reflect.Ptr {
		return parsed, nil
	}
	return reflect.ValueOf(parsed).Elem().Interface(), nil
}
