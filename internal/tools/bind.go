package tools

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/toolforge/toolforge/internal/schema"
)

// ArgumentError reports that an argument mapping does not fit a tool's
// declared parameters. Its failure kind is TypeError.
type ArgumentError struct {
	msg string
}

func (e *ArgumentError) Error() string { return e.msg }
func (e *ArgumentError) Kind() string  { return schema.KindType }

func argErrorf(format string, a ...any) *ArgumentError {
	return &ArgumentError{msg: fmt.Sprintf(format, a...)}
}

// bind maps args onto the struct held by target. Missing required names and
// unknown extra names are both errors.
func bind(tool string, params []param, target reflect.Value, args map[string]any) error {
	known := make(map[string]bool, len(params))
	for _, p := range params {
		known[p.name] = true
	}
	var extra []string
	for k := range args {
		if !known[k] {
			extra = append(extra, k)
		}
	}
	if len(extra) > 0 {
		sort.Strings(extra)
		return argErrorf("%s() got an unexpected keyword argument '%s'", tool, extra[0])
	}

	for _, p := range params {
		field := target.Field(p.index)
		v, ok := args[p.name]
		if !ok || v == nil {
			if p.required {
				return argErrorf("%s() missing required argument: '%s'", tool, p.name)
			}
			if p.defaultVal == "" {
				continue
			}
			if err := setFromText(field, p.defaultVal); err != nil {
				return argErrorf("%s() bad default for '%s': %v", tool, p.name, err)
			}
			continue
		}
		if err := setValue(field, v); err != nil {
			return argErrorf("%s() argument '%s': %v", tool, p.name, err)
		}
	}
	return nil
}

func setValue(field reflect.Value, v any) error {
	switch field.Kind() {
	case reflect.String:
		s, err := toText(v)
		if err != nil {
			return err
		}
		field.SetString(s)
		return nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := toInt(v)
		if err != nil {
			return err
		}
		if field.OverflowInt(n) {
			return fmt.Errorf("%d overflows %s", n, field.Type())
		}
		field.SetInt(n)
		return nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := toInt(v)
		if err != nil {
			return err
		}
		if n < 0 || field.OverflowUint(uint64(n)) {
			return fmt.Errorf("%d out of range for %s", n, field.Type())
		}
		field.SetUint(uint64(n))
		return nil
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return err
		}
		return json.Unmarshal(data, field.Addr().Interface())
	}
}

func setFromText(field reflect.Value, text string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(text)
		return nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return setValue(field, text)
	default:
		return json.Unmarshal([]byte(text), field.Addr().Interface())
	}
}

func toText(v any) (string, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case json.Number:
		return x.String(), nil
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), nil
	case bool:
		return strconv.FormatBool(x), nil
	case int:
		return strconv.Itoa(x), nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	default:
		data, err := json.Marshal(x)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
}

func toInt(v any) (int64, error) {
	switch x := v.(type) {
	case float64:
		if x != math.Trunc(x) || math.IsInf(x, 0) || x > math.MaxInt64 || x < math.MinInt64 {
			return 0, fmt.Errorf("expected an integer, got %v", x)
		}
		return int64(x), nil
	case json.Number:
		return strconv.ParseInt(x.String(), 10, 64)
	case int:
		return int64(x), nil
	case int64:
		return x, nil
	case int32:
		return int64(x), nil
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(x), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("expected an integer, got %q", x)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("expected an integer, got %T", v)
	}
}
