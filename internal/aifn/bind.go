package aifn

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// a bound argument in declaration order
type argument struct {
	Name  string
	Value any
}

// binds loose arguments to the parameter list: fills defaults, rejects unknown or
// missing arguments and coerces values to the declared types
func bind(def Definition, args Args) ([]argument, error) {
	known := make(map[string]struct{}, len(def.Params))
	for _, p := range def.Params {
		known[p.Name] = struct{}{}
	}

	for name := range args {
		if _, ok := known[name]; !ok {
			return nil, &ArgumentError{Param: name, Reason: "unexpected argument"}
		}
	}

	bound := make([]argument, 0, len(def.Params))

	for _, p := range def.Params {
		raw, ok := args[p.Name]
		if !ok || raw == nil {
			if p.Required {
				return nil, &ArgumentError{Param: p.Name, Reason: "is required"}
			}

			if p.Default == nil {
				continue
			}
			raw = p.Default
		}

		value, err := coerce(p.Type, raw)
		if err != nil {
			return nil, &ArgumentError{Param: p.Name, Reason: err.Error()}
		}

		if p.Validate != "" {
			if err := validate.Var(value, p.Validate); err != nil {
				return nil, &ArgumentError{Param: p.Name, Reason: fmt.Sprintf("failed validation %q", p.Validate)}
			}
		}

		bound = append(bound, argument{Name: p.Name, Value: value})
	}

	return bound, nil
}

// converts JSON-decoded or query-string values to the declared type
func coerce(t ParamType, v any) (any, error) {
	switch t {
	case TypeString, "":
		switch x := v.(type) {
		case string:
			return x, nil
		case fmt.Stringer:
			return x.String(), nil
		}

	case TypeInteger:
		switch x := v.(type) {
		case int:
			return x, nil
		case int64:
			return int(x), nil
		case float64:
			// -math.MinInt is the first value past math.MaxInt that a float64 holds exactly
			if x == math.Trunc(x) && x >= math.MinInt && x < -math.MinInt {
				return int(x), nil
			}
		case json.Number:
			if n, err := x.Int64(); err == nil && n >= math.MinInt && n <= math.MaxInt {
				return int(n), nil
			}
		case string:
			if n, err := strconv.Atoi(strings.TrimSpace(x)); err == nil {
				return n, nil
			}
		}

	case TypeNumber:
		switch x := v.(type) {
		case float64:
			return x, nil
		case int:
			return float64(x), nil
		case json.Number:
			if f, err := x.Float64(); err == nil {
				return f, nil
			}
		case string:
			if f, err := strconv.ParseFloat(strings.TrimSpace(x), 64); err == nil {
				return f, nil
			}
		}

	case TypeBoolean:
		switch x := v.(type) {
		case bool:
			return x, nil
		case string:
			if b, err := strconv.ParseBool(strings.TrimSpace(x)); err == nil {
				return b, nil
			}
		}

	case TypeArray:
		switch x := v.(type) {
		case []any:
			return x, nil
		case []string:
			out := make([]any, len(x))
			for i, s := range x {
				out[i] = s
			}
			return out, nil
		case string:
			var out []any
			if err := json.Unmarshal([]byte(x), &out); err == nil {
				return out, nil
			}
		}

	case TypeObject:
		switch x := v.(type) {
		case map[string]any:
			return x, nil
		case string:
			var out map[string]any
			if err := json.Unmarshal([]byte(x), &out); err == nil && out != nil {
				return out, nil
			}
		}

	default:
		return nil, fmt.Errorf("unsupported parameter type %q", t)
	}

	return nil, fmt.Errorf("expected %s, got %T", t, v)
}
