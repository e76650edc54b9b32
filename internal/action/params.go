package action

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/mj1618/dump-hierarchy/internal/input"
)

// ParamError reports a missing or malformed action parameter.
type ParamError struct {
	Param  string
	Reason string
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("parameter %q: %s", e.Param, e.Reason)
}

func missing(key string) error {
	return &ParamError{Param: key, Reason: "is required"}
}

func invalid(key, format string, args ...interface{}) error {
	return &ParamError{Param: key, Reason: fmt.Sprintf(format, args...)}
}

// Params are the parameters of one action. Values come from JSON scripts
// (float64), YAML scripts (int), or query strings (string); the accessors
// accept all three.
type Params map[string]interface{}

// Has reports whether key is present.
func (p Params) Has(key string) bool {
	_, ok := p[key]
	return ok
}

// RequireString returns the string value of key or a *ParamError.
func (p Params) RequireString(key string) (string, error) {
	v, ok := p[key]
	if !ok || v == nil {
		return "", missing(key)
	}
	if s, ok := v.(string); ok {
		return s, nil
	}
	// Numeric and boolean values that YAML/JSON parsed for us
	return fmt.Sprintf("%v", v), nil
}

// StringOr returns the string value of key, or defaultVal when absent.
func (p Params) StringOr(key, defaultVal string) (string, error) {
	if !p.Has(key) {
		return defaultVal, nil
	}
	return p.RequireString(key)
}

// RequireInt returns the integer value of key or a *ParamError.
func (p Params) RequireInt(key string) (int, error) {
	v, ok := p[key]
	if !ok || v == nil {
		return 0, missing(key)
	}
	return toInt(key, v)
}

// IntOr returns the integer value of key, or defaultVal when absent.
func (p Params) IntOr(key string, defaultVal int) (int, error) {
	if !p.Has(key) {
		return defaultVal, nil
	}
	return p.RequireInt(key)
}

// BoolOr returns the boolean value of key, or defaultVal when absent.
func (p Params) BoolOr(key string, defaultVal bool) (bool, error) {
	v, ok := p[key]
	if !ok || v == nil {
		return defaultVal, nil
	}
	switch b := v.(type) {
	case bool:
		return b, nil
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(b))
		if err != nil {
			return false, invalid(key, "expected true or false, got %q", b)
		}
		return parsed, nil
	}
	return false, invalid(key, "expected a boolean, got %T", v)
}

// points reads a non-empty list of {x, y} objects.
func (p Params) points(key string) ([]input.Point, error) {
	v, ok := p[key]
	if !ok || v == nil {
		return nil, missing(key)
	}
	return toPoints(key, v)
}

// tracks reads a list of point lists.
func (p Params) tracks(key string) ([][]input.Point, error) {
	v, ok := p[key]
	if !ok || v == nil {
		return nil, missing(key)
	}
	list, ok := v.([]interface{})
	if !ok {
		return nil, invalid(key, "expected a list of pointer tracks, got %T", v)
	}
	out := make([][]input.Point, 0, len(list))
	for i, item := range list {
		pts, err := toPoints(fmt.Sprintf("%s[%d]", key, i), item)
		if err != nil {
			return nil, err
		}
		out = append(out, pts)
	}
	return out, nil
}

func toPoints(key string, v interface{}) ([]input.Point, error) {
	list, ok := v.([]interface{})
	if !ok {
		return nil, invalid(key, "expected a list of {x, y} objects, got %T", v)
	}
	if len(list) == 0 {
		return nil, invalid(key, "must not be empty")
	}
	out := make([]input.Point, 0, len(list))
	for i, item := range list {
		m, ok := item.(map[string]interface{})
		if !ok {
			return nil, invalid(key, "item %d: expected an {x, y} object, got %T", i, item)
		}
		pt := Params(m)
		x, err := pt.RequireInt("x")
		if err != nil {
			return nil, invalid(key, "item %d: %v", i, err)
		}
		y, err := pt.RequireInt("y")
		if err != nil {
			return nil, invalid(key, "item %d: %v", i, err)
		}
		out = append(out, input.Point{X: x, Y: y})
	}
	return out, nil
}

func toInt(key string, v interface{}) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		return floatToInt(key, n)
	case string:
		s := strings.TrimSpace(n)
		if i, err := strconv.Atoi(s); err == nil {
			return i, nil
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return floatToInt(key, f)
		}
		return 0, invalid(key, "expected a number, got %q", n)
	}
	return 0, invalid(key, "expected a number, got %T", v)
}

// floatToInt accepts only whole numbers that fit in an int.
func floatToInt(key string, f float64) (int, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, invalid(key, "expected a number, got %v", f)
	}
	if f != math.Trunc(f) {
		return 0, invalid(key, "expected a whole number, got %v", f)
	}
	if f < math.MinInt64 || f >= math.MaxInt64 || int64(int(f)) != int64(f) {
		return 0, invalid(key, "%v is out of range", f)
	}
	return int(f), nil
}
