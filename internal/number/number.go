package number

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrNotIndex reports a value that cannot be used as a non-negative position or count.
var ErrNotIndex = errors.New("not a non-negative integer")

// ToFloat64 converts supported numeric values to float64.
func ToFloat64(value any) (float64, bool) {
	switch current := value.(type) {
	case int:
		return float64(current), true
	case int8:
		return float64(current), true
	case int16:
		return float64(current), true
	case int32:
		return float64(current), true
	case int64:
		return float64(current), true
	case uint:
		return float64(current), true
	case uint8:
		return float64(current), true
	case uint16:
		return float64(current), true
	case uint32:
		return float64(current), true
	case uint64:
		return float64(current), true
	case float32:
		return float64(current), true
	case float64:
		return current, true
	case json.Number:
		parsed, err := current.Float64()
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}

// IsNumber reports whether value is a JSON number.
func IsNumber(value any) bool {
	_, ok := ToFloat64(value)
	return ok
}

// Format renders a number the way a JSON document would show it:
// shortest round-trip decimal, exponent form only for very large or very small magnitudes.
// Integer literals decoded as json.Number are returned untouched so large ids keep every digit.
func Format(value any) (string, bool) {
	if n, ok := value.(json.Number); ok && isIntegerLiteral(string(n)) {
		return string(n), true
	}

	f, ok := ToFloat64(value)
	if !ok {
		return "", false
	}

	switch {
	case math.IsNaN(f):
		return "NaN", true
	case math.IsInf(f, 1):
		return "Infinity", true
	case math.IsInf(f, -1):
		return "-Infinity", true
	case f == 0:
		return "0", true
	}

	abs := math.Abs(f)
	if abs >= 1e21 || abs < 1e-6 {
		return strconv.FormatFloat(f, 'e', -1, 64), true
	}

	return strconv.FormatFloat(f, 'f', -1, 64), true
}

// ToIndex converts a decoded JSON value into a non-negative int.
// Integral floats are accepted; fractions, negatives, strings and booleans are not.
// Values beyond math.MaxInt saturate to math.MaxInt.
func ToIndex(value any) (int, error) {
	switch current := value.(type) {
	case int:
		return checkIndex(int64(current), value)
	case int8:
		return checkIndex(int64(current), value)
	case int16:
		return checkIndex(int64(current), value)
	case int32:
		return checkIndex(int64(current), value)
	case int64:
		return checkIndex(current, value)
	case uint:
		return saturateUint(uint64(current)), nil
	case uint8:
		return saturateUint(uint64(current)), nil
	case uint16:
		return saturateUint(uint64(current)), nil
	case uint32:
		return saturateUint(uint64(current)), nil
	case uint64:
		return saturateUint(current), nil
	case json.Number:
		if parsed, err := current.Int64(); err == nil {
			return checkIndex(parsed, value)
		}
	}

	f, ok := ToFloat64(value)
	if !ok {
		return 0, fmt.Errorf("%w: got %T", ErrNotIndex, value)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, fmt.Errorf("%w: %v", ErrNotIndex, value)
	}
	if f < 0 {
		return 0, fmt.Errorf("%w: %v is negative", ErrNotIndex, value)
	}
	if f >= math.MaxInt {
		return math.MaxInt, nil
	}

	return int(f), nil
}

// ParseIndex parses decimal text such as a query-string parameter into a non-negative int.
// Values beyond math.MaxInt saturate to math.MaxInt.
func ParseIndex(text string) (int, error) {
	text = strings.TrimSpace(text)
	parsed, err := strconv.ParseInt(text, 10, 64)
	if errors.Is(err, strconv.ErrRange) && !strings.HasPrefix(text, "-") {
		return math.MaxInt, nil
	}
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrNotIndex, text)
	}

	return checkIndex(parsed, text)
}

func checkIndex(n int64, original any) (int, error) {
	if n < 0 {
		return 0, fmt.Errorf("%w: %v is negative", ErrNotIndex, original)
	}
	if uint64(n) > math.MaxInt {
		return math.MaxInt, nil
	}
	return int(n), nil
}

func saturateUint(n uint64) int {
	if n > math.MaxInt {
		return math.MaxInt
	}
	return int(n)
}

func isIntegerLiteral(s string) bool {
	if s == "" {
		return false
	}
	if s[0] == '-' {
		s = s[1:]
	}
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
