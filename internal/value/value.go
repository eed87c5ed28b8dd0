package value

import (
	"reflect"
	"strconv"

	"github.com/jacoelho/rowmap/internal/number"
)

// Text renders a JSON value as text: strings as is, numbers in decimal form,
// booleans and null as their literals, containers as compact JSON.
func Text(v any) string {
	switch current := v.(type) {
	case nil:
		return "null"
	case string:
		return current
	case bool:
		return strconv.FormatBool(current)
	}

	if formatted, ok := number.Format(v); ok {
		return formatted
	}

	encoded, err := Marshal(v)
	if err != nil {
		return ""
	}
	return string(encoded)
}

// Equal reports strict JSON equality: same kind and same value, no coercion
// between kinds. Numbers compare numerically regardless of their Go representation.
func Equal(a, b any) bool {
	aNumber, aIsNumber := number.ToFloat64(a)
	bNumber, bIsNumber := number.ToFloat64(b)
	if aIsNumber || bIsNumber {
		return aIsNumber && bIsNumber && aNumber == bNumber
	}

	switch a.(type) {
	case nil, string, bool:
		return a == b
	}

	return reflect.DeepEqual(a, b)
}
