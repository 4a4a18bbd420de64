// Copyright (c) 2026 Geodrop. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package convert provides quick type-conversion utilities.

It wraps standards like [strconv] to turn loosely typed values (Redis hash
fields, free-form JSON bodies) into Go scalars.

Every helper reports false on malformed input instead of returning a zero value.
*/
package convert

import (
	"encoding/json"
	"strconv"
	"strings"
)

// ParseFloat64 converts a decoded JSON value (number or numeric string) to a float64.
// It reports false when the value is not numeric.
func ParseFloat64(value any) (float64, bool) {
	switch typed := value.(type) {
	case json.Number:
		v, err := typed.Float64()
		return v, err == nil
	case float64:
		return typed, true
	case string:
		v, err := strconv.ParseFloat(strings.TrimSpace(typed), 64)
		return v, err == nil
	default:
		return 0, false
	}
}

// ScalarString renders a decoded JSON scalar (string, number, bool) as a string.
// It reports false for null, arrays and objects.
func ScalarString(value any) (string, bool) {
	switch typed := value.(type) {
	case string:
		return typed, true
	case json.Number:
		return typed.String(), true
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(typed), true
	default:
		return "", false
	}
}
