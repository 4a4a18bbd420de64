// Copyright (c) 2026 Geodrop. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package query parses list-valued settings and query parameters.
package query

import "strings"

// StringSlice parses a single comma-separated string
// (e.g. "https://a.example, https://b.example") into a slice of trimmed values.
// Empty entries are dropped; an input with no values yields nil.
func StringSlice(val string) []string {
	if strings.TrimSpace(val) == "" {
		return nil
	}

	var res []string
	for _, v := range strings.Split(val, ",") {
		clean := strings.TrimSpace(v)
		if clean != "" {
			res = append(res, clean)
		}
	}
	return res
}
