// Copyright (c) 2026 Geodrop. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package migration

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToPgx5DSN(t *testing.T) {
	tests := map[string]string{
		"postgres://geo:geo@db:5432/geo":   "pgx5://geo:geo@db:5432/geo",
		"postgresql://geo:geo@db:5432/geo": "pgx5://geo:geo@db:5432/geo",
		"pgx5://geo@db/geo":                "pgx5://geo@db/geo",
		"host=db user=geo":                 "host=db user=geo",
	}

	for input, want := range tests {
		assert.Equal(t, want, ToPgx5DSN(input), input)
	}
}
