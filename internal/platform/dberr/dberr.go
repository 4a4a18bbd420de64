// Copyright (c) 2026 Geodrop. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package dberr provides a bridge between low-level storage errors and
// higher-level application errors.
package dberr

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/geodrop/internal/platform/apperr"
)

// IsNoRows reports whether err means the queried row or key does not exist.
func IsNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows) || errors.Is(err, redis.Nil)
}

// Wrap inspects a storage error and wraps it into a meaningful [apperr.AppError].
// It hides storage details from the client while classifying the error type.
//
// Example:
//
//	dberr.Wrap(err, "User") // apperr.NotFound("User") for a missing row
func Wrap(err error, resource string) error {
	if err == nil {
		return nil
	}

	// Already classified further down
	if appError := apperr.As(err); appError != nil {
		return appError
	}

	// 1. Not Found mapping
	if IsNoRows(err) {
		return apperr.NotFound(resource)
	}

	// 2. Anything else means the store could not serve the request
	return apperr.ServiceUnavailable("Storage is temporarily unavailable", err)
}
