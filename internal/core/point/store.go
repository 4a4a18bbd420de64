// Copyright (c) 2026 Geodrop. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package point

import "context"

// # Repository Contracts

// Store defines the persistence contract for points and their geo index.
type Store interface {
	/*
		Save writes the record with its absolute expiry and adds its index entry.

		Parameters:
		  - context: context.Context
		  - point: *Point

		Returns:
		  - error: Storage failures
	*/
	Save(context context.Context, point *Point) error

	/*
		WithinRadius lists the ids of index entries within radiusMeters of the
		centre. Entries may refer to records that no longer exist.

		Parameters:
		  - context: context.Context
		  - latitude, longitude: float64
		  - radiusMeters: float64

		Returns:
		  - []string: Candidate point ids
		  - error: Storage failures
	*/
	WithinRadius(context context.Context, latitude, longitude, radiusMeters float64) ([]string, error)

	// Exists reports whether the record is still live.
	Exists(context context.Context, id string) (bool, error)

	// Find loads a record. A missing record is apperr.NotFound.
	Find(context context.Context, id string) (*Point, error)

	// Unindex removes an index entry.
	Unindex(context context.Context, id string) error
}
