// Copyright (c) 2026 Geodrop. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package point

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/taibuivan/geodrop/internal/platform/apperr"
	"github.com/taibuivan/geodrop/internal/platform/ctxutil"
	"github.com/taibuivan/geodrop/internal/platform/dberr"
	"github.com/taibuivan/geodrop/internal/platform/metrics"
	"github.com/taibuivan/geodrop/pkg/uuid"
)

// # Service Layer

// Option customizes a [Service].
type Option func(*Service)

// WithClock overrides the time source used for creation and expiry times.
func WithClock(now func() time.Time) Option {
	return func(service *Service) { service.now = now }
}

// Service publishes and searches points.
type Service struct {
	store Store
	ttl   time.Duration
	now   func() time.Time
}

// NewService constructs a new [Service]; every point expires ttl after insertion.
func NewService(store Store, ttl time.Duration, opts ...Option) *Service {
	service := &Service{store: store, ttl: ttl, now: time.Now}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// InsertInput holds a validated point submission.
type InsertInput struct {
	Latitude   float64
	Longitude  float64
	Attributes map[string]string
}

/*
Insert publishes a point under a fresh time-ordered id.

Parameters:
  - context: context.Context
  - input: InsertInput

Returns:
  - *Point: The stored point, including id and expiry
  - error: apperr.ServiceUnavailable on storage failure
*/
func (service *Service) Insert(context context.Context, input InsertInput) (*Point, error) {

	// Expiry is stored with second precision.
	createdAt := service.now().UTC().Truncate(time.Second)

	point := &Point{
		ID:         uuid.New(),
		Latitude:   input.Latitude,
		Longitude:  input.Longitude,
		Attributes: input.Attributes,
		CreatedAt:  createdAt,
		ExpiresAt:  createdAt.Add(service.ttl),
	}

	if err := service.store.Save(context, point); err != nil {
		return nil, dberr.Wrap(err, "Point")
	}

	metrics.PointsInserted.Inc()
	ctxutil.GetLogger(context).DebugContext(context, "point_inserted",
		slog.String("point_id", point.ID),
		slog.Time("expires_at", point.ExpiresAt),
	)

	return point, nil
}

/*
Query returns the live points within radiusMeters of the centre.

Steps:
 1. Search the geo index for candidates.
 2. Drop candidates whose record is gone, removing their index entry.
 3. Load the rest with numeric coordinates.

Result order follows the index. Failing to remove a stale entry does not fail
the query; the next query retries it.

Parameters:
  - context: context.Context
  - latitude, longitude: float64 (centre)
  - radiusMeters: float64

Returns:
  - []*Point: Live points, never nil
  - error: apperr.ServiceUnavailable on storage failure
*/
func (service *Service) Query(context context.Context, latitude, longitude, radiusMeters float64) ([]*Point, error) {
	candidates, err := service.store.WithinRadius(context, latitude, longitude, radiusMeters)
	if err != nil {
		return nil, dberr.Wrap(err, "Point")
	}

	points := make([]*Point, 0, len(candidates))
	for _, id := range candidates {
		exists, err := service.store.Exists(context, id)
		if err != nil {
			return nil, dberr.Wrap(err, "Point")
		}
		if !exists {
			service.evict(context, id)
			continue
		}

		point, err := service.store.Find(context, id)
		switch {
		case apperr.IsNotFound(err):
			service.evict(context, id)
			continue
		case errors.Is(err, ErrCorruptRecord):
			ctxutil.GetLogger(context).WarnContext(context, "corrupt_point_skipped",
				slog.String("point_id", id),
				slog.String("error", err.Error()),
			)
			continue
		case err != nil:
			return nil, dberr.Wrap(err, "Point")
		}

		points = append(points, point)
	}

	return points, nil
}

// evict drops a stale index entry.
func (service *Service) evict(context context.Context, id string) {
	logger := ctxutil.GetLogger(context)

	if err := service.store.Unindex(context, id); err != nil {
		logger.WarnContext(context, "stale_point_eviction_failed",
			slog.String("point_id", id),
			slog.String("error", err.Error()),
		)
		return
	}

	metrics.StaleIndexEvictions.Inc()
	logger.DebugContext(context, "stale_point_evicted", slog.String("point_id", id))
}
