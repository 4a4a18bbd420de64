// Copyright (c) 2026 Geodrop. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package point is the ephemeral geospatial point store.

Points are short-lived records with coordinates and free-form attributes. Each
one lives in two places that are never transactionally tied together:

  - Record: an expiring hash, removed by the store once its TTL elapses.
  - Index entry: a member of one shared geo set, used for radius search.

The index may hold entries whose record has already expired. Every radius
query checks each candidate and drops stale entries as it finds them, so no
background sweep is needed for queries to be correct.
*/
package point

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/taibuivan/geodrop/internal/platform/constants"
	"github.com/taibuivan/geodrop/pkg/convert"
)

// Bounds of a searchable coordinate. Latitude is limited by the geo index
// encoding (EPSG:3857), not by the sphere.
const (
	MaxLatitude  = 85.05112878
	MaxLongitude = 180.0
)

// ErrCorruptRecord is returned when a stored record cannot be decoded.
var ErrCorruptRecord = errors.New("point: corrupt record")

// reservedFields are owned by the store; client attributes never override them.
var reservedFields = []string{
	constants.FieldID,
	constants.FieldLatitude,
	constants.FieldLongitude,
	constants.FieldCreatedAt,
	constants.FieldExpiresAt,
}

// # Domain Entities

// Point is a published location with its payload.
type Point struct {
	ID         string
	Latitude   float64
	Longitude  float64
	Attributes map[string]string
	CreatedAt  time.Time
	ExpiresAt  time.Time
}

// Fields returns the record as stored: attributes plus the reserved fields.
func (point *Point) Fields() map[string]string {
	fields := make(map[string]string, len(point.Attributes)+len(reservedFields))
	for key, value := range point.Attributes {
		fields[key] = value
	}

	fields[constants.FieldID] = point.ID
	fields[constants.FieldLatitude] = strconv.FormatFloat(point.Latitude, 'f', -1, 64)
	fields[constants.FieldLongitude] = strconv.FormatFloat(point.Longitude, 'f', -1, 64)
	fields[constants.FieldCreatedAt] = point.CreatedAt.UTC().Format(time.RFC3339)
	fields[constants.FieldExpiresAt] = point.ExpiresAt.UTC().Format(time.RFC3339)

	return fields
}

// MarshalJSON renders one flat object with numeric coordinates.
func (point *Point) MarshalJSON() ([]byte, error) {
	object := make(map[string]any, len(point.Attributes)+len(reservedFields))
	for key, value := range point.Attributes {
		object[key] = value
	}

	object[constants.FieldID] = point.ID
	object[constants.FieldLatitude] = point.Latitude
	object[constants.FieldLongitude] = point.Longitude
	if !point.CreatedAt.IsZero() {
		object[constants.FieldCreatedAt] = point.CreatedAt.UTC().Format(time.RFC3339)
	}
	if !point.ExpiresAt.IsZero() {
		object[constants.FieldExpiresAt] = point.ExpiresAt.UTC().Format(time.RFC3339)
	}

	return json.Marshal(object)
}

// fromFields decodes a stored record, coercing the coordinates to numbers.
func fromFields(id string, fields map[string]string) (*Point, error) {
	latitude, ok := convert.ParseFloat64(fields[constants.FieldLatitude])
	if !ok {
		return nil, fmt.Errorf("%w: %s has non-numeric latitude", ErrCorruptRecord, id)
	}

	longitude, ok := convert.ParseFloat64(fields[constants.FieldLongitude])
	if !ok {
		return nil, fmt.Errorf("%w: %s has non-numeric longitude", ErrCorruptRecord, id)
	}

	point := &Point{
		ID:         id,
		Latitude:   latitude,
		Longitude:  longitude,
		Attributes: make(map[string]string, len(fields)),
		CreatedAt:  parseTime(fields[constants.FieldCreatedAt]),
		ExpiresAt:  parseTime(fields[constants.FieldExpiresAt]),
	}

	for key, value := range fields {
		if !isReserved(key) {
			point.Attributes[key] = value
		}
	}

	return point, nil
}

func parseTime(value string) time.Time {
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}
	}
	return parsed
}

func isReserved(key string) bool {
	for _, reserved := range reservedFields {
		if key == reserved {
			return true
		}
	}
	return false
}
