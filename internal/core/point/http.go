// Copyright (c) 2026 Geodrop. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package point

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/geodrop/internal/platform/constants"
	requestutil "github.com/taibuivan/geodrop/internal/platform/request"
	"github.com/taibuivan/geodrop/internal/platform/respond"
	"github.com/taibuivan/geodrop/internal/platform/validate"
	"github.com/taibuivan/geodrop/pkg/convert"
)

// # Handler Implementation

// Handler implements the HTTP layer for point submission and search.
type Handler struct {
	service *Service
}

// NewHandler constructs a new point [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns a [chi.Router] configured with the point endpoints.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/", handler.insertPoint)
	router.Get("/", handler.queryPoints)

	return router
}

/*
POST /points.

Description: Publishes a point for the configured TTL. Reserved fields in the
body (id, created_at, expires_at) are ignored.

Request:
  - Body: {latitude, longitude, ...attributes}

Response:
  - 201: Point: {id, latitude, longitude, created_at, expires_at, ...attributes}
  - 400: ErrValidation: missing or out-of-range coordinates
  - 503: ErrServiceUnavailable: store unreachable
*/
func (handler *Handler) insertPoint(writer http.ResponseWriter, request *http.Request) {
	body, err := requestutil.DecodeObject(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	latitude := coordinate(validator, constants.FieldLatitude, body[constants.FieldLatitude], MaxLatitude)
	longitude := coordinate(validator, constants.FieldLongitude, body[constants.FieldLongitude], MaxLongitude)
	attributes := requestutil.ScalarFields(body, validator, reservedFields...)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	point, err := handler.service.Insert(request.Context(), InsertInput{
		Latitude:   latitude,
		Longitude:  longitude,
		Attributes: attributes,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, point)
}

/*
GET /points.

Description: Lists the live points within a radius of a centre.

Request:
  - latitude: float
  - longitude: float
  - radius: float (meters, > 0)

Response:
  - 200: []Point: possibly empty
  - 400: ErrValidation: missing or out-of-range parameters
  - 503: ErrServiceUnavailable: store unreachable
*/
func (handler *Handler) queryPoints(writer http.ResponseWriter, request *http.Request) {
	query := request.URL.Query()

	validator := &validate.Validator{}
	latitude := coordinate(validator, constants.FieldLatitude, query.Get(constants.FieldLatitude), MaxLatitude)
	longitude := coordinate(validator, constants.FieldLongitude, query.Get(constants.FieldLongitude), MaxLongitude)
	radius, ok := queryFloat(validator, constants.FieldRadius, query.Get(constants.FieldRadius))
	if ok {
		validator.Positive(constants.FieldRadius, radius)
	}

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	points, err := handler.service.Query(request.Context(), latitude, longitude, radius)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, points)
}

// # Helpers

// coordinate reads a required numeric coordinate within [-limit, limit].
func coordinate(validator *validate.Validator, field string, raw any, limit float64) float64 {
	if text, isText := raw.(string); isText && strings.TrimSpace(text) == "" {
		raw = nil
	}
	if raw == nil {
		validator.Custom(field, true, "This field is required")
		return 0
	}

	value, ok := convert.ParseFloat64(raw)
	if !ok {
		validator.Custom(field, true, "Must be a number")
		return 0
	}

	validator.FloatRange(field, value, -limit, limit)
	return value
}

func queryFloat(validator *validate.Validator, field, raw string) (float64, bool) {
	if strings.TrimSpace(raw) == "" {
		validator.Custom(field, true, "This field is required")
		return 0, false
	}

	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		validator.Custom(field, true, "Must be a number")
		return 0, false
	}
	return value, true
}
