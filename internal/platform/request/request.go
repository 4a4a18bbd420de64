// Copyright (c) 2026 Geodrop. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package request provides utilities for extracting data from HTTP requests.

It abstracts away the common body decoding and header parsing patterns,
ensuring consistent error handling and type safety.
*/
package requestutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"slices"
	"strings"

	"github.com/taibuivan/geodrop/internal/platform/constants"
	"github.com/taibuivan/geodrop/internal/platform/validate"
	"github.com/taibuivan/geodrop/pkg/convert"
)

// MaxBodyBytes caps request bodies (64 KiB); profiles and point payloads are small.
const MaxBodyBytes = 64 << 10

/*
DecodeObject reads the request body as a free-form JSON object.

Numbers are kept as [json.Number] so that coordinates and numeric attributes
keep their textual precision.

Returns:
  - map[string]any: The decoded object
  - error: validate.ErrInvalidJSON if the body is not a JSON object
*/
func DecodeObject(request *http.Request) (map[string]any, error) {
	body, err := io.ReadAll(io.LimitReader(request.Body, MaxBodyBytes))
	if err != nil {
		return nil, validate.ErrInvalidJSON
	}

	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.UseNumber()

	var object map[string]any
	if err := decoder.Decode(&object); err != nil || object == nil {
		return nil, validate.ErrInvalidJSON
	}
	return object, nil
}

/*
BearerToken returns the credential carried in the Authorization header.

Mobile clients send the raw token; "Bearer <token>" is accepted as well.
An empty string means no credential was presented.
*/
func BearerToken(request *http.Request) string {
	header := strings.TrimSpace(request.Header.Get(constants.HeaderAuthorization))
	if header == "" {
		return ""
	}

	scheme, token, found := strings.Cut(header, " ")
	if found && strings.EqualFold(scheme, constants.AuthScheme) {
		return strings.TrimSpace(token)
	}
	return header
}

/*
ScalarFields flattens a decoded JSON object into string fields.

Strings, numbers and booleans are kept in their textual form; null, arrays and
nested objects are reported on the validator. Keys listed in skip are ignored.
*/
func ScalarFields(object map[string]any, validator *validate.Validator, skip ...string) map[string]string {
	fields := make(map[string]string, len(object))

	keys := make([]string, 0, len(object))
	for key := range object {
		keys = append(keys, key)
	}
	slices.Sort(keys)

	for _, key := range keys {
		if slices.Contains(skip, key) {
			continue
		}

		value, ok := convert.ScalarString(object[key])
		if !ok {
			validator.Custom(key, true, "Must be a string, number or boolean")
			continue
		}
		fields[key] = value
	}

	return fields
}
