// Copyright (c) 2026 Geodrop. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/geodrop/internal/platform/constants"
	requestutil "github.com/taibuivan/geodrop/internal/platform/request"
	"github.com/taibuivan/geodrop/internal/platform/respond"
	"github.com/taibuivan/geodrop/internal/platform/validate"
)

// # Definitions & Constructors

// Handler implements the credential endpoints.
type Handler struct {
	authService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{authService: service}
}

// Register attaches the credential endpoints at the router root.
//
// # Endpoints
//   - POST /users   : Sign-up with an identity token.
//   - POST /auth    : Sign-in with an identity token.
//   - POST /session : Re-validate a session with a refresh token.
func (handler *Handler) Register(router chi.Router) {
	router.Post("/users", handler.signUp)
	router.Post("/auth", handler.signIn)
	router.Post("/session", handler.resume)
}

// # Response Payloads

type tokenResponse struct {
	Token string `json:"token"`
}

type signInResponse struct {
	User  any           `json:"user"`
	Token tokenResponse `json:"token"`
}

/*
POST /users.

Description: Verifies the identity token for the body's id, stores the profile
and returns a refresh token.

Request:
  - Header: Authorization (identity token, raw or "Bearer <token>")
  - Body: {id, ...profile attributes}

Response:
  - 200: {token}
  - 400: ErrValidation: missing id or non-scalar attribute
  - 401: ErrUnauthorized: token rejected
*/
func (handler *Handler) signUp(writer http.ResponseWriter, request *http.Request) {
	body, err := requestutil.DecodeObject(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	userID := userIDField(body, validator)
	attributes := requestutil.ScalarFields(body, validator, constants.FieldID)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	token, err := handler.authService.SignUp(request.Context(), requestutil.BearerToken(request), userID, attributes)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, tokenResponse{Token: token})
}

/*
POST /auth.

Request:
  - Header: Authorization (identity token)
  - Body: {id}

Response:
  - 200: {user: {...attributes}, token: {token}}
  - 401: ErrUnauthorized: token rejected
  - 404: ErrNotFound: user never signed up
*/
func (handler *Handler) signIn(writer http.ResponseWriter, request *http.Request) {
	userID, err := decodeUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.authService.SignIn(request.Context(), requestutil.BearerToken(request), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, signInResponse{
		User:  result.User,
		Token: tokenResponse{Token: result.Token},
	})
}

/*
POST /session.

Request:
  - Header: Authorization (refresh token)
  - Body: {id}

Response:
  - 200: {...attributes}
  - 401: ErrUnauthorized: token rejected
  - 404: ErrNotFound: user no longer registered
*/
func (handler *Handler) resume(writer http.ResponseWriter, request *http.Request) {
	userID, err := decodeUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.authService.Resume(request.Context(), requestutil.BearerToken(request), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

// # Helpers

func decodeUserID(request *http.Request) (string, error) {
	body, err := requestutil.DecodeObject(request)
	if err != nil {
		return "", err
	}

	validator := &validate.Validator{}
	userID := userIDField(body, validator)
	return userID, validator.Err()
}

// userIDField reads the mandatory "id" field of a credential request body.
func userIDField(body map[string]any, validator *validate.Validator) string {
	userID, _ := body[constants.FieldID].(string)
	validator.Required(constants.FieldID, userID).
		MaxLen(constants.FieldID, userID, 255)
	return userID
}
