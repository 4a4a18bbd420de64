// Copyright (c) 2026 Geodrop. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/geodrop/internal/platform/apperr"
	"github.com/taibuivan/geodrop/internal/platform/sec"
	"github.com/taibuivan/geodrop/internal/users/account"
)

// fakeVerifier accepts one token for one subject.
type fakeVerifier struct {
	token   string
	subject string
	panics  bool
}

func (f *fakeVerifier) Verify(_ context.Context, token, claimedSubject string) (*jwt.RegisteredClaims, error) {
	if f.panics {
		panic("decoder exploded")
	}
	if token != f.token {
		return nil, sec.ErrInvalidSignature
	}
	if claimedSubject != f.subject {
		return nil, sec.ErrSubjectMismatch
	}
	return &jwt.RegisteredClaims{Subject: claimedSubject}, nil
}

type fakeIssuer struct{}

func (fakeIssuer) Issue(userID string) (string, error) { return "refresh-" + userID, nil }

// fakeRegistry is an in-memory registry that records writes.
type fakeRegistry struct {
	users  map[string]map[string]string
	writes int
	err    error
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{users: map[string]map[string]string{}}
}

func (r *fakeRegistry) Create(_ context.Context, id string, attributes map[string]string) (*account.User, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.writes++
	r.users[id] = attributes
	return &account.User{ID: id, Attributes: attributes}, nil
}

func (r *fakeRegistry) Exists(_ context.Context, id string) (bool, error) {
	if r.err != nil {
		return false, r.err
	}
	_, ok := r.users[id]
	return ok, nil
}

func (r *fakeRegistry) Get(_ context.Context, id string) (*account.User, error) {
	attributes, ok := r.users[id]
	if !ok {
		return nil, apperr.NotFound("User")
	}
	return &account.User{ID: id, Attributes: attributes}, nil
}

func assertUnauthorized(t *testing.T, err error) {
	t.Helper()
	appError := apperr.As(err)
	require.NotNil(t, appError, "expected an AppError, got %v", err)
	assert.Equal(t, http.StatusUnauthorized, appError.HTTPStatus)
	assert.Equal(t, "Could not validate credentials", appError.Message)
}

func newTestService(registry *fakeRegistry) *Service {
	return NewService(
		&fakeVerifier{token: "idp-u1", subject: "u1"},
		&fakeVerifier{token: "refresh-u1", subject: "u1"},
		fakeIssuer{},
		registry,
	)
}

/*
TestService_SignUp verifies the gate runs before any registry write.
*/
func TestService_SignUp(t *testing.T) {
	registry := newFakeRegistry()
	service := newTestService(registry)
	ctx := context.Background()

	_, err := service.SignUp(ctx, "forged", "u1", map[string]string{"name": "Ann"})
	assertUnauthorized(t, err)
	assert.Zero(t, registry.writes)

	_, err = service.SignUp(ctx, "idp-u1", "u2", map[string]string{"name": "Eve"})
	assertUnauthorized(t, err)
	assert.Zero(t, registry.writes)

	_, err = service.SignUp(ctx, "", "u1", nil)
	assertUnauthorized(t, err)

	token, err := service.SignUp(ctx, "idp-u1", "u1", map[string]string{"name": "Ann"})
	require.NoError(t, err)
	assert.Equal(t, "refresh-u1", token)
	assert.Equal(t, 1, registry.writes)
}

/*
TestService_SignIn covers the gate, the registry miss and the success path.
*/
func TestService_SignIn(t *testing.T) {
	registry := newFakeRegistry()
	service := newTestService(registry)
	ctx := context.Background()

	// Unknown user with a bad token is indistinguishable from a known one.
	_, err := service.SignIn(ctx, "forged", "u1")
	assertUnauthorized(t, err)

	_, err = service.SignIn(ctx, "idp-u1", "u1")
	assert.True(t, apperr.IsNotFound(err))

	registry.users["u1"] = map[string]string{"name": "Ann"}

	result, err := service.SignIn(ctx, "idp-u1", "u1")
	require.NoError(t, err)
	assert.Equal(t, "u1", result.User.ID)
	assert.Equal(t, "refresh-u1", result.Token)
}

/*
TestService_Resume covers session re-validation.
*/
func TestService_Resume(t *testing.T) {
	registry := newFakeRegistry()
	registry.users["u1"] = map[string]string{"name": "Ann"}
	service := newTestService(registry)
	ctx := context.Background()

	user, err := service.Resume(ctx, "refresh-u1", "u1")
	require.NoError(t, err)
	assert.Equal(t, "Ann", user.Attributes["name"])

	_, err = service.Resume(ctx, "refresh-u1", "u2")
	assertUnauthorized(t, err)

	// An identity token is not a refresh token.
	_, err = service.Resume(ctx, "idp-u1", "u1")
	assertUnauthorized(t, err)
}

/*
TestService_GatePanics verifies that a panicking verifier still yields Unauthorized.
*/
func TestService_GatePanics(t *testing.T) {
	service := NewService(&fakeVerifier{panics: true}, &fakeVerifier{}, fakeIssuer{}, newFakeRegistry())

	_, err := service.SignIn(context.Background(), "anything", "u1")
	assertUnauthorized(t, err)
}

/*
TestService_StoreFailure verifies registry errors pass through untouched.
*/
func TestService_StoreFailure(t *testing.T) {
	registry := newFakeRegistry()
	registry.err = apperr.ServiceUnavailable("Storage is temporarily unavailable", errors.New("down"))
	service := newTestService(registry)

	_, err := service.SignUp(context.Background(), "idp-u1", "u1", nil)
	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, http.StatusServiceUnavailable, appError.HTTPStatus)
}
