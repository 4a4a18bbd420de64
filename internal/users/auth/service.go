// Copyright (c) 2026 Geodrop. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package auth implements the credential flows of the service: sign-up, sign-in
and session re-validation.

Every flow starts at the gate: the presented token is verified and bound to
the user id from the request body before the registry is touched.

Architecture:

  - Gate: identity tokens for sign-up/sign-in, refresh tokens for sessions.
  - Registry: the account package, reached only after the gate passed.
  - Issuance: a fresh refresh token on every successful sign-up/sign-in.

Any gate failure is reported to the caller as one uniform Unauthorized error.
The precise reason is logged and counted, never returned.
*/
package auth

import (
	"context"
	"log/slog"

	"github.com/golang-jwt/jwt/v5"

	"github.com/taibuivan/geodrop/internal/platform/apperr"
	"github.com/taibuivan/geodrop/internal/platform/ctxutil"
	"github.com/taibuivan/geodrop/internal/platform/metrics"
	"github.com/taibuivan/geodrop/internal/platform/sec"
	"github.com/taibuivan/geodrop/internal/users/account"
)

// errCredentialsInvalid builds the single client-facing outcome of a failed gate.
func errCredentialsInvalid(cause error) error {
	appError := apperr.Unauthorized("Could not validate credentials")
	appError.Cause = cause
	return appError
}

// Token kinds, as labelled in logs and metrics.
const (
	kindIdentity = "identity"
	kindRefresh  = "refresh"
)

// # Contracts

// TokenVerifier verifies a token and binds it to a claimed subject.
// Both [sec.IdentityVerifier] and [sec.RefreshTokenService] satisfy it.
type TokenVerifier interface {
	Verify(ctx context.Context, token, claimedSubject string) (*jwt.RegisteredClaims, error)
}

// TokenIssuer mints refresh tokens.
type TokenIssuer interface {
	Issue(userID string) (string, error)
}

// Registry is the slice of the user registry the flows need.
type Registry interface {
	Create(ctx context.Context, id string, attributes map[string]string) (*account.User, error)
	Exists(ctx context.Context, id string) (bool, error)
	Get(ctx context.Context, id string) (*account.User, error)
}

// Service orchestrates the credential flows.
type Service struct {
	identity TokenVerifier
	refresh  TokenVerifier
	issuer   TokenIssuer
	registry Registry
}

// NewService constructs a new [Service].
func NewService(identity TokenVerifier, refresh TokenVerifier, issuer TokenIssuer, registry Registry) *Service {
	return &Service{
		identity: identity,
		refresh:  refresh,
		issuer:   issuer,
		registry: registry,
	}
}

// SignInResult is returned by a successful sign-in.
type SignInResult struct {
	User  *account.User
	Token string
}

/*
SignUp registers the user named by a verified identity token and returns a
refresh token for it.

Description: Repeated sign-ups merge the new profile into the existing record.

Parameters:
  - context: context.Context
  - identityToken: string
  - userID: string (the id stated in the request body)
  - attributes: map[string]string

Returns:
  - string: Refresh token
  - error: Unauthorized or storage failures
*/
func (service *Service) SignUp(context context.Context, identityToken, userID string, attributes map[string]string) (string, error) {
	if err := service.gate(context, service.identity, kindIdentity, identityToken, userID); err != nil {
		return "", err
	}

	if _, err := service.registry.Create(context, userID, attributes); err != nil {
		return "", err
	}

	return service.issue(userID)
}

/*
SignIn starts a new session for a registered user.

Description: The token is verified before the registry is consulted, so an
unauthenticated caller cannot probe which ids are registered.

Parameters:
  - context: context.Context
  - identityToken: string
  - userID: string

Returns:
  - *SignInResult: Stored user and a fresh refresh token
  - error: Unauthorized, NotFound or storage failures
*/
func (service *Service) SignIn(context context.Context, identityToken, userID string) (*SignInResult, error) {
	if err := service.gate(context, service.identity, kindIdentity, identityToken, userID); err != nil {
		return nil, err
	}

	user, err := service.registeredUser(context, userID)
	if err != nil {
		return nil, err
	}

	token, err := service.issue(userID)
	if err != nil {
		return nil, err
	}

	return &SignInResult{User: user, Token: token}, nil
}

/*
Resume re-validates a session from a refresh token and returns the stored user.

Parameters:
  - context: context.Context
  - refreshToken: string
  - userID: string

Returns:
  - *account.User: Stored user
  - error: Unauthorized, NotFound or storage failures
*/
func (service *Service) Resume(context context.Context, refreshToken, userID string) (*account.User, error) {
	if err := service.gate(context, service.refresh, kindRefresh, refreshToken, userID); err != nil {
		return nil, err
	}

	return service.registeredUser(context, userID)
}

// registeredUser loads a user that must already exist.
func (service *Service) registeredUser(context context.Context, userID string) (*account.User, error) {
	exists, err := service.registry.Exists(context, userID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperr.NotFound("User")
	}

	return service.registry.Get(context, userID)
}

func (service *Service) issue(userID string) (string, error) {
	token, err := service.issuer.Issue(userID)
	if err != nil {
		return "", apperr.Internal(err)
	}
	return token, nil
}

// gate verifies a token for userID and collapses every failure into one
// Unauthorized error. Panics inside the verifier resolve the same way.
func (service *Service) gate(context context.Context, verifier TokenVerifier, kind, token, userID string) (err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = service.reject(context, kind, userID, sec.ErrInvalidSignature)
		}
	}()

	if token == "" {
		return service.reject(context, kind, userID, sec.ErrMalformedToken)
	}

	if _, verifyErr := verifier.Verify(context, token, userID); verifyErr != nil {
		return service.reject(context, kind, userID, verifyErr)
	}

	return nil
}

func (service *Service) reject(context context.Context, kind, userID string, cause error) error {
	reason := sec.Reason(cause)
	metrics.CredentialRejections.WithLabelValues(kind, reason).Inc()

	ctxutil.GetLogger(context).WarnContext(context, kind+"_token_rejected",
		slog.String("reason", reason),
		slog.String("claimed_user_id", userID),
		slog.String("error", cause.Error()),
	)

	return errCredentialsInvalid(cause)
}
