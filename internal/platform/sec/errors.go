// Copyright (c) 2026 Geodrop. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// # Credential Failures
//
// Every verification outcome other than success is exactly one of these
// sentinels (possibly wrapping a lower-level cause). Callers branch with
// [errors.Is]; the HTTP layer collapses all of them into one 401.

var (
	// ErrMalformedToken means the token could not be decoded at all.
	ErrMalformedToken = errors.New("sec: malformed token")

	// ErrKeyNotFound means no signing key could be resolved for the token's kid,
	// including when the provider key set could not be fetched.
	ErrKeyNotFound = errors.New("sec: signing key not found")

	// ErrInvalidSignature means the signature (or signing method) did not verify.
	ErrInvalidSignature = errors.New("sec: invalid signature")

	// ErrExpired means the token is outside its validity window or carries no expiry.
	ErrExpired = errors.New("sec: token expired")

	// ErrIssuerMismatch means the iss claim is not the expected issuer.
	ErrIssuerMismatch = errors.New("sec: issuer mismatch")

	// ErrAudienceMismatch means the aud claim does not contain the expected audience.
	ErrAudienceMismatch = errors.New("sec: audience mismatch")

	// ErrSubjectMismatch means a verified token was presented for a different user.
	ErrSubjectMismatch = errors.New("sec: subject mismatch")
)

// Reason returns a short, stable label for a credential failure, for logs and metrics.
func Reason(err error) string {
	switch {
	case errors.Is(err, ErrMalformedToken):
		return "malformed"
	case errors.Is(err, ErrKeyNotFound):
		return "key_not_found"
	case errors.Is(err, ErrExpired):
		return "expired"
	case errors.Is(err, ErrIssuerMismatch):
		return "issuer_mismatch"
	case errors.Is(err, ErrAudienceMismatch):
		return "audience_mismatch"
	case errors.Is(err, ErrSubjectMismatch):
		return "subject_mismatch"
	default:
		return "invalid_signature"
	}
}

// classify maps a golang-jwt parse error onto the failure set.
//
// Expiry wins over every other reason, including a bad signature: the claims
// decoded before the signature check are only used to pick the label, never
// to accept a token.
func classify(err error, claims *jwt.RegisteredClaims, now time.Time) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired),
		errors.Is(err, jwt.ErrTokenNotValidYet),
		errors.Is(err, jwt.ErrTokenUsedBeforeIssued):
		return fmt.Errorf("%w: %w", ErrExpired, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid) && isPastExpiry(claims, now):
		return fmt.Errorf("%w: %w", ErrExpired, err)
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return fmt.Errorf("%w: %w", ErrIssuerMismatch, err)
	case errors.Is(err, jwt.ErrTokenInvalidAudience):
		return fmt.Errorf("%w: %w", ErrAudienceMismatch, err)
	case errors.Is(err, jwt.ErrTokenRequiredClaimMissing):
		return fmt.Errorf("%w: %w", missingClaim(claims), err)
	case errors.Is(err, jwt.ErrTokenMalformed):
		return fmt.Errorf("%w: %w", ErrMalformedToken, err)
	default:
		return fmt.Errorf("%w: %w", ErrInvalidSignature, err)
	}
}

func isPastExpiry(claims *jwt.RegisteredClaims, now time.Time) bool {
	return claims != nil && claims.ExpiresAt != nil && !now.Before(claims.ExpiresAt.Time)
}

// missingClaim names the failure for a token lacking a required claim.
func missingClaim(claims *jwt.RegisteredClaims) error {
	switch {
	case claims == nil:
		return ErrMalformedToken
	case claims.ExpiresAt == nil:
		return ErrExpired
	case len(claims.Audience) == 0:
		return ErrAudienceMismatch
	case claims.Issuer == "":
		return ErrIssuerMismatch
	default:
		return ErrInvalidSignature
	}
}
