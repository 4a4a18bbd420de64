// Copyright (c) 2026 Geodrop. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package sec provides the credential pipeline: verification of identity
// provider tokens, issuance and verification of the service's own refresh
// tokens, and the closed set of credential failures they report.
//
// # Architecture
//
// Both verifiers are single-shot "decode → validate standard claims → validate
// subject binding" pipelines. They share the pipeline code but never a key
// source or an issuer/audience pair.
package sec

import (
	"context"
	"crypto/rsa"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// KeyResolver resolves an identity provider signing key by key-id.
//
// Implementations return an error wrapping [ErrKeyNotFound] when the kid is
// unknown or the key set cannot be obtained.
type KeyResolver interface {
	Key(ctx context.Context, kid string) (*rsa.PublicKey, error)
}

// IdentityVerifier validates RS256 identity tokens issued by the identity provider.
type IdentityVerifier struct {
	keys   KeyResolver
	parser *jwt.Parser
	now    func() time.Time
}

// NewIdentityVerifier creates a verifier bound to the provider's issuer and
// the client application identifier (audience).
func NewIdentityVerifier(keys KeyResolver, issuer, audience string, opts ...Option) *IdentityVerifier {
	o := buildOptions(opts)
	return &IdentityVerifier{
		keys:   keys,
		parser: newParser(jwt.SigningMethodRS256.Alg(), issuer, audience, o.now),
		now:    o.now,
	}
}

/*
Verify checks an identity token and binds it to the user id the caller claims.

Steps:
 1. Read the kid from the unverified header.
 2. Resolve the provider public key for that kid.
 3. Verify signature, issuer, audience and expiry.
 4. Compare the verified subject with claimedSubject.

Returns:
  - *jwt.RegisteredClaims: The verified claims
  - error: One of the sec.Err* failures
*/
func (verifier *IdentityVerifier) Verify(ctx context.Context, token, claimedSubject string) (*jwt.RegisteredClaims, error) {

	// 1. The header is only trusted to pick a key.
	unverified, _, err := jwt.NewParser().ParseUnverified(token, &jwt.RegisteredClaims{})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedToken, err)
	}

	kid, _ := unverified.Header["kid"].(string)
	if kid == "" {
		return nil, fmt.Errorf("%w: token header carries no kid", ErrKeyNotFound)
	}

	// 2. Key resolution failures always fail closed.
	key, err := verifier.keys.Key(ctx, kid)
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrKeyNotFound, err)
	}

	// 3 + 4.
	return verifyToken(verifier.parser, verifier.now, token, func(*jwt.Token) (interface{}, error) {
		return key, nil
	}, claimedSubject)
}
