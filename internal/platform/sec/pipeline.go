// Copyright (c) 2026 Geodrop. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Option customizes a verifier or token service.
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock overrides the time source used for issuance and expiry checks.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// newParser builds a strict parser: one algorithm, fixed issuer and audience, exp required.
func newParser(algorithm, issuer, audience string, now func() time.Time) *jwt.Parser {
	return jwt.NewParser(
		jwt.WithValidMethods([]string{algorithm}),
		jwt.WithIssuer(issuer),
		jwt.WithAudience(audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(now),
	)
}

/*
verifyToken runs the shared single-shot pipeline of both token kinds.

Steps:
 1. Verify signature, issuer, audience and expiry with the supplied key.
 2. Only then compare the verified subject with the caller-supplied one.

Any panic raised while decoding is reported as [ErrInvalidSignature].
*/
func verifyToken(parser *jwt.Parser, now func() time.Time, tokenString string, keyFunc jwt.Keyfunc, claimedSubject string) (verified *jwt.RegisteredClaims, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			verified = nil
			err = fmt.Errorf("%w: verification panicked: %v", ErrInvalidSignature, recovered)
		}
	}()

	claims := &jwt.RegisteredClaims{}
	if _, err := parser.ParseWithClaims(tokenString, claims, keyFunc); err != nil {
		return nil, classify(err, claims, now())
	}

	if claimedSubject == "" || claims.Subject != claimedSubject {
		return nil, ErrSubjectMismatch
	}

	return claims, nil
}
