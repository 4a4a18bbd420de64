// Copyright (c) 2026 Geodrop. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// RefreshTokenConfig describes the service-held key and claims of refresh tokens.
//
// Exactly one key source is used: an RSA key pair (RS256) when PrivateKeyPath
// is set, otherwise the shared Secret (HS256).
type RefreshTokenConfig struct {
	Issuer         string
	Audience       string
	KeyID          string
	TTL            time.Duration
	Secret         string
	PrivateKeyPath string
	PublicKeyPath  string
}

// RefreshTokenService issues and verifies the service's own session tokens.
type RefreshTokenService struct {
	method       jwt.SigningMethod
	signingKey   interface{}
	verifyingKey interface{}
	keyID        string
	issuer       string
	audience     string
	ttl          time.Duration
	parser       *jwt.Parser
	now          func() time.Time
}

// NewRefreshTokenService creates a RefreshTokenService.
// RSA keys, when configured, are read from the provided filesystem paths.
func NewRefreshTokenService(cfg RefreshTokenConfig, opts ...Option) (*RefreshTokenService, error) {
	switch {
	case cfg.Issuer == "":
		return nil, errors.New("sec: refresh token issuer is required")
	case cfg.Audience == "":
		return nil, errors.New("sec: refresh token audience is required")
	case cfg.KeyID == "":
		return nil, errors.New("sec: refresh token key id is required")
	case cfg.TTL <= 0:
		return nil, errors.New("sec: refresh token ttl must be positive")
	}

	o := buildOptions(opts)
	service := &RefreshTokenService{
		keyID:    cfg.KeyID,
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
		ttl:      cfg.TTL,
		now:      o.now,
	}

	switch {
	case cfg.PrivateKeyPath != "":
		if err := service.loadKeyPair(cfg.PrivateKeyPath, cfg.PublicKeyPath); err != nil {
			return nil, err
		}
	case cfg.Secret != "":
		service.method = jwt.SigningMethodHS256
		service.signingKey = []byte(cfg.Secret)
		service.verifyingKey = []byte(cfg.Secret)
	default:
		return nil, errors.New("sec: refresh token secret or key pair is required")
	}

	service.parser = newParser(service.method.Alg(), cfg.Issuer, cfg.Audience, o.now)
	return service, nil
}

// loadKeyPair reads a PEM encoded RSA key pair for RS256 signing.
func (service *RefreshTokenService) loadKeyPair(privateKeyPath, publicKeyPath string) error {
	privateKeyData, err := os.ReadFile(privateKeyPath)
	if err != nil {
		return fmt.Errorf("sec: failed to read private key from %s: %w", privateKeyPath, err)
	}

	privateKey, err := jwt.ParseRSAPrivateKeyFromPEM(privateKeyData)
	if err != nil {
		return fmt.Errorf("sec: failed to parse private key: %w", err)
	}

	publicKeyData, err := os.ReadFile(publicKeyPath)
	if err != nil {
		return fmt.Errorf("sec: failed to read public key from %s: %w", publicKeyPath, err)
	}

	publicKey, err := jwt.ParseRSAPublicKeyFromPEM(publicKeyData)
	if err != nil {
		return fmt.Errorf("sec: failed to parse public key: %w", err)
	}

	service.method = jwt.SigningMethodRS256
	service.signingKey = privateKey
	service.verifyingKey = publicKey
	return nil
}

// Issue creates a signed refresh token for a user, valid for the configured window.
func (service *RefreshTokenService) Issue(userID string) (string, error) {
	currentTime := service.now()
	claims := jwt.RegisteredClaims{
		Issuer:    service.issuer,
		Subject:   userID,
		Audience:  jwt.ClaimStrings{service.audience},
		IssuedAt:  jwt.NewNumericDate(currentTime),
		ExpiresAt: jwt.NewNumericDate(currentTime.Add(service.ttl)),
	}

	token := jwt.NewWithClaims(service.method, claims)
	token.Header["kid"] = service.keyID

	signedToken, err := token.SignedString(service.signingKey)
	if err != nil {
		return "", fmt.Errorf("sec: failed to sign refresh token: %w", err)
	}

	return signedToken, nil
}

// Verify checks a refresh token and binds it to the user id the caller claims.
// The ordering is the same as [IdentityVerifier.Verify]: standard claims first,
// subject second.
func (service *RefreshTokenService) Verify(_ context.Context, token, claimedSubject string) (*jwt.RegisteredClaims, error) {
	return verifyToken(service.parser, service.now, token, service.keyFunc, claimedSubject)
}

// keyFunc only hands out the verifying key for tokens carrying our key id.
func (service *RefreshTokenService) keyFunc(token *jwt.Token) (interface{}, error) {
	if kid, _ := token.Header["kid"].(string); kid != service.keyID {
		return nil, fmt.Errorf("unexpected key id %q", kid)
	}
	return service.verifyingKey, nil
}
