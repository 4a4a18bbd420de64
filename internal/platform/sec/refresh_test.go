// Copyright (c) 2026 Geodrop. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec_test

import (
	"context"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/geodrop/internal/platform/sec"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func refreshConfig() sec.RefreshTokenConfig {
	return sec.RefreshTokenConfig{
		Issuer:   "geodrop-api",
		Audience: testAudience,
		KeyID:    "KEY123",
		TTL:      4 * 7 * 24 * time.Hour,
		Secret:   testSecret,
	}
}

/*
TestRefreshTokenService_RoundTrip verifies that an issued token verifies for its own user only.
*/
func TestRefreshTokenService_RoundTrip(t *testing.T) {
	service, err := sec.NewRefreshTokenService(refreshConfig())
	require.NoError(t, err)

	token, err := service.Issue("u1")
	require.NoError(t, err)

	claims, err := service.Verify(context.Background(), token, "u1")
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.Subject)
	assert.Equal(t, "geodrop-api", claims.Issuer)

	_, err = service.Verify(context.Background(), token, "u2")
	assert.ErrorIs(t, err, sec.ErrSubjectMismatch)
}

/*
TestRefreshTokenService_Expiry verifies the four-week validity window.
*/
func TestRefreshTokenService_Expiry(t *testing.T) {
	issuedAt := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	now := issuedAt
	clock := func() time.Time { return now }

	service, err := sec.NewRefreshTokenService(refreshConfig(), sec.WithClock(clock))
	require.NoError(t, err)

	token, err := service.Issue("u1")
	require.NoError(t, err)

	now = issuedAt.Add(4*7*24*time.Hour - time.Minute)
	_, err = service.Verify(context.Background(), token, "u1")
	require.NoError(t, err)

	now = issuedAt.Add(4*7*24*time.Hour + time.Minute)
	_, err = service.Verify(context.Background(), token, "u1")
	assert.ErrorIs(t, err, sec.ErrExpired)
}

/*
TestRefreshTokenService_Rejects covers tokens not minted by this service.
*/
func TestRefreshTokenService_Rejects(t *testing.T) {
	service, err := sec.NewRefreshTokenService(refreshConfig())
	require.NoError(t, err)

	other := refreshConfig()
	other.Secret = "ffffffffffffffffffffffffffffffff"
	otherService, err := sec.NewRefreshTokenService(other)
	require.NoError(t, err)

	foreignToken, err := otherService.Issue("u1")
	require.NoError(t, err)

	rotated := refreshConfig()
	rotated.KeyID = "KEY999"
	rotatedService, err := sec.NewRefreshTokenService(rotated)
	require.NoError(t, err)

	rotatedToken, err := rotatedService.Issue("u1")
	require.NoError(t, err)

	// An identity-provider style token must never pass as a refresh token.
	providerKey := generateKey(t)
	identityToken := signRS256(t, providerKey, "KEY123", identityClaims("u1", time.Now()))

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{"foreign_secret", foreignToken, sec.ErrInvalidSignature},
		{"unknown_key_id", rotatedToken, sec.ErrInvalidSignature},
		{"identity_token", identityToken, sec.ErrInvalidSignature},
		{"malformed", "a.b", sec.ErrMalformedToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.Verify(context.Background(), tt.token, "u1")
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

/*
TestRefreshTokenService_KeyPair verifies RS256 signing from PEM files and the kid header.
*/
func TestRefreshTokenService_KeyPair(t *testing.T) {
	key := generateKey(t)
	dir := t.TempDir()

	privatePath := filepath.Join(dir, "refresh.pem")
	publicPath := filepath.Join(dir, "refresh.pub.pem")

	privateDER := x509.MarshalPKCS1PrivateKey(key)
	require.NoError(t, os.WriteFile(privatePath, pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: privateDER}), 0o600))

	publicDER, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(publicPath, pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: publicDER}), 0o600))

	cfg := refreshConfig()
	cfg.Secret = ""
	cfg.PrivateKeyPath = privatePath
	cfg.PublicKeyPath = publicPath

	service, err := sec.NewRefreshTokenService(cfg)
	require.NoError(t, err)

	token, err := service.Issue("u1")
	require.NoError(t, err)

	parsed, _, err := jwt.NewParser().ParseUnverified(token, &jwt.RegisteredClaims{})
	require.NoError(t, err)
	assert.Equal(t, "RS256", parsed.Method.Alg())
	assert.Equal(t, "KEY123", parsed.Header["kid"])

	_, err = service.Verify(context.Background(), token, "u1")
	require.NoError(t, err)
}

/*
TestNewRefreshTokenService_Invalid rejects incomplete configurations.
*/
func TestNewRefreshTokenService_Invalid(t *testing.T) {
	noKey := refreshConfig()
	noKey.KeyID = ""

	noSecret := refreshConfig()
	noSecret.Secret = ""

	missingFile := refreshConfig()
	missingFile.PrivateKeyPath = filepath.Join(t.TempDir(), "missing.pem")

	for name, cfg := range map[string]sec.RefreshTokenConfig{
		"no_key_id":    noKey,
		"no_secret":    noSecret,
		"missing_file": missingFile,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := sec.NewRefreshTokenService(cfg)
			assert.Error(t, err)
		})
	}
}
