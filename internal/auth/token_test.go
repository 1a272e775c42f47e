package auth

import (
	"strings"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodec_SignVerifyRoundTrip(t *testing.T) {
	clock := newTestClock()
	codec := NewCodec(testSigningContext(t), clock, nil)

	token, err := codec.Sign("alice@example.com", UseAccess, clock.Now().Add(time.Minute))
	require.NoError(t, err)
	assert.Len(t, strings.Split(token, "."), 3)

	v := codec.Verify(token)
	require.True(t, v.Valid(), "reason: %s", v.Reason)
	assert.Equal(t, "alice@example.com", v.Subject)
	assert.Equal(t, UseAccess, v.Use)
	assert.Equal(t, clock.Now().Add(time.Minute), v.ExpiresAt)
}

func TestCodec_TokenCarriesRegisteredClaims(t *testing.T) {
	clock := newTestClock()
	codec := NewCodec(testSigningContext(t), clock, nil)

	token, err := codec.Sign("alice@example.com", UseRefresh, clock.Now().Add(time.Hour))
	require.NoError(t, err)

	claims := &tokenClaims{}
	_, _, err = jwt.NewParser().ParseUnverified(token, claims)
	require.NoError(t, err)
	assert.Equal(t, UseRefresh, claims.Use)
	assert.Equal(t, "ms-auth", claims.Issuer)
	assert.Equal(t, "alice@example.com", claims.Subject)
	assert.NotEmpty(t, claims.ID)
	assert.Equal(t, clock.Now().Add(time.Hour).Unix(), claims.ExpiresAt.Unix())
}

func TestCodec_VerifyExpiry(t *testing.T) {
	clock := newTestClock()
	codec := NewCodec(testSigningContext(t), clock, nil)

	token, err := codec.Sign("alice@example.com", UseAccess, clock.Now().Add(10*time.Second))
	require.NoError(t, err)

	clock.Advance(9 * time.Second)
	assert.True(t, codec.Verify(token).Valid())

	clock.Advance(time.Second)
	v := codec.Verify(token)
	assert.False(t, v.Valid(), "a token is invalid at its expiration instant")
	assert.Equal(t, ReasonExpired, v.Reason)

	clock.Advance(time.Hour)
	assert.Equal(t, ReasonExpired, codec.Verify(token).Reason)
}

func TestCodec_VerifyRejections(t *testing.T) {
	clock := newTestClock()
	signing := testSigningContext(t)
	codec := NewCodec(signing, clock, nil)
	expiresAt := clock.Now().Add(time.Hour)

	alice, err := codec.Sign("alice@example.com", UseAccess, expiresAt)
	require.NoError(t, err)
	mallory, err := codec.Sign("mallory@example.com", UseAccess, expiresAt)
	require.NoError(t, err)

	otherSecretCfg := testAuthConfig()
	otherSecretCfg.JWTSecret = "another-secret"
	otherSecret, err := NewSigningContext(otherSecretCfg)
	require.NoError(t, err)
	forged, err := NewCodec(otherSecret, clock, nil).Sign("alice@example.com", UseAccess, expiresAt)
	require.NoError(t, err)

	otherIssuer := &SigningContext{secret: signing.secret, issuer: "someone-else", accessTTL: time.Minute, refreshTTL: time.Hour}
	foreign, err := NewCodec(otherIssuer, clock, nil).Sign("alice@example.com", UseAccess, expiresAt)
	require.NoError(t, err)

	aliceParts := strings.Split(alice, ".")
	malloryParts := strings.Split(mallory, ".")
	spliced := strings.Join([]string{aliceParts[0], malloryParts[1], aliceParts[2]}, ".")

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Issuer:    "ms-auth",
		Subject:   "alice@example.com",
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noSubject, err := codec.Sign("", UseAccess, expiresAt)
	require.NoError(t, err)

	tests := []struct {
		name       string
		token      string
		wantReason Reason
	}{
		{name: "empty", token: "", wantReason: ReasonEmpty},
		{name: "garbage", token: "not-a-token", wantReason: ReasonMalformed},
		{name: "three garbage parts", token: "a.b.c", wantReason: ReasonMalformed},
		{name: "wrong secret", token: forged, wantReason: ReasonBadSignature},
		{name: "spliced payload", token: spliced, wantReason: ReasonBadSignature},
		{name: "wrong issuer", token: foreign, wantReason: ReasonIssuerMismatch},
		{name: "alg none", token: none},
		{name: "missing subject", token: noSubject, wantReason: ReasonMissingSubject},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := codec.Verify(tt.token)
			assert.False(t, v.Valid())
			assert.Empty(t, v.Subject)
			if tt.wantReason != ReasonNone {
				assert.Equal(t, tt.wantReason, v.Reason)
			}
		})
	}
}

func TestCodec_SignWithoutSecret(t *testing.T) {
	clock := newTestClock()
	codec := NewCodec(&SigningContext{issuer: "ms-auth"}, clock, nil)

	token, err := codec.Sign("alice@example.com", UseAccess, clock.Now().Add(time.Minute))
	assert.ErrorIs(t, err, ErrSigning)
	assert.Empty(t, token)

	_, err = NewCodec(nil, clock, nil).Sign("alice@example.com", UseAccess, clock.Now())
	assert.ErrorIs(t, err, ErrSigning)
}

func TestCodec_ExpirationOf(t *testing.T) {
	clock := newTestClock()
	codec := NewCodec(testSigningContext(t), clock, nil)
	expiresAt := clock.Now().Add(30 * time.Second)

	token, err := codec.Sign("alice@example.com", UseAccess, expiresAt)
	require.NoError(t, err)

	got, ok := codec.ExpirationOf(token)
	require.True(t, ok)
	assert.Equal(t, expiresAt, got)

	clock.Advance(time.Hour)
	got, ok = codec.ExpirationOf(token)
	require.True(t, ok, "expired tokens still report their expiration")
	assert.Equal(t, expiresAt, got)

	_, ok = codec.ExpirationOf("garbage")
	assert.False(t, ok)
	_, ok = codec.ExpirationOf("")
	assert.False(t, ok)
}
