package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/auth-service/internal/config"
)

var testEpoch = time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)

type testClock struct {
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: testEpoch}
}

func (c *testClock) Now() time.Time {
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		JWTSecret:           "s3cr3t",
		Issuer:              "ms-auth",
		AccessTokenTTL:      15,
		AccessTokenTTLUnit:  "minutes",
		RefreshTokenTTL:     7,
		RefreshTokenTTLUnit: "days",
	}
}

func testSigningContext(t *testing.T) *SigningContext {
	t.Helper()
	signing, err := NewSigningContext(testAuthConfig())
	require.NoError(t, err)
	return signing
}
