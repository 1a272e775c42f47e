package auth

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/auth-service/internal/domain"
)

func newTestTokenService(t *testing.T) (*TokenService, *testClock) {
	t.Helper()
	clock := newTestClock()
	return NewTokenService(testSigningContext(t), clock, nil), clock
}

func TestTokenService_IssuePair(t *testing.T) {
	svc, _ := newTestTokenService(t)

	pair, err := svc.IssuePair("alice@example.com")
	require.NoError(t, err)

	assert.Equal(t, domain.TokenTypeBearer, pair.TokenType)
	assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)
	assert.Equal(t, int64(15*60), pair.AccessTokenExpiresIn)
	assert.Equal(t, int64(7*86400), pair.RefreshTokenExpiresIn)

	accessSubject, ok := svc.Validate(pair.AccessToken)
	require.True(t, ok)
	refreshSubject, ok := svc.Validate(pair.RefreshToken)
	require.True(t, ok)
	assert.Equal(t, "alice@example.com", accessSubject)
	assert.Equal(t, accessSubject, refreshSubject)

	assert.Equal(t, pair.AccessTokenExpiresIn, svc.RemainingLifetime(pair.AccessToken))
	assert.Equal(t, pair.RefreshTokenExpiresIn, svc.RemainingLifetime(pair.RefreshToken))
}

func TestTokenService_AccessExpiresBeforeRefresh(t *testing.T) {
	svc, clock := newTestTokenService(t)

	pair, err := svc.IssuePair("alice@example.com")
	require.NoError(t, err)

	clock.Advance(16 * time.Minute)

	_, ok := svc.Validate(pair.AccessToken)
	assert.False(t, ok)

	subject, ok := svc.Validate(pair.RefreshToken)
	require.True(t, ok)
	assert.Equal(t, "alice@example.com", subject)
}

func TestTokenService_Refresh(t *testing.T) {
	svc, clock := newTestTokenService(t)

	pair, err := svc.IssuePair("alice@example.com")
	require.NoError(t, err)

	clock.Advance(16 * time.Minute)

	refreshed, subject, err := svc.Refresh(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", subject)

	assert.Equal(t, pair.RefreshToken, refreshed.RefreshToken)
	assert.NotEqual(t, pair.AccessToken, refreshed.AccessToken)
	assert.Equal(t, domain.TokenTypeBearer, refreshed.TokenType)
	assert.Equal(t, int64(15*60), refreshed.AccessTokenExpiresIn)
	assert.Equal(t, int64(7*86400-16*60), refreshed.RefreshTokenExpiresIn)

	accessSubject, ok := svc.Validate(refreshed.AccessToken)
	require.True(t, ok)
	assert.Equal(t, "alice@example.com", accessSubject)
}

func TestTokenService_RefreshRejectsAccessTokens(t *testing.T) {
	svc, clock := newTestTokenService(t)

	pair, err := svc.IssuePair("alice@example.com")
	require.NoError(t, err)

	_, _, err = svc.Refresh(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	refreshed, _, err := svc.Refresh(pair.RefreshToken)
	require.NoError(t, err)
	_, _, err = svc.Refresh(refreshed.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	// Chaining stops once the refresh token expires, however often it was used.
	for elapsed := time.Duration(0); elapsed < 7*24*time.Hour; elapsed += 12 * time.Hour {
		clock.Advance(12 * time.Hour)
		_, _, err = svc.Refresh(pair.RefreshToken)
	}
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenService_RefreshRejectsInvalidTokens(t *testing.T) {
	svc, clock := newTestTokenService(t)

	pair, err := svc.IssuePair("alice@example.com")
	require.NoError(t, err)

	_, _, err = svc.Refresh("tampered." + pair.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, _, err = svc.Refresh("")
	assert.ErrorIs(t, err, ErrInvalidToken)

	clock.Advance(7*24*time.Hour + time.Second)
	refreshed, subject, err := svc.Refresh(pair.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.Empty(t, subject)
	assert.Equal(t, domain.TokenPair{}, refreshed)
}

func TestTokenService_RemainingLifetime(t *testing.T) {
	svc, clock := newTestTokenService(t)

	pair, err := svc.IssuePair("alice@example.com")
	require.NoError(t, err)

	clock.Advance(5*time.Minute + 500*time.Millisecond)
	assert.Equal(t, int64(9*60+59), svc.RemainingLifetime(pair.AccessToken))

	clock.Advance(10 * time.Minute)
	assert.Equal(t, int64(0), svc.RemainingLifetime(pair.AccessToken))

	clock.Advance(time.Hour)
	assert.Equal(t, int64(0), svc.RemainingLifetime(pair.AccessToken), "expired tokens never report negative time")

	assert.Equal(t, UnverifiableLifetime, svc.RemainingLifetime("garbage"))
	assert.Equal(t, UnverifiableLifetime, svc.RemainingLifetime(""))
}

func TestTokenService_ConcurrentUse(t *testing.T) {
	svc, _ := newTestTokenService(t)

	var wg sync.WaitGroup
	errs := make(chan error, 32)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			pair, err := svc.IssuePair("alice@example.com")
			if err != nil {
				errs <- err
				return
			}
			if _, ok := svc.Validate(pair.AccessToken); !ok {
				errs <- ErrInvalidToken
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Fatalf("concurrent issue/validate failed: %v", err)
	}
}
