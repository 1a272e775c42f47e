package auth

import (
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/auth-service/internal/domain"
)

// UnverifiableLifetime is returned by RemainingLifetime for tokens that cannot be
// parsed or authenticated at all. Expired but authentic tokens report 0.
const UnverifiableLifetime int64 = -1

// TokenService issues, refreshes and inspects access/refresh token pairs.
type TokenService struct {
	codec   *Codec
	signing *SigningContext
	clock   Clock
	logger  *zap.Logger
}

// NewTokenService wires a service around the codec. The clock must be the same one the
// codec verifies against.
func NewTokenService(signing *SigningContext, clock Clock, logger *zap.Logger) *TokenService {
	if clock == nil {
		clock = SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TokenService{
		codec:   NewCodec(signing, clock, logger),
		signing: signing,
		clock:   clock,
		logger:  logger,
	}
}

// Codec exposes the underlying codec.
func (s *TokenService) Codec() *Codec {
	return s.codec
}

// IssuePair creates an access and a refresh token for the same subject.
func (s *TokenService) IssuePair(subject string) (domain.TokenPair, error) {
	now := s.clock.Now().UTC()

	access, err := s.codec.Sign(subject, UseAccess, now.Add(s.signing.AccessTTL()))
	if err != nil {
		return domain.TokenPair{}, err
	}
	refresh, err := s.codec.Sign(subject, UseRefresh, now.Add(s.signing.RefreshTTL()))
	if err != nil {
		return domain.TokenPair{}, err
	}

	s.logger.Debug("issued token pair", zap.String("subject", subject))
	return domain.TokenPair{
		AccessToken:           access,
		RefreshToken:          refresh,
		TokenType:             domain.TokenTypeBearer,
		AccessTokenExpiresIn:  int64(s.signing.AccessTTL() / time.Second),
		RefreshTokenExpiresIn: int64(s.signing.RefreshTTL() / time.Second),
	}, nil
}

// Refresh mints a new access token for the subject of a valid refresh token and
// returns that subject. Access tokens are rejected so a session cannot outlive its
// refresh token. The refresh token itself is returned unchanged; it is neither
// consumed nor rotated.
func (s *TokenService) Refresh(refreshToken string) (domain.TokenPair, string, error) {
	verification := s.codec.Verify(refreshToken)
	if verification.Valid() && verification.Use != UseRefresh {
		verification = Verification{Reason: ReasonWrongUse}
	}
	if !verification.Valid() {
		s.logger.Info("refresh rejected", zap.String("reason", string(verification.Reason)))
		return domain.TokenPair{}, "", ErrInvalidToken
	}

	access, err := s.codec.Sign(verification.Subject, UseAccess, s.clock.Now().UTC().Add(s.signing.AccessTTL()))
	if err != nil {
		return domain.TokenPair{}, "", err
	}

	s.logger.Info("refreshed access token", zap.String("subject", verification.Subject))
	return domain.TokenPair{
		AccessToken:           access,
		RefreshToken:          refreshToken,
		TokenType:             domain.TokenTypeBearer,
		AccessTokenExpiresIn:  s.RemainingLifetime(access),
		RefreshTokenExpiresIn: s.RemainingLifetime(refreshToken),
	}, verification.Subject, nil
}

// RemainingLifetime returns the whole seconds until the token expires, 0 once it has
// expired, or UnverifiableLifetime when the token is not authentic.
func (s *TokenService) RemainingLifetime(token string) int64 {
	expiresAt, ok := s.codec.ExpirationOf(token)
	if !ok {
		return UnverifiableLifetime
	}
	remaining := expiresAt.Sub(s.clock.Now().UTC())
	if remaining <= 0 {
		return 0
	}
	return int64(remaining / time.Second)
}

// Validate returns the subject of a valid token of either use.
func (s *TokenService) Validate(token string) (string, bool) {
	verification := s.codec.Verify(token)
	if !verification.Valid() {
		return "", false
	}
	return verification.Subject, true
}
