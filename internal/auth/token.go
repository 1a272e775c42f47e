package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Reason classifies why a token failed verification. Callers only ever see
// valid/invalid; the reason exists for diagnostics.
type Reason string

const (
	ReasonNone           Reason = ""
	ReasonEmpty          Reason = "empty"
	ReasonMalformed      Reason = "malformed"
	ReasonBadSignature   Reason = "bad_signature"
	ReasonIssuerMismatch Reason = "issuer_mismatch"
	ReasonExpired        Reason = "expired"
	ReasonMissingSubject Reason = "missing_subject"
	ReasonWrongUse       Reason = "wrong_use"
)

// TokenUse separates access tokens from refresh tokens. It travels in the token_use claim.
type TokenUse string

const (
	UseAccess  TokenUse = "access"
	UseRefresh TokenUse = "refresh"
)

type tokenClaims struct {
	Use TokenUse `json:"token_use,omitempty"`
	jwt.RegisteredClaims
}

// Verification is the outcome of verifying a token.
type Verification struct {
	Subject   string
	Use       TokenUse
	ExpiresAt time.Time
	Reason    Reason
}

// Valid reports whether the token passed every check.
func (v Verification) Valid() bool {
	return v.Reason == ReasonNone
}

// Codec signs and verifies HS256 compact tokens.
type Codec struct {
	signing *SigningContext
	clock   Clock
	logger  *zap.Logger
}

// NewCodec builds a codec bound to the signing context.
func NewCodec(signing *SigningContext, clock Clock, logger *zap.Logger) *Codec {
	if clock == nil {
		clock = SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Codec{signing: signing, clock: clock, logger: logger}
}

// Sign produces a token of the given use for subject expiring at expiresAt.
func (c *Codec) Sign(subject string, use TokenUse, expiresAt time.Time) (string, error) {
	if c.signing == nil || len(c.signing.secret) == 0 {
		return "", fmt.Errorf("%w: signing secret unavailable", ErrSigning)
	}

	claims := tokenClaims{
		Use: use,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    c.signing.issuer,
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(expiresAt.UTC()),
			IssuedAt:  jwt.NewNumericDate(c.clock.Now().UTC()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.signing.secret)
	if err != nil {
		c.logger.Error("token signing failed", zap.String("subject", subject), zap.Error(err))
		return "", fmt.Errorf("%w: %v", ErrSigning, err)
	}
	return signed, nil
}

// Verify checks signature, issuer and expiry and returns the subject on success.
func (c *Codec) Verify(tokenStr string) Verification {
	if strings.TrimSpace(tokenStr) == "" {
		return Verification{Reason: ReasonEmpty}
	}
	if c.signing == nil {
		return Verification{Reason: ReasonBadSignature}
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(c.signing.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.clock.Now),
	)

	claims := &tokenClaims{}
	if _, err := parser.ParseWithClaims(tokenStr, claims, c.keyFunc); err != nil {
		reason := classify(err)
		c.logger.Debug("token verification failed", zap.String("reason", string(reason)), zap.Error(err))
		return Verification{Reason: reason}
	}
	if claims.Subject == "" {
		c.logger.Debug("token verification failed", zap.String("reason", string(ReasonMissingSubject)))
		return Verification{Reason: ReasonMissingSubject}
	}

	return Verification{Subject: claims.Subject, Use: claims.Use, ExpiresAt: claims.ExpiresAt.Time.UTC()}
}

// ExpirationOf returns the exp claim of an authentic token. Signature and issuer are
// enforced; expiry is not, so callers can tell an expired token from a forged one.
func (c *Codec) ExpirationOf(tokenStr string) (time.Time, bool) {
	if strings.TrimSpace(tokenStr) == "" || c.signing == nil {
		return time.Time{}, false
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)

	claims := &jwt.RegisteredClaims{}
	if _, err := parser.ParseWithClaims(tokenStr, claims, c.keyFunc); err != nil {
		c.logger.Debug("token expiration lookup failed", zap.String("reason", string(classify(err))), zap.Error(err))
		return time.Time{}, false
	}
	if claims.Issuer != c.signing.issuer || claims.ExpiresAt == nil {
		c.logger.Debug("token expiration lookup failed", zap.String("reason", string(ReasonIssuerMismatch)))
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time.UTC(), true
}

func (c *Codec) keyFunc(token *jwt.Token) (interface{}, error) {
	if token.Method != jwt.SigningMethodHS256 {
		return nil, errors.New("unexpected signing method")
	}
	if c.signing == nil || len(c.signing.secret) == 0 {
		return nil, ErrSigning
	}
	return c.signing.secret, nil
}

func classify(err error) Reason {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ReasonMalformed
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return ReasonBadSignature
	case errors.Is(err, jwt.ErrTokenExpired):
		return ReasonExpired
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return ReasonIssuerMismatch
	default:
		return ReasonMalformed
	}
}
