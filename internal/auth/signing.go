package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/spec-kit/auth-service/internal/config"
)

// TimeUnit is the unit a token lifetime is configured in.
type TimeUnit string

const (
	UnitMinutes TimeUnit = "minutes"
	UnitDays    TimeUnit = "days"
)

// ParseTimeUnit accepts only the supported lifetime units.
func ParseTimeUnit(raw string) (TimeUnit, error) {
	switch unit := TimeUnit(strings.ToLower(strings.TrimSpace(raw))); unit {
	case UnitMinutes, UnitDays:
		return unit, nil
	default:
		return "", &ConfigError{Field: "unit", Reason: "unrecognized time unit " + raw}
	}
}

// Lifetime is a token lifetime expressed as an amount of a unit.
type Lifetime struct {
	Amount int
	Unit   TimeUnit
}

// Duration converts the lifetime into a time.Duration. Days are fixed 24h spans since
// all token arithmetic happens in UTC.
func (l Lifetime) Duration() (time.Duration, error) {
	if l.Amount <= 0 {
		return 0, &ConfigError{Field: "amount", Reason: "lifetime must be positive"}
	}
	switch l.Unit {
	case UnitMinutes:
		return time.Duration(l.Amount) * time.Minute, nil
	case UnitDays:
		return time.Duration(l.Amount) * 24 * time.Hour, nil
	default:
		return 0, &ConfigError{Field: "unit", Reason: "unrecognized time unit " + string(l.Unit)}
	}
}

// SigningContext holds the process-wide signing parameters. It is built once at
// startup and never mutated afterwards.
type SigningContext struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewSigningContext validates the auth configuration and builds the signing context.
func NewSigningContext(cfg config.AuthConfig) (*SigningContext, error) {
	if strings.TrimSpace(cfg.JWTSecret) == "" {
		return nil, &ConfigError{Field: "AUTH_JWT_SECRET", Reason: "secret must not be empty"}
	}
	if strings.TrimSpace(cfg.Issuer) == "" {
		return nil, &ConfigError{Field: "AUTH_JWT_ISSUER", Reason: "issuer must not be empty"}
	}

	accessTTL, err := lifetimeFromConfig("AUTH_ACCESS_TOKEN_TTL", cfg.AccessTokenTTL, cfg.AccessTokenTTLUnit)
	if err != nil {
		return nil, err
	}
	refreshTTL, err := lifetimeFromConfig("AUTH_REFRESH_TOKEN_TTL", cfg.RefreshTokenTTL, cfg.RefreshTokenTTLUnit)
	if err != nil {
		return nil, err
	}

	return &SigningContext{
		secret:     []byte(cfg.JWTSecret),
		issuer:     cfg.Issuer,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}, nil
}

func lifetimeFromConfig(field string, amount int, rawUnit string) (time.Duration, error) {
	unit, err := ParseTimeUnit(rawUnit)
	if err != nil {
		return 0, renameField(err, field+"_UNIT")
	}
	d, err := Lifetime{Amount: amount, Unit: unit}.Duration()
	if err != nil {
		return 0, renameField(err, field)
	}
	return d, nil
}

func renameField(err error, field string) error {
	var cfgErr *ConfigError
	if errors.As(err, &cfgErr) {
		return &ConfigError{Field: field, Reason: cfgErr.Reason}
	}
	return err
}

// Issuer returns the expected iss claim.
func (s *SigningContext) Issuer() string { return s.issuer }

// AccessTTL returns the access-token lifetime.
func (s *SigningContext) AccessTTL() time.Duration { return s.accessTTL }

// RefreshTTL returns the refresh-token lifetime.
func (s *SigningContext) RefreshTTL() time.Duration { return s.refreshTTL }
