package auth

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidToken collapses every verification failure (malformed, bad signature,
	// issuer mismatch, expired) into one outcome.
	ErrInvalidToken = errors.New("invalid token")
	// ErrSigning is returned when a token cannot be signed.
	ErrSigning = errors.New("token signing failed")
	// ErrInvalidCredentials is returned when a password does not match its hash.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// ConfigError reports an unusable signing configuration. It is fatal at startup.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid auth configuration: %s: %s", e.Field, e.Reason)
}
