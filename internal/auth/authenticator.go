package auth

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/auth-service/internal/domain"
	"github.com/spec-kit/auth-service/internal/repository"
)

// Authentication outcomes reported to an OutcomeRecorder.
const (
	OutcomeAnonymous      = "anonymous"
	OutcomeInvalidToken   = "invalid_token"
	OutcomeUnknownSubject = "unknown_subject"
	OutcomeLookupError    = "lookup_error"
	OutcomeAuthenticated  = "authenticated"
)

// UserLookup resolves a token subject to a user. Implementations return
// repository.ErrUserNotFound when no user matches.
type UserLookup interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

// TokenValidator returns the subject of a valid token.
type TokenValidator interface {
	Validate(token string) (string, bool)
}

// OutcomeRecorder receives one outcome per authentication attempt.
type OutcomeRecorder interface {
	RecordAuthOutcome(outcome string)
}

// Authenticator turns an Authorization header into an identity.
type Authenticator struct {
	tokens      TokenValidator
	users       UserLookup
	authorities AuthorityMapper
	recorder    OutcomeRecorder
	logger      *zap.Logger
}

// NewAuthenticator constructs an authenticator. recorder may be nil.
func NewAuthenticator(tokens TokenValidator, users UserLookup, authorities AuthorityMapper, recorder OutcomeRecorder, logger *zap.Logger) *Authenticator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Authenticator{
		tokens:      tokens,
		users:       users,
		authorities: authorities,
		recorder:    recorder,
		logger:      logger,
	}
}

// Authenticate returns the identity carried by the header, or nil when the request is
// unauthenticated. Missing, malformed and invalid tokens are not errors; neither is a
// valid token whose subject no longer exists. Only lookup infrastructure failures are
// returned as errors.
func (a *Authenticator) Authenticate(ctx context.Context, authorizationHeader string) (*domain.Identity, error) {
	token, ok := BearerToken(authorizationHeader)
	if !ok {
		a.record(OutcomeAnonymous)
		return nil, nil
	}

	subject, ok := a.tokens.Validate(token)
	if !ok {
		a.record(OutcomeInvalidToken)
		return nil, nil
	}

	user, err := a.users.GetByEmail(ctx, subject)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			a.logger.Warn("token subject has no matching user", zap.String("subject", subject))
			a.record(OutcomeUnknownSubject)
			return nil, nil
		}
		a.record(OutcomeLookupError)
		return nil, err
	}

	a.record(OutcomeAuthenticated)
	return &domain.Identity{
		Subject:     subject,
		UserID:      user.ID,
		Name:        user.Name,
		Plan:        user.Plan,
		Authorities: a.authorities.Authorities(user.Plan),
	}, nil
}

func (a *Authenticator) record(outcome string) {
	if a.recorder != nil {
		a.recorder.RecordAuthOutcome(outcome)
	}
}

// BearerToken extracts the token from a "Bearer <token>" header value.
func BearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", false
	}
	return token, true
}
