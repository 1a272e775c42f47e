package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/auth-service/internal/auth"
	"github.com/spec-kit/auth-service/internal/config"
	"github.com/spec-kit/auth-service/internal/domain"
	"github.com/spec-kit/auth-service/internal/events"
	"github.com/spec-kit/auth-service/internal/repository"
)

// AuthService coordinates registration, login and token refresh.
type AuthService struct {
	users       repository.UserRepository
	lookup      auth.UserLookup
	tokens      *auth.TokenService
	authorities auth.AuthorityMapper
	dispatcher  events.Dispatcher
	clock       auth.Clock
	logger      *zap.Logger
	bcryptCost  int
	defaultPlan domain.Plan
}

// AuthDependencies encapsulates collaborators of the auth service.
type AuthDependencies struct {
	UserRepo    repository.UserRepository
	UserLookup  auth.UserLookup
	Tokens      *auth.TokenService
	Authorities auth.AuthorityMapper
	Dispatcher  events.Dispatcher
	Clock       auth.Clock
	Logger      *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, deps AuthDependencies) *AuthService {
	lookup := deps.UserLookup
	if lookup == nil {
		lookup = deps.UserRepo
	}
	clock := deps.Clock
	if clock == nil {
		clock = auth.SystemClock{}
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	authorities := deps.Authorities
	if authorities == nil {
		authorities = auth.DefaultAuthorityTable()
	}
	plan := domain.Plan(strings.ToUpper(strings.TrimSpace(cfg.DefaultPlan)))
	if plan == "" {
		plan = domain.PlanFree
	}

	return &AuthService{
		users:       deps.UserRepo,
		lookup:      lookup,
		tokens:      deps.Tokens,
		authorities: authorities,
		dispatcher:  deps.Dispatcher,
		clock:       clock,
		logger:      logger,
		bcryptCost:  cfg.BcryptCost,
		defaultPlan: plan,
	}
}

// Register creates a user on the default plan and issues its first token pair.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*domain.User, domain.TokenPair, error) {
	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, domain.TokenPair{}, err
	}

	user := &domain.User{
		Name:         strings.TrimSpace(name),
		Email:        normalizeEmail(email),
		PasswordHash: hash,
		Plan:         s.defaultPlan,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, domain.TokenPair{}, err
	}
	s.publish(ctx, events.EventUserRegistered, user.Email, nil)

	pair, err := s.issue(ctx, user.Email)
	if err != nil {
		return nil, domain.TokenPair{}, err
	}
	return user, pair, nil
}

// Login checks credentials and issues a token pair. Unknown emails and wrong passwords
// are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, domain.TokenPair, error) {
	email = normalizeEmail(email)

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.publish(ctx, events.EventLoginFailed, email, events.LoginFailedPayload{Reason: "unknown_user"})
			return nil, domain.TokenPair{}, auth.ErrInvalidCredentials
		}
		return nil, domain.TokenPair{}, err
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		s.publish(ctx, events.EventLoginFailed, email, events.LoginFailedPayload{Reason: "bad_password"})
		return nil, domain.TokenPair{}, auth.ErrInvalidCredentials
	}

	pair, err := s.issue(ctx, user.Email)
	if err != nil {
		return nil, domain.TokenPair{}, err
	}
	return user, pair, nil
}

// Refresh exchanges a refresh token for a new access token.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (domain.TokenPair, error) {
	pair, subject, err := s.tokens.Refresh(refreshToken)
	if err != nil {
		return domain.TokenPair{}, err
	}
	s.publish(ctx, events.EventTokensRefreshed, subject, events.TokensIssuedPayload{
		AccessTokenExpiresIn:  pair.AccessTokenExpiresIn,
		RefreshTokenExpiresIn: pair.RefreshTokenExpiresIn,
	})
	return pair, nil
}

// RemainingLifetime reports the seconds left on token, see auth.TokenService.
func (s *AuthService) RemainingLifetime(token string) int64 {
	return s.tokens.RemainingLifetime(token)
}

// Profile loads the user behind an authenticated identity.
func (s *AuthService) Profile(ctx context.Context, identity *domain.Identity) (*domain.User, []string, error) {
	user, err := s.lookup.GetByEmail(ctx, identity.Subject)
	if err != nil {
		return nil, nil, err
	}
	return user, s.authorities.Authorities(user.Plan), nil
}

func (s *AuthService) issue(ctx context.Context, subject string) (domain.TokenPair, error) {
	pair, err := s.tokens.IssuePair(subject)
	if err != nil {
		return domain.TokenPair{}, err
	}
	s.publish(ctx, events.EventTokensIssued, subject, events.TokensIssuedPayload{
		AccessTokenExpiresIn:  pair.AccessTokenExpiresIn,
		RefreshTokenExpiresIn: pair.RefreshTokenExpiresIn,
	})
	return pair, nil
}

func (s *AuthService) publish(ctx context.Context, eventType events.EventType, subject string, payload interface{}) {
	if s.dispatcher == nil {
		return
	}
	event := events.NewEvent(eventType, subject, s.clock.Now(), payload)
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed", zap.String("event_type", string(eventType)), zap.Error(err))
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
