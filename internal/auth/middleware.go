package auth

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/auth-service/internal/domain"
	apperrors "github.com/spec-kit/auth-service/pkg/util/errorutil"
)

const identityKey = "auth_identity"

type identityContextKey struct{}

// Middleware attaches the caller's identity to the request when one can be established.
// It never rejects a request; RequireAuthenticated and RequireAuthority do that.
type Middleware struct {
	authenticator *Authenticator
}

// NewMiddleware constructs middleware.
func NewMiddleware(authenticator *Authenticator) *Middleware {
	return &Middleware{authenticator: authenticator}
}

// Handle authenticates the request and continues the chain.
func (m *Middleware) Handle(c *fiber.Ctx) error {
	identity, err := m.authenticator.Authenticate(c.UserContext(), c.Get(fiber.HeaderAuthorization))
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	if identity != nil {
		c.Locals(identityKey, identity)
		c.SetUserContext(WithIdentity(c.UserContext(), identity))
	}
	return c.Next()
}

// WithIdentity returns a copy of ctx carrying identity.
func WithIdentity(ctx context.Context, identity *domain.Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, identity)
}

// IdentityFromContext retrieves the identity stored by WithIdentity.
func IdentityFromContext(ctx context.Context) (*domain.Identity, bool) {
	identity, ok := ctx.Value(identityContextKey{}).(*domain.Identity)
	return identity, ok && identity != nil
}

// IdentityFromFiber retrieves the identity attached by Middleware.
func IdentityFromFiber(c *fiber.Ctx) (*domain.Identity, bool) {
	val := c.Locals(identityKey)
	if val == nil {
		return nil, false
	}
	identity, ok := val.(*domain.Identity)
	return identity, ok
}
