package auth

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/ticketflex/internal/domain"
	"github.com/spec-kit/ticketflex/internal/repository"
	"github.com/spec-kit/ticketflex/pkg/util/errorutil"
)

// LoginPath is where unauthenticated callers are sent.
const LoginPath = "/auth/login"

const sessionKey = "auth_session"

// SessionGuard admits requests only while a well-formed session is stored.
type SessionGuard struct {
	sessions repository.SessionRepository
	logger   *zap.Logger
}

// NewSessionGuard constructs the guard.
func NewSessionGuard(sessions repository.SessionRepository, logger *zap.Logger) *SessionGuard {
	return &SessionGuard{sessions: sessions, logger: logger}
}

// Handle loads the session or rejects the request with a redirect hint. A
// stored entry that does not parse is removed before rejecting.
func (g *SessionGuard) Handle(c *fiber.Ctx) error {
	session, err := g.sessions.Get(c.UserContext())
	switch {
	case err == nil:
		c.Locals(sessionKey, session)
		return c.Next()
	case errors.Is(err, repository.ErrNotFound):
		return loginRequired()
	case errors.Is(err, repository.ErrCorruptEntry):
		g.logger.Warn("removing corrupt session entry", zap.Error(err))
		if delErr := g.sessions.Delete(c.UserContext()); delErr != nil {
			return errorutil.NewInternalError(delErr)
		}
		return loginRequired()
	default:
		return errorutil.NewInternalError(err)
	}
}

// SessionFromContext retrieves the session stored by Handle.
func SessionFromContext(c *fiber.Ctx) (*domain.Session, bool) {
	val := c.Locals(sessionKey)
	if val == nil {
		return nil, false
	}
	session, ok := val.(*domain.Session)
	return session, ok
}

func loginRequired() error {
	return errorutil.NewDomainError(errorutil.CodeUnauthorized, "login required", fiber.StatusUnauthorized, map[string]any{
		"redirect": LoginPath,
	})
}
