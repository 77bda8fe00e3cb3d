package middleware

import (
	"github.com/labstack/echo/v4"

	"gogotalk/internal/domain/entity"
	"gogotalk/internal/usecase"
	"gogotalk/pkg/errors"
	"gogotalk/pkg/response"
)

const identityKey = "identity"

type SessionMiddleware struct {
	session *usecase.SessionHolder
}

func NewSessionMiddleware(session *usecase.SessionHolder) *SessionMiddleware {
	return &SessionMiddleware{
		session: session,
	}
}

// RequireSession rejects the request unless somebody is signed in and
// stores their identity on the context.
func (m *SessionMiddleware) RequireSession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		identity := m.session.Current()
		if identity == nil {
			return response.Error(c, errors.Unauthorized("Sign in first", nil))
		}

		c.Set(identityKey, identity)
		return next(c)
	}
}

// Identity returns the identity stored by RequireSession.
func Identity(c echo.Context) *entity.Identity {
	identity, _ := c.Get(identityKey).(*entity.Identity)
	return identity
}
