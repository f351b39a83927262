package middleware

import (
	"errors"

	"github.com/authform/authform/internal/config"
	"github.com/authform/authform/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type ContextMiddlewareConfig struct {
	SessionCookieName string
}

// ContextMiddleware resolves the session cookie into a user context. Requests
// without a valid session carry no context at all.
type ContextMiddleware struct {
	config ContextMiddlewareConfig
	auth   *service.AuthService
}

func NewContextMiddleware(config ContextMiddlewareConfig, auth *service.AuthService) *ContextMiddleware {
	return &ContextMiddleware{
		config: config,
		auth:   auth,
	}
}

func (m *ContextMiddleware) Init() error {
	return nil
}

func (m *ContextMiddleware) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(m.config.SessionCookieName)

		if err != nil || token == "" {
			c.Next()
			return
		}

		session, err := m.auth.GetSession(c.Request.Context(), token)

		if err != nil {
			if !errors.Is(err, service.ErrSessionNotFound) {
				log.Error().Err(err).Msg("Failed to load session")
			}
			c.Next()
			return
		}

		c.Set("context", &config.UserContext{
			Username:   session.Username,
			Name:       session.Name,
			Email:      session.Email,
			Picture:    session.Picture,
			Provider:   session.Provider,
			IsLoggedIn: true,
			OAuth:      session.Provider != "local",
		})

		c.Next()
	}
}
