package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"cityMover/internal/auth"
	"cityMover/models"
)

const langKey = "lang"

func (s *server) loggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("remote_addr", c.ClientIP()),
		)
	}
}

func (s *server) recoveryMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				s.log.Error("panic recovered", zap.Any("error", err), zap.String("path", c.Request.URL.Path))
				s.fail(c, http.StatusInternalServerError, "internal_error", map[string]any{"Detail": "panic"})
			}
		}()
		c.Next()
	}
}

// languageMiddleware picks the response language: ?lang=, then Accept-Language,
// then the configured default.
func (s *server) languageMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(langKey, s.Translator.Negotiate(c.Query("lang"), c.GetHeader("Accept-Language")))
		c.Next()
	}
}

// authMiddleware verifies the bearer token and puts the principal on the request context.
func (s *server) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tok, err := auth.BearerToken(c.GetHeader("Authorization"))
		if err != nil {
			s.fail(c, http.StatusUnauthorized, "unauthorized", nil)
			return
		}
		p, err := s.Auth.Verify(c.Request.Context(), tok)
		if err != nil {
			s.log.Debug("token rejected", zap.Error(err))
			s.fail(c, http.StatusUnauthorized, "unauthorized", nil)
			return
		}
		c.Request = c.Request.WithContext(auth.WithPrincipal(c.Request.Context(), p))
		c.Next()
	}
}

// ownerMiddleware admits owners whose account still holds the owner role.
func (s *server) ownerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := auth.RequireStoredRole(c.Request.Context(), s.Users, models.RoleOwner); err != nil {
			s.handleError(c, err)
			return
		}
		c.Next()
	}
}
