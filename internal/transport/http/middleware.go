package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"quizverse/internal/domain"
	"quizverse/internal/identity"
)

const contextKeyIdentity = "identity"

// resolveIdentity attaches the caller's identity. Requests without a token
// continue as anonymous; a bad token is rejected.
func resolveIdentity(verifier *identity.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := verifier.FromHeader(c.GetHeader("Authorization"))
		if err != nil {
			fail(c, http.StatusUnauthorized, ErrCodeTokenInvalid, "invalid token", nil)
			return
		}
		c.Set(contextKeyIdentity, id)
		c.Next()
	}
}

func requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !identityOf(c).Admin {
			fail(c, http.StatusForbidden, ErrCodeAdminOnly, "admin access only", nil)
			return
		}
		c.Next()
	}
}

func identityOf(c *gin.Context) domain.Identity {
	val, ok := c.Get(contextKeyIdentity)
	if !ok {
		return domain.Anonymous
	}
	id, ok := val.(domain.Identity)
	if !ok {
		return domain.Anonymous
	}
	return id
}

// requestLogger logs one line per request through zerolog.
func requestLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		event := log.Info()
		if c.Writer.Status() >= http.StatusInternalServerError {
			event = log.Error()
			if last := c.Errors.Last(); last != nil {
				event = event.Err(last.Err)
			}
		}
		event.
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}
