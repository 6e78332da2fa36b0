package middleware

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/iyhunko/magical-emporium/internal/config"
)

// AdminRealm is announced in the WWW-Authenticate challenge of admin routes.
const AdminRealm = "Magical Emporium Admin"

type Middleware struct {
	config *config.Config
}

// New initializes the middleware with the given configuration.
// We don't need ctx here because it always has Gin context.
func New(config *config.Config) *Middleware {
	return &Middleware{
		config: config,
	}
}

// AdminAuth guards admin routes with HTTP Basic authentication. Any username
// is accepted; the password must equal the configured admin password.
func (m *Middleware) AdminAuth() gin.HandlerFunc {
	expected := []byte(m.config.AdminPassword)
	return func(c *gin.Context) {
		_, password, ok := c.Request.BasicAuth()
		if !ok || len(expected) == 0 || subtle.ConstantTimeCompare([]byte(password), expected) != 1 {
			slog.Warn("Admin authentication failed",
				slog.String("path", c.Request.URL.Path),
				slog.String("client_ip", c.ClientIP()),
			)
			c.Header("WWW-Authenticate", `Basic realm="`+AdminRealm+`"`)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Incorrect password",
			})
			return
		}
		c.Next()
	}
}

// Logger writes one structured log line per request.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		attrs := []any{
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("duration", time.Since(start)),
			slog.String("client_ip", c.ClientIP()),
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			slog.Error("HTTP request", attrs...)
			return
		}
		slog.Info("HTTP request", attrs...)
	}
}

// Recovery is a middleware that recovers from panics and returns a 500 Internal Server Error
// instead of crashing the server.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				slog.Error("Panic recovered",
					slog.Any("error", err),
					slog.String("path", c.Request.URL.Path),
					slog.String("method", c.Request.Method),
				)
				c.JSON(http.StatusInternalServerError, gin.H{
					"error": "Internal Server Error",
				})
				c.Abort()
			}
		}()
		c.Next()
	}
}
