package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"suiteship/internal/auth"
	"suiteship/internal/models"
	"suiteship/internal/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SessionCookie carries the opaque session token; a Bearer token is
// accepted as an alternative for non-browser clients.
const SessionCookie = "suiteship_session"

const ctxUserKey = "current_user"

// requireAuth resolves the request's session to a user or aborts with 401.
func (h *Handler) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := tokenFromRequest(c)

		user, err := h.auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, auth.ErrUnauthenticated) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"error": "Unauthorized",
				})
				return
			}
			h.logger.Error("Session lookup failed", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
			return
		}

		c.Set(ctxUserKey, user)
		c.Next()
	}
}

// authorize gates a route on the role policy. Runs after requireAuth.
func (h *Handler) authorize(action, resource string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if !auth.Allows(user.Role, action, resource) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "Forbidden",
			})
			return
		}
		c.Next()
	}
}

// currentUser returns the authenticated user set by requireAuth.
func currentUser(c *gin.Context) *models.User {
	return c.MustGet(ctxUserKey).(*models.User)
}

// tokenFromRequest reads the session token from the cookie, falling back to
// an Authorization: Bearer header.
func tokenFromRequest(c *gin.Context) string {
	if token, err := c.Cookie(SessionCookie); err == nil && token != "" {
		return token
	}

	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}

func setSessionCookie(c *gin.Context, token string, ttl time.Duration) {
	c.SetCookie(SessionCookie, token, int(ttl.Seconds()), "/", "", false, true)
}

func clearSessionCookie(c *gin.Context) {
	c.SetCookie(SessionCookie, "", -1, "/", "", false, true)
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
