package server

import (
	"strconv"
	"strings"
	"time"

	"mutual-aid-go/internal/auth"
	"mutual-aid-go/internal/models"
	"mutual-aid-go/internal/monitoring"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	contextUserId = "userId"
	contextRole   = "role"
)

// RequestLogger logs each request with method, path, status and latency.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		zap.L().Info("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

// Metrics records request counts and response times per route.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		monitoring.HttpRequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		monitoring.ResponseTimeHistogram.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

// Auth validates the bearer token and stores the caller's identity in the
// request context.
func Auth(cfg models.AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(401, gin.H{"error": "authorization header required"})
			return
		}

		token := strings.TrimPrefix(header, "Bearer ")
		if token == header {
			c.AbortWithStatusJSON(401, gin.H{"error": "bearer token required"})
			return
		}

		claims, err := auth.ValidateToken(cfg, token)
		if err != nil {
			c.AbortWithStatusJSON(401, gin.H{"error": "invalid token"})
			return
		}

		c.Set(contextUserId, claims.UserId)
		c.Set(contextRole, claims.Role)
		c.Next()
	}
}

// AdminOnly rejects callers without the admin role. Must run after Auth.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(contextRole) != models.RoleAdmin {
			c.AbortWithStatusJSON(403, gin.H{"error": "admin access required"})
			return
		}
		c.Next()
	}
}
