package api

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	requestIDHeader = "X-Request-ID"
	loggerKey       = "logger"
)

// RequestID tags every request with an id, reusing the caller's when present,
// and stores a request-scoped log entry on the context.
func RequestID(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
			c.Request.Header.Set(requestIDHeader, requestID)
		}
		c.Header(requestIDHeader, requestID)
		c.Set(loggerKey, logger.WithField("request_id", requestID))
		c.Next()
	}
}

// RequestLogger writes one structured line per completed request.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := entryFrom(c)
		fields := logrus.Fields{
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status":      c.Writer.Status(),
			"duration_ms": time.Since(start).Milliseconds(),
		}
		if c.Writer.Status() >= 500 {
			entry.WithFields(fields).Error("Request failed")
			return
		}
		entry.WithFields(fields).Info("Request completed")
	}
}

// CORS allows any origin, matching the original development setup.
func CORS() gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOriginFunc:  func(string) bool { return true },
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", requestIDHeader},
		ExposeHeaders:    []string{requestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}

func entryFrom(c *gin.Context) *logrus.Entry {
	if v, ok := c.Get(loggerKey); ok {
		if entry, ok := v.(*logrus.Entry); ok {
			return entry
		}
	}
	return logrus.NewEntry(logrus.StandardLogger())
}
