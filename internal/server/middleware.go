package server

import (
	"time"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// HeaderRequestID carries the id of a request, in both directions.
const HeaderRequestID = "X-Request-Id"

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		c.Set(HeaderRequestID, id)
		c.Header(HeaderRequestID, id)
		c.Next()
	}
}

func logger(l log.Interface) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		ctxLog := l.WithFields(log.Fields{
			"id":       c.GetString(HeaderRequestID),
			"method":   c.Request.Method,
			"path":     c.FullPath(),
			"status":   c.Writer.Status(),
			"duration": time.Since(start),
		})
		if len(c.Errors) > 0 {
			ctxLog = ctxLog.WithError(c.Errors.Last())
		}
		if c.Writer.Status() >= 500 {
			ctxLog.Error("request")
			return
		}
		ctxLog.Debug("request")
	}
}
