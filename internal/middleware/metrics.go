package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/shehrozeikram/SGCEducation-sub002/pkg/metrics"
)

// Metrics returns middleware that records request durations on rec.
func Metrics(rec *metrics.Recorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rec == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		rec.ObserveHTTP(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}
