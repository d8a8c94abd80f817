package middleware

import (
	"strconv"
	"time"

	"github.com/ErlanBelekov/course-signup/internal/metrics"
	"github.com/gin-gonic/gin"
)

// Metrics records latency, count and response size per route template, so
// /user/1 and /user/2 share a series. Requests that match no route are
// folded into "unmatched".
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		labels := []string{c.Request.Method, route, strconv.Itoa(c.Writer.Status())}

		metrics.HTTPRequestDuration.WithLabelValues(labels...).Observe(time.Since(start).Seconds())
		metrics.HTTPRequestsTotal.WithLabelValues(labels...).Inc()
		if size := c.Writer.Size(); size > 0 {
			metrics.HTTPResponseBytes.WithLabelValues(c.Request.Method, route).Observe(float64(size))
		}
	}
}
