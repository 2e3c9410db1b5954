package router

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/remiges-tech/custsvc/metrics"
)

// unmatchedRoute labels requests that matched no route, keeping raw paths out
// of the label set.
const unmatchedRoute = "unmatched"

// RequestMetrics counts requests and observes their latency by route
// pattern. m must already have the service metrics registered.
func RequestMetrics(m metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		method := c.Request.Method
		m.RecordWithLabels(metrics.HTTPRequestsTotal, 1, method, route, strconv.Itoa(c.Writer.Status()))
		m.RecordWithLabels(metrics.HTTPRequestDuration, time.Since(start).Seconds(), method, route)
	}
}
