// Package router assembles the gin engine for the customer service and
// carries its middleware: request logging, request metrics and the request
// deadline.
package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/remiges-tech/logharbour/logharbour"
)

// RequestInfo is what LogRequest captures about one request/response cycle.
type RequestInfo struct {
	Method             string        `json:"method"`
	Path               string        `json:"path"`
	Route              string        `json:"route,omitempty"` // matched route pattern, e.g. /api/customers/:id
	ClientIP           string        `json:"client_ip"`
	StatusCode         int           `json:"status_code"`
	StartTime          time.Time     `json:"start_time"` // UTC
	Duration           time.Duration `json:"duration"`
	ResponseSize       int64         `json:"response_size"`
	Query              string        `json:"query,omitempty"`
	UserAgent          string        `json:"user_agent,omitempty"`
	TraceID            string        `json:"trace_id,omitempty"`
	TimedOut           bool          `json:"timed_out,omitempty"`
	ClientDisconnected bool          `json:"client_disconnected,omitempty"`
	PanicRecovered     bool          `json:"panic_recovered,omitempty"`
	PanicValue         string        `json:"panic_value,omitempty"`
}

// RequestLogger receives one RequestInfo per request.
type RequestLogger interface {
	Log(info RequestInfo)
}

// LogRequest returns a middleware that logs a single entry once the rest of
// the chain has finished, including the timeout, disconnect and panic flags
// left by TimeoutMiddleware.
func LogRequest(logger RequestLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()
		traceID := c.GetHeader("X-Trace-ID")

		c.Next()

		info := RequestInfo{
			Method:       c.Request.Method,
			Path:         c.Request.URL.Path,
			Route:        c.FullPath(),
			ClientIP:     c.ClientIP(),
			StatusCode:   c.Writer.Status(),
			StartTime:    startTime.UTC(),
			Duration:     time.Since(startTime),
			ResponseSize: int64(c.Writer.Size()),
			Query:        c.Request.URL.RawQuery,
			UserAgent:    c.Request.UserAgent(),
			TraceID:      traceID,
		}
		info.TimedOut = c.GetBool(CtxKeyTimedOut)
		info.ClientDisconnected = c.GetBool(CtxKeyClientDisconnected)
		info.PanicRecovered = c.GetBool(CtxKeyPanicRecovered)
		info.PanicValue = c.GetString(CtxKeyPanicValue)

		logger.Log(info)
	}
}

// LogHarbourAdapter writes RequestInfo as a LogHarbour activity entry.
type LogHarbourAdapter struct {
	logger *logharbour.Logger
}

func NewLogHarbourAdapter(logger *logharbour.Logger) *LogHarbourAdapter {
	return &LogHarbourAdapter{logger: logger}
}

func (a *LogHarbourAdapter) Log(info RequestInfo) {
	logger := a.logger.WithModule("http").
		WithOp("request").
		WithRemoteIP(info.ClientIP).
		WithClass(info.Method).
		WithInstanceId(info.Path).
		WithStatus(getStatus(info.StatusCode))

	activityData := map[string]any{
		"method":        info.Method,
		"path":          info.Path,
		"route":         info.Route,
		"status":        info.StatusCode,
		"start_time":    info.StartTime.Format(time.RFC3339),
		"duration_ms":   info.Duration.Milliseconds(),
		"response_size": info.ResponseSize,
		"query":         info.Query,
		"user_agent":    info.UserAgent,
	}
	if info.TraceID != "" {
		activityData["trace_id"] = info.TraceID
	}
	if info.TimedOut {
		activityData["timed_out"] = true
	}
	if info.ClientDisconnected {
		activityData["client_disconnected"] = true
	}
	if info.PanicRecovered {
		activityData["panic_recovered"] = true
		activityData["panic_value"] = info.PanicValue
	}

	logger.Info().LogActivity("HTTP request completed", activityData)
}

func getStatus(statusCode int) logharbour.Status {
	if statusCode >= 200 && statusCode < 400 {
		return logharbour.Success
	}
	return logharbour.Failure
}
