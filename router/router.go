package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/remiges-tech/custsvc/metrics"
	"github.com/remiges-tech/custsvc/wscutils"
)

type Options struct {
	Logger  RequestLogger
	Metrics metrics.Metrics
	// RequestTimeout of zero disables the request deadline.
	RequestTimeout time.Duration
}

// New returns an engine with the middleware chain in the order
// LogRequest, recovery, RequestMetrics, TimeoutMiddleware. Unknown routes
// get a route_not_found error envelope.
func New(opts Options) *gin.Engine {
	r := gin.New()
	if opts.Logger != nil {
		r.Use(LogRequest(opts.Logger))
	}
	r.Use(gin.CustomRecovery(recovered))
	if opts.Metrics != nil {
		r.Use(RequestMetrics(opts.Metrics))
	}
	if opts.RequestTimeout > 0 {
		r.Use(TimeoutMiddleware(opts.RequestTimeout))
	}
	r.NoRoute(func(c *gin.Context) {
		wscutils.SendErrorResponse(c, http.StatusNotFound,
			wscutils.NewErrorResponse(wscutils.ErrTypeRouteNotFound, "no route for "+c.Request.Method+" "+c.Request.URL.Path))
	})
	return r
}

func recovered(c *gin.Context, _ any) {
	wscutils.SendErrorResponse(c, http.StatusInternalServerError,
		wscutils.NewErrorResponse(wscutils.ErrTypeInternal, "internal server error"))
}
