package router

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/remiges-tech/custsvc/wscutils"
)

// Context keys set by TimeoutMiddleware and read by LogRequest.
//
// CtxKeyTimedOut means our deadline fired (context.DeadlineExceeded);
// CtxKeyClientDisconnected means the request context was canceled first,
// usually because the client went away.
const (
	CtxKeyTimedOut           = "_request_timed_out"
	CtxKeyClientDisconnected = "_client_disconnected"
	CtxKeyPanicRecovered     = "_panic_recovered"
	CtxKeyPanicValue         = "_panic_value"
)

// headerWriter serializes writes from the handler goroutine and remembers
// whether a status line went out.
type headerWriter struct {
	gin.ResponseWriter
	mu          sync.Mutex
	wroteHeader bool
}

func (w *headerWriter) WriteHeader(code int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.wroteHeader {
		return
	}
	w.wroteHeader = true
	w.ResponseWriter.WriteHeader(code)
}

func (w *headerWriter) Write(b []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.wroteHeader = true
	return w.ResponseWriter.Write(b)
}

func (w *headerWriter) WriteString(s string) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.wroteHeader = true
	return w.ResponseWriter.WriteString(s)
}

func (w *headerWriter) wrote() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.wroteHeader
}

// TimeoutMiddleware puts a deadline on the request context and runs the rest
// of the chain in its own goroutine.
//
// The middleware always waits for the handler to return. If the deadline
// fired and the handler wrote nothing, the client gets 504 with a
// request_timeout error; a handler that still managed to write keeps its
// response. A panic before the deadline is re-raised on the calling goroutine
// so gin.Recovery sees it; a panic after the deadline becomes a 500 here.
//
// gin.Recovery must be registered before this middleware.
func TimeoutMiddleware(timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)

		hw := &headerWriter{ResponseWriter: c.Writer}
		c.Writer = hw

		done := make(chan any, 1)
		go func() {
			var p any
			defer func() {
				if r := recover(); r != nil {
					p = r
					c.Set(CtxKeyPanicRecovered, true)
					c.Set(CtxKeyPanicValue, fmt.Sprintf("%v", r))
				}
				done <- p
			}()
			c.Next()
		}()

		select {
		case p := <-done:
			if p != nil {
				panic(p)
			}
			return
		case <-ctx.Done():
		}

		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			c.Set(CtxKeyTimedOut, true)
		} else {
			c.Set(CtxKeyClientDisconnected, true)
		}

		p := <-done
		if hw.wrote() {
			return
		}
		if p != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError,
				wscutils.NewErrorResponse(wscutils.ErrTypeInternal, "internal server error"))
			return
		}
		c.AbortWithStatusJSON(http.StatusGatewayTimeout,
			wscutils.NewErrorResponse(wscutils.ErrTypeTimeout, "request timed out"))
	}
}
