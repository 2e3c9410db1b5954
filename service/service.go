// Package service ties a gin engine to the logger, metrics and other
// dependencies that request handlers need, and registers handlers that
// receive the Service alongside the gin context.
//
// Example:
//
//	s := service.NewService(router).
//		WithLogger(logger).
//		WithMetrics(m).
//		WithDependency("customers.lister", lister)
//	api := s.CreateGroup("/api")
//	api.RegisterRoute(http.MethodGet, "/customers", handleListCustomers)
package service

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/remiges-tech/custsvc/metrics"
	"github.com/remiges-tech/logharbour/logharbour"
)

// Dependencies is a map to hold arbitrary dependencies.
type Dependencies map[string]any

// Service holds the components shared by all handlers of a web service.
// Values in Dependencies are untyped; handlers assert the type they expect.
type Service struct {
	Router       *gin.Engine
	Logger       *logharbour.Logger
	Metrics      metrics.Metrics
	Dependencies Dependencies
}

func NewService(r *gin.Engine) *Service {
	return &Service{Router: r}
}

func (s *Service) WithDependency(key string, value any) *Service {
	if s.Dependencies == nil {
		s.Dependencies = make(Dependencies)
	}
	s.Dependencies[key] = value
	return s
}

// Dependency returns the value stored under key and whether it was set.
func (s *Service) Dependency(key string) (any, bool) {
	v, ok := s.Dependencies[key]
	return v, ok
}

func (s *Service) WithLogger(l *logharbour.Logger) *Service {
	s.Logger = l
	return s
}

func (s *Service) WithMetrics(m metrics.Metrics) *Service {
	s.Metrics = m
	return s
}

// HandlerFunc handles a request with access to the Service.
type HandlerFunc func(*gin.Context, *Service)

// RegisterRoute registers handler directly on the service's engine.
func (s *Service) RegisterRoute(method, path string, handler HandlerFunc) error {
	return register(s.Router, method, path, s.wrap(handler))
}

func (s *Service) wrap(handler HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		handler(c, s)
	}
}

// RouteGroup is a group of routes sharing a path prefix and middleware.
type RouteGroup struct {
	Group   *gin.RouterGroup
	service *Service
}

// CreateGroup creates a new route group with the given path.
func (s *Service) CreateGroup(path string) *RouteGroup {
	return &RouteGroup{Group: s.Router.Group(path), service: s}
}

// RegisterRoute registers handler on the group.
func (g *RouteGroup) RegisterRoute(method, path string, handler HandlerFunc) error {
	return register(g.Group, method, path, g.service.wrap(handler))
}

// CreateSubGroup creates a new sub-group within the current group.
func (g *RouteGroup) CreateSubGroup(path string) *RouteGroup {
	return &RouteGroup{Group: g.Group.Group(path), service: g.service}
}

func register(r gin.IRoutes, method, path string, h gin.HandlerFunc) error {
	switch method {
	case http.MethodGet:
		r.GET(path, h)
	case http.MethodHead:
		r.HEAD(path, h)
	case http.MethodPost:
		r.POST(path, h)
	case http.MethodPut:
		r.PUT(path, h)
	case http.MethodPatch:
		r.PATCH(path, h)
	case http.MethodDelete:
		r.DELETE(path, h)
	default:
		return fmt.Errorf("unsupported method: %s", method)
	}
	return nil
}
