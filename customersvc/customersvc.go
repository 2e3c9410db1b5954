// Package customersvc exposes the customer read queries over HTTP.
package customersvc

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/remiges-tech/custsvc/customers"
	"github.com/remiges-tech/custsvc/metrics"
	"github.com/remiges-tech/custsvc/service"
	"github.com/remiges-tech/custsvc/validations"
	"github.com/remiges-tech/custsvc/wscutils"
	"github.com/remiges-tech/logharbour/logharbour"
)

//-----------------------------------------------------------------------------
// Constants
//-----------------------------------------------------------------------------

const (
	moduleName = "customersvc"

	// Dependency keys looked up on the service.
	DepLister = "customers.lister"
	DepPinger = "health.pinger"

	MaxNameLength = 120
	MaxPageSize   = 500
)

//-----------------------------------------------------------------------------
// Request Types
//-----------------------------------------------------------------------------

type ListCustomersRequest struct {
	Name   string `form:"name" validate:"omitempty,max=120,searchtext"`
	Limit  *int   `form:"limit" validate:"omitempty,min=1,max=500"`
	Offset *int   `form:"offset" validate:"omitempty,min=0"`
}

func (r ListCustomersRequest) filter() customers.Filter {
	f := customers.Filter{Name: r.Name}
	if r.Limit != nil {
		f.Limit = *r.Limit
	}
	if r.Offset != nil {
		f.Offset = *r.Offset
	}
	return f
}

type GetCustomerRequest struct {
	ID string `uri:"id" validate:"required,uuid"`
}

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

//-----------------------------------------------------------------------------
// Initialization
//-----------------------------------------------------------------------------

func init() {
	if err := wscutils.RegisterValidation("searchtext", validations.IsSearchText); err != nil {
		panic(err)
	}
}

// Register wires the customer routes onto s. lister is required; pinger may
// be nil, in which case /healthz always reports ok.
func Register(s *service.Service, lister *customers.Lister, pinger Pinger) error {
	s.WithDependency(DepLister, lister)
	if pinger != nil {
		s.WithDependency(DepPinger, pinger)
	}

	api := s.CreateGroup("/api")
	if err := api.RegisterRoute(http.MethodGet, "/customers", HandleListCustomers); err != nil {
		return err
	}
	if err := api.RegisterRoute(http.MethodGet, "/customers/:id", HandleGetCustomer); err != nil {
		return err
	}
	if err := api.RegisterRoute(http.MethodGet, "/cities", HandleListCities); err != nil {
		return err
	}
	return s.RegisterRoute(http.MethodGet, "/healthz", HandleHealth)
}

//-----------------------------------------------------------------------------
// Request Handlers
//-----------------------------------------------------------------------------

// HandleListCustomers answers GET /api/customers?name=&limit=&offset= with a
// JSON array of customers, [] when nothing matches.
func HandleListCustomers(c *gin.Context, s *service.Service) {
	lh := s.Logger.WithModule(moduleName).WithOp("ListCustomers")
	lister := s.Dependencies[DepLister].(*customers.Lister)

	// Step 1: bind and validate the query string
	var req ListCustomersRequest
	if err := wscutils.BindQuery(c, &req); err != nil {
		lh.Debug0().LogActivity("query binding failed", map[string]any{"error": err.Error()})
		return
	}
	if msgs := wscutils.WscValidate(req); len(msgs) > 0 {
		lh.Debug0().LogActivity("query validation failed", map[string]any{"messages": msgs})
		wscutils.SendErrorResponse(c, http.StatusBadRequest, wscutils.NewValidationErrorResponse(msgs))
		return
	}

	// Step 2: query
	views, err := lister.List(c.Request.Context(), req.filter())
	if err != nil {
		sendStoreError(c, s, lh, "list_customers", err)
		return
	}
	if s.Metrics != nil {
		s.Metrics.Record(metrics.CustomersReturned, float64(len(views)))
	}

	// Step 3: respond
	lh.Debug0().LogActivity("customers listed", map[string]any{"name": req.Name, "count": len(views)})
	wscutils.SendSuccessResponse(c, views)
}

// HandleGetCustomer answers GET /api/customers/:id.
func HandleGetCustomer(c *gin.Context, s *service.Service) {
	lh := s.Logger.WithModule(moduleName).WithOp("GetCustomer")
	lister := s.Dependencies[DepLister].(*customers.Lister)

	var req GetCustomerRequest
	if err := wscutils.BindURI(c, &req); err != nil {
		return
	}
	if msgs := wscutils.WscValidate(req); len(msgs) > 0 {
		wscutils.SendErrorResponse(c, http.StatusBadRequest, wscutils.NewValidationErrorResponse(msgs))
		return
	}
	id := uuid.MustParse(req.ID)

	view, err := lister.Get(c.Request.Context(), id)
	if errors.Is(err, customers.ErrNotFound) {
		wscutils.SendErrorResponse(c, http.StatusNotFound,
			wscutils.NewLabelledErrorResponse(wscutils.ErrTypeNotFound, "customer "+req.ID+" not found", "id"))
		return
	}
	if err != nil {
		sendStoreError(c, s, lh, "get_customer", err)
		return
	}
	wscutils.SendSuccessResponse(c, view)
}

// HandleListCities answers GET /api/cities.
func HandleListCities(c *gin.Context, s *service.Service) {
	lh := s.Logger.WithModule(moduleName).WithOp("ListCities")
	lister := s.Dependencies[DepLister].(*customers.Lister)

	cities, err := lister.Cities(c.Request.Context())
	if err != nil {
		sendStoreError(c, s, lh, "list_cities", err)
		return
	}
	wscutils.SendSuccessResponse(c, cities)
}

// HandleHealth answers GET /healthz with 200 when the store answers a ping
// and 503 when it does not.
func HandleHealth(c *gin.Context, s *service.Service) {
	if p, ok := s.Dependencies[DepPinger].(Pinger); ok {
		if err := p.Ping(c.Request.Context()); err != nil {
			s.Logger.WithModule(moduleName).WithOp("Health").Warn().
				LogActivity("store ping failed", map[string]any{"error": err.Error()})
			wscutils.SendErrorResponse(c, http.StatusServiceUnavailable,
				wscutils.NewErrorResponse(wscutils.ErrTypeUnavailable, "store unavailable"))
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

//-----------------------------------------------------------------------------
// Helper Functions
//-----------------------------------------------------------------------------

// sendStoreError logs err and answers 504 when the request deadline expired,
// 500 database_error otherwise. The store error text is not sent to clients.
func sendStoreError(c *gin.Context, s *service.Service, lh *logharbour.Logger, op string, err error) {
	lh.Error(err).LogActivity("store query failed", map[string]any{"op": op})
	if s.Metrics != nil {
		s.Metrics.RecordWithLabels(metrics.StoreErrorsTotal, 1, op)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		wscutils.SendErrorResponse(c, http.StatusGatewayTimeout,
			wscutils.NewErrorResponse(wscutils.ErrTypeTimeout, "request timed out"))
		return
	}
	wscutils.SendErrorResponse(c, http.StatusInternalServerError,
		wscutils.NewErrorResponse(wscutils.ErrTypeDatabase, "could not read customers"))
}
