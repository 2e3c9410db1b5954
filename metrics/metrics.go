// Package metrics records service metrics behind a small interface so
// handlers and middleware do not depend on Prometheus directly.
//
// Usage:
//
//	m := metrics.NewPrometheusMetrics()
//	metrics.RegisterServiceMetrics(m)
//	m.RecordWithLabels(metrics.HTTPRequestsTotal, 1, "GET", "/api/customers", "200")
package metrics

type Metrics interface {
	Register(name, metricType, help string)
	Record(name string, value float64)
	RegisterWithLabels(name, metricType, help string, labels []string)
	RecordWithLabels(name string, value float64, labelValues ...string)
}

const (
	Counter   = "Counter"
	Gauge     = "Gauge"
	Histogram = "Histogram"
)

// Metric names recorded by the service.
const (
	HTTPRequestsTotal   = "custsvc_http_requests_total"
	HTTPRequestDuration = "custsvc_http_request_duration_seconds"
	CustomersReturned   = "custsvc_customers_returned"
	StoreErrorsTotal    = "custsvc_store_errors_total"
)

// RegisterServiceMetrics registers every metric the service records.
func RegisterServiceMetrics(m Metrics) {
	m.RegisterWithLabels(HTTPRequestsTotal, Counter, "HTTP requests by method, route and status", []string{"method", "route", "status"})
	m.RegisterWithLabels(HTTPRequestDuration, Histogram, "HTTP request latency by method and route", []string{"method", "route"})
	m.Register(CustomersReturned, Histogram, "Number of customers returned per list query")
	m.RegisterWithLabels(StoreErrorsTotal, Counter, "Failed store queries by operation", []string{"op"})
}
