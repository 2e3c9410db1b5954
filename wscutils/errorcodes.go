package wscutils

// Error types used in MapperMessage.Type for failures that do not come from
// the validator. Validation failures use "<kind>.<rule>" types instead.
const (
	ErrTypeInvalid       = "any.invalid"
	ErrTypeRequired      = "any.required"
	ErrTypeDatabase      = "database_error"
	ErrTypeNotFound      = "not_found"
	ErrTypeTimeout       = "request_timeout"
	ErrTypeInternal      = "internal"
	ErrTypeUnavailable   = "service_unavailable"
	ErrTypeRouteNotFound = "route_not_found"
)
