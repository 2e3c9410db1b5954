package wscutils

// Response statuses
const (
	ErrorStatus   = "error"
	SuccessStatus = "success"
)
