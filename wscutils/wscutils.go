// Package wscutils holds the pieces every custsvc web service call shares:
// the response envelope, request binding, struct validation and the mapper
// that turns validator failures into the public {type, message, label} shape.
package wscutils

import (
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// Response represents the standard structure of an error response of the web service.
// Successful calls reply with their payload directly.
type Response struct {
	Status   string          `json:"status"`
	Data     any             `json:"data"`
	Messages []MapperMessage `json:"messages"`
}

// validate is shared by all callers; validator.Validate caches struct
// metadata and is safe for concurrent use once registration is done.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report fields by the name the client used, not the Go field name.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"form", "uri", "json"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return fld.Name
	})
	return v
}

// RegisterValidation adds a custom string rule usable in `validate` tags.
// It must be called during initialization, before any validation runs.
func RegisterValidation(tag string, fn func(string) bool) error {
	return validate.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
		return fn(fl.Field().String())
	})
}

// WscValidate validates data according to its `validate` struct tags and
// returns the failures in their public shape. It returns nil when data is valid.
func WscValidate[T any](data T) []MapperMessage {
	err := validate.Struct(data)
	if err == nil {
		return nil
	}
	return RenderMany(ItemsFromValidator(err))
}

// NewResponse is a helper function to create a new web service response.
func NewResponse(status string, data any, messages []MapperMessage) *Response {
	return &Response{
		Status:   status,
		Data:     data,
		Messages: messages,
	}
}

// NewErrorResponse builds an error response carrying a single unlabelled message.
func NewErrorResponse(errType, message string) *Response {
	return NewResponse(ErrorStatus, nil, []MapperMessage{{Type: errType, Message: message}})
}

// NewLabelledErrorResponse builds an error response whose single message
// points at the named field.
func NewLabelledErrorResponse(errType, message, label string) *Response {
	return NewResponse(ErrorStatus, nil, []MapperMessage{{Type: errType, Message: message, Label: NewOptional(label)}})
}

// NewValidationErrorResponse wraps already rendered validation messages.
func NewValidationErrorResponse(messages []MapperMessage) *Response {
	return NewResponse(ErrorStatus, nil, messages)
}

// NewSuccessResponse simplifies the process of creating a standard success response
func NewSuccessResponse(data any) *Response {
	return NewResponse(SuccessStatus, data, nil)
}

// BindQuery binds the query string into data. Binding failures (for example
// a non-numeric value for an int field) are answered with 400 and returned.
// Struct validation is left to WscValidate.
func BindQuery(c *gin.Context, data any) error {
	if err := c.ShouldBindQuery(data); err != nil {
		SendErrorResponse(c, http.StatusBadRequest, NewValidationErrorResponse(RenderMany(ItemsFromValidator(err))))
		return err
	}
	return nil
}

// BindURI binds path parameters into data, answering 400 on failure.
func BindURI(c *gin.Context, data any) error {
	if err := c.ShouldBindUri(data); err != nil {
		SendErrorResponse(c, http.StatusBadRequest, NewValidationErrorResponse(RenderMany(ItemsFromValidator(err))))
		return err
	}
	return nil
}

// SendSuccessResponse sends data as the JSON body with status 200.
func SendSuccessResponse(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}

// SendErrorResponse sends a JSON error response and stops the handler chain.
func SendErrorResponse(c *gin.Context, status int, response *Response) {
	c.AbortWithStatusJSON(status, response)
}
