package wscutils

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/go-playground/validator/v10"
)

// ValidationErrorItem is a single field-level failure as produced by an
// upstream validator, before it is shaped for the wire.
type ValidationErrorItem struct {
	Type    string
	Message string
	Context *ItemContext
}

// ItemContext carries optional details about the failing field.
type ItemContext struct {
	Label Optional[string]
}

// MapperMessage is the public shape of one validation failure.
// Label is left out of the JSON entirely when the source had no label.
type MapperMessage struct {
	Type    string           `json:"type"`
	Message string           `json:"message"`
	Label   Optional[string] `json:"label,omitzero"`
}

// Render flattens one ValidationErrorItem. Type and Message are copied as
// they are; Label is copied from the item's context, so a missing context
// or a missing label both give an absent Label.
func Render(item ValidationErrorItem) MapperMessage {
	msg := MapperMessage{
		Type:    item.Type,
		Message: item.Message,
	}
	if item.Context != nil {
		msg.Label = item.Context.Label
	}
	return msg
}

// RenderMany applies Render to every item, keeping order and length.
// The result is never nil, so it serializes as [] rather than null.
func RenderMany(items []ValidationErrorItem) []MapperMessage {
	out := make([]MapperMessage, 0, len(items))
	for _, item := range items {
		out = append(out, Render(item))
	}
	return out
}

// ItemsFromValidator converts a validator error into ValidationErrorItems.
// Field labels are the external names of the fields (the form or json tag),
// as resolved by the package validator. Any other error becomes a single
// unlabelled item of type any.invalid.
func ItemsFromValidator(err error) []ValidationErrorItem {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []ValidationErrorItem{{Type: ErrTypeInvalid, Message: err.Error()}}
	}
	items := make([]ValidationErrorItem, 0, len(verrs))
	for _, fe := range verrs {
		items = append(items, ValidationErrorItem{
			Type:    itemType(fe),
			Message: itemMessage(fe),
			Context: &ItemContext{Label: NewOptional(fe.Field())},
		})
	}
	return items
}

// itemType builds "<kind>.<rule>", e.g. "string.max" or "number.min".
func itemType(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return ErrTypeRequired
	case "uuid", "uuid4":
		return "string.guid"
	case "oneof":
		return "any.only"
	}
	return kindName(fe.Kind()) + "." + fe.Tag()
}

func kindName(k reflect.Kind) string {
	switch k {
	case reflect.String:
		return "string"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return "number"
	case reflect.Bool:
		return "boolean"
	case reflect.Slice, reflect.Array:
		return "array"
	case reflect.Struct, reflect.Map:
		return "object"
	}
	return "any"
}

func itemMessage(fe validator.FieldError) string {
	field := fe.Field()
	isString := fe.Kind() == reflect.String
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%q is required", field)
	case "min":
		if isString {
			return fmt.Sprintf("%q length must be at least %s characters long", field, fe.Param())
		}
		return fmt.Sprintf("%q must be greater than or equal to %s", field, fe.Param())
	case "max":
		if isString {
			return fmt.Sprintf("%q length must be less than or equal to %s characters long", field, fe.Param())
		}
		return fmt.Sprintf("%q must be less than or equal to %s", field, fe.Param())
	case "uuid", "uuid4":
		return fmt.Sprintf("%q must be a valid GUID", field)
	case "oneof":
		return fmt.Sprintf("%q must be one of [%s]", field, fe.Param())
	case "searchtext":
		return fmt.Sprintf("%q must not contain control characters", field)
	}
	return fmt.Sprintf("%q failed on the %q rule", field, fe.Tag())
}
