package wscutils

import "encoding/json"

// Optional represents a value that can be in one of three states in JSON:
//   - absent: the key was not present at all (Present == false)
//   - null: the key was present with a JSON null (Present == true, Null == true)
//   - value: the key was present with a value (Present == true, Null == false)
//
// Plain Go types cannot tell "not given" from "given as the zero value".
// Optional keeps that distinction, so an absent label stays absent instead of
// turning into "".
//
// On output, use the `omitzero` tag option to drop absent values:
//
//	Label Optional[string] `json:"label,omitzero"`
type Optional[T any] struct {
	Value   T
	Present bool
	Null    bool
}

// NewOptional returns a present, non-null Optional holding v.
func NewOptional[T any](v T) Optional[T] {
	return Optional[T]{Value: v, Present: true}
}

// NewOptionalNull returns a present Optional holding JSON null.
func NewOptionalNull[T any]() Optional[T] {
	return Optional[T]{Present: true, Null: true}
}

// NewOptionalAbsent returns an Optional that was never set.
func NewOptionalAbsent[T any]() Optional[T] {
	return Optional[T]{}
}

// Get returns the value and true only when it is present and not null.
func (o Optional[T]) Get() (T, bool) {
	if !o.Present || o.Null {
		var zero T
		return zero, false
	}
	return o.Value, true
}

// IsZero reports whether the value is absent. encoding/json calls it for
// fields tagged `omitzero`.
func (o Optional[T]) IsZero() bool {
	return !o.Present
}

// UnmarshalJSON is only called by encoding/json when the key is present.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		var zero T
		o.Value = zero
		o.Present = true
		o.Null = true
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	o.Value = v
	o.Present = true
	o.Null = false
	return nil
}

// MarshalJSON writes null for null values and the plain value otherwise.
// Absent values marshal as the zero value unless the field is `omitzero`.
func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if o.Null {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}
